// Package diagnostic collects errors, warnings and infos found while validating
// mapping declarations, so that all problems of a file are reported at once.
package diagnostic
