// Package meta describes the members of Go types as seen by the mapper.
//
// A Member is either a struct field (including fields promoted through
// embedding) or an accessor method pair such as Name()/SetName(v). Providers
// expose readable source members and writable target members under a Filter;
// Paths chain members for nested access with null-safe reads and writes that
// materialize intermediate pointers.
package meta
