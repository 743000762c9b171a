// Package analyze loads Go packages with golang.org/x/tools/go/packages and
// describes their named types, so mapping declarations can be checked against
// source code without compiling it into a program.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: kind, element/key types and fields of a type
//   - TypeGraph: the named types of the loaded packages
package analyze
