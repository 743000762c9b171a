package analyze

import (
	"go/types"

	"object-mapper/internal/common"
)

// TypeID uniquely identifies a named type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "example.com/shop/store"
	Name    string // e.g., "Order"
}

// String returns the qualified name.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind classifies a type of the graph.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindBasic              // int, string, bool, etc.
	TypeKindStruct             // struct type
	TypeKindPointer            // pointer to another type
	TypeKindSlice              // slice of another type
	TypeKindArray              // array of another type
	TypeKindMap                // map with key and element types
	TypeKindInterface          // interface, resolved from runtime values
	TypeKindNamed              // named type over a non-struct type, e.g. enums
	TypeKindExternal           // named type of a package that was not loaded, e.g. time.Time
)

var kindNames = [...]string{
	TypeKindUnknown:   common.UnknownStr,
	TypeKindBasic:     "basic",
	TypeKindStruct:    "struct",
	TypeKindPointer:   "pointer",
	TypeKindSlice:     "slice",
	TypeKindArray:     "array",
	TypeKindMap:       "map",
	TypeKindInterface: "interface",
	TypeKindNamed:     "named",
	TypeKindExternal:  "external",
}

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return common.UnknownStr
	}

	return kindNames[k]
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // set for named types only
	Kind       TypeKind    // kind of type
	Underlying *TypeInfo   // for TypeKindNamed, the underlying type
	ElemType   *TypeInfo   // for pointers, slices, arrays and maps, the element type
	KeyType    *TypeInfo   // for maps, the key type
	Fields     []FieldInfo // for structs, the exported fields in declaration order
	GoType     types.Type  // the go/types type, used to look methods up
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string    // Go field name
	Exported bool      // whether the field is exported
	Type     *TypeInfo // field type
	Embedded bool      // whether the field is embedded (anonymous)
	Index    int       // field index in the struct
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // import path
	Name  string   // package name
	Types []TypeID // exported named types, sorted by name
}
