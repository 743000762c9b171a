package analyze

import (
	"fmt"
	"go/types"
	"slices"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	dir       string
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // recursive types resolve to the cached entry
}

// NewAnalyzer creates a new Analyzer resolving patterns relative to dir.
// An empty dir means the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		dir:       dir,
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "example.com/shop/...").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = multierr.Append(errs, e)
		}
	}

	if errs != nil {
		return nil, fmt.Errorf("package errors: %w", errs)
	}

	// Register every package first so named types of loaded packages are never
	// classified as external.
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

func (a *Analyzer) processPackage(pkg *packages.Package) {
	info := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		ti := a.analyzeType(typeName.Type())
		a.graph.Types[ti.ID] = ti
		info.Types = append(info.Types, ti.ID)
	}

	slices.SortFunc(info.Types, func(x, y TypeID) int {
		switch {
		case x.Name < y.Name:
			return -1
		case x.Name > y.Name:
			return 1
		default:
			return 0
		}
	})
}

func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{GoType: t}
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)
	case *types.Alias:
		*info = *a.analyzeType(types.Unalias(tt))
	default:
		a.analyzeComposite(t, info)
	}

	return info
}

// analyzeComposite fills info for an unnamed type.
func (a *Analyzer) analyzeComposite(t types.Type, info *TypeInfo) {
	switch tt := t.(type) {
	case *types.Basic:
		info.Kind = TypeKindBasic
	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())
	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())
	case *types.Array:
		info.Kind = TypeKindArray
		info.ElemType = a.analyzeType(tt.Elem())
	case *types.Map:
		info.Kind = TypeKindMap
		info.KeyType = a.analyzeType(tt.Key())
		info.ElemType = a.analyzeType(tt.Elem())
	case *types.Interface:
		info.Kind = TypeKindInterface
	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)
	default:
		// channels, functions and type parameters cannot be mapped
		info.Kind = TypeKindUnknown
	}
}

func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()

	info.ID = TypeID{Name: obj.Name()}
	if obj.Pkg() != nil {
		info.ID.PkgPath = obj.Pkg().Path()
	}

	if _, loaded := a.graph.Packages[info.ID.PkgPath]; !loaded && info.ID.PkgPath != "" {
		info.Kind = TypeKindExternal
		return
	}

	// Structs and interfaces keep their shape on the named entry; everything
	// else (enums, named slices and maps) goes through Underlying.
	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(ut, info)
	case *types.Interface:
		info.Kind = TypeKindInterface
	default:
		info.Kind = TypeKindNamed
		info.Underlying = a.analyzeType(ut)
	}
}

func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)

		// unexported embedded structs still promote exported fields
		if !field.Exported() && !field.Embedded() {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: field.Exported(),
			Type:     a.analyzeType(field.Type()),
			Embedded: field.Embedded(),
			Index:    i,
		})
	}
}
