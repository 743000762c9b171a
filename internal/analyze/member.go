package analyze

import "strings"

// Deref follows pointers down to the pointed-to type.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer {
		t = t.ElemType
	}

	return t
}

// Field looks name up among the fields of t and the fields promoted from its
// embedded structs, shallowest first. Pointers are dereferenced.
func (t *TypeInfo) Field(name string) *FieldInfo {
	return t.Deref().field(name, map[*TypeInfo]bool{})
}

func (t *TypeInfo) field(name string, seen map[*TypeInfo]bool) *FieldInfo {
	if t == nil || t.Kind != TypeKindStruct || seen[t] {
		return nil
	}

	seen[t] = true

	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	for i := range t.Fields {
		if !t.Fields[i].Embedded {
			continue
		}

		if fld := t.Fields[i].Type.Deref().field(name, seen); fld != nil {
			return fld
		}
	}

	return nil
}

// FieldNames lists the exported field names of t, for suggestions.
func (t *TypeInfo) FieldNames() []string {
	t = t.Deref()
	if t == nil {
		return nil
	}

	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.Exported {
			names = append(names, f.Name)
		}
	}

	return names
}

// String renders t the way Go source spells it, with short package names.
func (t *TypeInfo) String() string {
	if t == nil {
		return "<nil>"
	}

	if t.IsNamed() {
		pkg := t.ID.PkgPath
		if i := strings.LastIndex(pkg, "/"); i >= 0 {
			pkg = pkg[i+1:]
		}

		if pkg == "" {
			return t.ID.Name
		}

		return pkg + "." + t.ID.Name
	}

	switch t.Kind {
	case TypeKindPointer:
		return "*" + t.ElemType.String()
	case TypeKindSlice:
		return "[]" + t.ElemType.String()
	case TypeKindMap:
		return "map[" + t.KeyType.String() + "]" + t.ElemType.String()
	}

	if t.GoType != nil {
		return t.GoType.String()
	}

	return t.Kind.String()
}
