package mapping

import (
	"slices"
	"strings"

	"object-mapper/internal/analyze"
)

// ResolveTypeID resolves a declared type name against a loaded type graph. Pointer,
// slice and map prefixes are stripped: the graph describes the named type behind them.
// Accepted forms:
// - "store.Order" (short)
// - "example.com/app/store.Order" (full)
// - "Order" (name only).
func ResolveTypeID(typeIDStr string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	if graph == nil {
		return nil
	}

	typeIDStr = stripTypeDecorations(typeIDStr)

	// Name-only: best-effort match by type name.
	if !strings.Contains(typeIDStr, ".") {
		name := typeIDStr
		if name == "" {
			return nil
		}

		for id, t := range graph.Types {
			if id.Name == name {
				return t
			}
		}

		return nil
	}

	lastDot := strings.LastIndex(typeIDStr, ".")

	pkgStr := typeIDStr[:lastDot]

	name := typeIDStr[lastDot+1:]
	if pkgStr == "" || name == "" {
		return nil
	}

	// 1) exact match (for fully qualified import path)
	if t := graph.GetType(analyze.TypeID{PkgPath: pkgStr, Name: name}); t != nil {
		return t
	}

	// 2) suffix match (for short forms like "store.Order" vs "example.com/app/store.Order")
	for id, t := range graph.Types {
		if id.Name != name {
			continue
		}

		if id.PkgPath == pkgStr || strings.HasSuffix(id.PkgPath, "/"+pkgStr) {
			return t
		}
	}

	return nil
}

// stripTypeDecorations reduces "*[]map[string]pkg.T" to "pkg.T".
func stripTypeDecorations(s string) string {
	for {
		s = strings.TrimSpace(s)

		switch {
		case strings.HasPrefix(s, "*"):
			s = s[1:]
		case strings.HasPrefix(s, "[]"):
			s = s[2:]
		case strings.HasPrefix(s, "map["):
			if end := strings.Index(s, "]"); end > 0 {
				s = s[end+1:]
			} else {
				return s
			}
		default:
			return s
		}
	}
}

// typeNames lists the short names of the graph's types, for suggestions.
func typeNames(graph *analyze.TypeGraph) []string {
	names := make([]string, 0, len(graph.Types))

	for id := range graph.Types {
		short := id.PkgPath
		if i := strings.LastIndex(short, "/"); i >= 0 {
			short = short[i+1:]
		}

		names = append(names, short+"."+id.Name)
	}

	slices.Sort(names)

	return names
}
