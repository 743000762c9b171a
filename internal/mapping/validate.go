package mapping

import (
	"errors"
	"fmt"
	"go/types"

	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/match"
)

// Validate checks a mapping declaration file. Without a graph only the file's own
// structure is checked: version, type names, duplicate pairs and path syntax.
// With a graph, type names and member paths are resolved against the loaded packages.
func Validate(mf *MappingFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if mf.Version != CurrentVersion {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported version %q (expected %q)", mf.Version, CurrentVersion), "", "")
	}

	seenPairs := map[string]struct{}{}

	for i := range mf.Mappings {
		pd := &mf.Mappings[i]
		tpStr := fmt.Sprintf("%s->%s", pd.Source, pd.Target)

		if pd.Source == "" || pd.Target == "" {
			res.AddError("missing_type", "mapping must name both source and target types", tpStr, "")
			continue
		}

		if _, ok := seenPairs[tpStr]; ok {
			res.AddError("duplicate_mapping", fmt.Sprintf("type pair %s is declared more than once", tpStr), tpStr, "")
			continue
		}

		seenPairs[tpStr] = struct{}{}

		validateOptions(res, tpStr, pd)

		var srcT, dstT *analyze.TypeInfo

		if graph != nil {
			srcT = ResolveTypeID(pd.Source, graph)
			if srcT == nil {
				res.AddErrorWithSuggestions("source_type_not_found",
					fmt.Sprintf("source type %q not found", pd.Source), tpStr, pd.Source,
					match.Suggest(stripTypeDecorations(pd.Source), typeNames(graph), 3))

				continue
			}

			dstT = ResolveTypeID(pd.Target, graph)
			if dstT == nil {
				res.AddErrorWithSuggestions("target_type_not_found",
					fmt.Sprintf("target type %q not found", pd.Target), tpStr, pd.Target,
					match.Suggest(stripTypeDecorations(pd.Target), typeNames(graph), 3))

				continue
			}
		}

		seenTargets := map[string]struct{}{}

		for _, md := range pd.Members {
			validateMember(res, tpStr, srcT, dstT, md)

			if _, ok := seenTargets[md.Target]; ok && md.Target != "" {
				res.AddWarning("duplicate_member",
					fmt.Sprintf("target %q is declared more than once, the last declaration wins", md.Target), tpStr, md.Target)
			}

			seenTargets[md.Target] = struct{}{}
		}

		for _, ig := range pd.Ignore {
			validatePath(res, "invalid_ignore_path", tpStr, ig, dstT)

			if _, ok := seenTargets[ig]; ok {
				res.AddInfo("ignored_declared_member",
					fmt.Sprintf("%q is declared explicitly, ignore only affects convention pairing", ig), tpStr, ig)
			}
		}
	}

	return res
}

func validateOptions(res *diagnostic.Diagnostics, tpStr string, pd *PairDecl) {
	if pd.Options.Comparer != "" && pd.Options.Collection != CollectionInherit && pd.Options.Collection != CollectionUpdate {
		res.AddWarning("unused_comparer",
			fmt.Sprintf("comparer %q is only used by the update collection strategy, got %s", pd.Options.Comparer, pd.Options.Collection),
			tpStr, "")
	}
}

// validateMember validates a single member declaration within a pair.
func validateMember(res *diagnostic.Diagnostics, tpStr string, srcT, dstT *analyze.TypeInfo, md MemberDecl) {
	if md.Target == "" {
		res.AddError("missing_target_path", "member mapping must specify target", tpStr, "")
		return
	}

	if md.Source == "" {
		res.AddError("missing_source", "member mapping must specify source", tpStr, md.Target)
		return
	}

	validatePath(res, "invalid_target_path", tpStr, md.Target, dstT)
	validatePath(res, "invalid_source_path", tpStr, md.Source, srcT)

	if md.Comparer != "" && md.Collection != CollectionUpdate {
		res.AddWarning("unused_comparer",
			fmt.Sprintf("comparer %q is only used by the update collection strategy", md.Comparer), tpStr, md.Target)
	}
}

func validatePath(res *diagnostic.Diagnostics, code, tpStr, path string, typeInfo *analyze.TypeInfo) {
	fp, err := ParsePath(path)
	if err != nil {
		res.AddError(code, err.Error(), tpStr, path)
		return
	}

	if typeInfo == nil {
		return
	}

	if err := validatePathAgainstType(fp, typeInfo); err != nil {
		var (
			suggestions []string
			nf          *MemberNotFoundError
		)

		if errors.As(err, &nf) {
			suggestions = nf.Suggestions
		}

		res.AddErrorWithSuggestions(code, fmt.Sprintf("invalid path: %v", err), tpStr, path, suggestions)
	}
}

// validatePathAgainstType walks fp through struct fields, promoted fields of
// embedded structs, and (when the graph carries go/types information) methods.
func validatePathAgainstType(fp MemberPath, typeInfo *analyze.TypeInfo) error {
	current := typeInfo

	for _, name := range fp {
		if current == nil {
			return fmt.Errorf("nil type while resolving %q", name)
		}

		// Auto-deref pointers (matches runtime behavior).
		if current = current.Deref(); current == nil {
			return fmt.Errorf("nil pointer element while resolving %q", name)
		}

		if fld := current.Field(name); fld != nil {
			if !fld.Exported {
				return fmt.Errorf("field %q is not exported", name)
			}

			current = fld.Type

			continue
		}

		if result, ok := lookupGoMember(current, name); ok {
			current = result
			continue
		}

		if current.Kind != analyze.TypeKindStruct {
			return fmt.Errorf("cannot access member %q on non-struct kind %s", name, current.Kind)
		}

		return &MemberNotFoundError{
			Name:        name,
			OwnerName:   current.ID.String(),
			Suggestions: match.Suggest(name, current.FieldNames(), 3),
		}
	}

	return nil
}

// lookupGoMember resolves a member through go/types when the graph carries it:
// a field yields its type, a getter its result and a setter its parameter.
func lookupGoMember(t *analyze.TypeInfo, name string) (*analyze.TypeInfo, bool) {
	if t.GoType == nil {
		return nil, false
	}

	obj, _, _ := types.LookupFieldOrMethod(t.GoType, true, nil, name)

	if v, ok := obj.(*types.Var); ok {
		return &analyze.TypeInfo{GoType: v.Type()}, true
	}

	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, false
	}

	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return nil, false
	}

	switch {
	case sig.Params().Len() == 0 && sig.Results().Len() >= 1:
		return &analyze.TypeInfo{GoType: sig.Results().At(0).Type()}, true
	case sig.Params().Len() == 1:
		return &analyze.TypeInfo{GoType: sig.Params().At(0).Type()}, true
	default:
		return nil, false
	}
}
