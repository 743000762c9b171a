package mapping

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// UnmarshalYAML accepts either the full member form or a {target: source} pair.
func (m *MemberDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain MemberDecl

	if node.Kind == yaml.MappingNode && len(node.Content) == 2 && !isMemberKey(node.Content[0].Value) {
		var target, source string

		if err := node.Content[0].Decode(&target); err != nil {
			return fmt.Errorf("invalid member target: %w", err)
		}

		if err := node.Content[1].Decode(&source); err != nil {
			return fmt.Errorf("invalid member source for %q: %w", target, err)
		}

		*m = MemberDecl{Target: target, Source: source}

		return nil
	}

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*m = MemberDecl(p)

	return nil
}

func isMemberKey(key string) bool {
	switch key {
	case "target", "source", "converter", "collection", "comparer":
		return true
	default:
		return false
	}
}
