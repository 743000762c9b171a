package mapping

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"object-mapper/internal/common"
	"object-mapper/internal/convention"
	"object-mapper/internal/match"
	"object-mapper/primitive"
)

// Registry holds the named types and callbacks a MappingFile may reference.
type Registry struct {
	mu           sync.RWMutex
	types        map[string]reflect.Type
	converters   map[string]*primitive.Caster
	comparers    map[string]*Comparer
	constructors map[string]*Constructor
	conventions  map[string]convention.Convention
}

// NewRegistry creates a registry that already knows the Go basic types and the
// leaf types the primitive table converts.
func NewRegistry() *Registry {
	r := &Registry{
		types:        make(map[string]reflect.Type, len(basicTypes)),
		converters:   make(map[string]*primitive.Caster),
		comparers:    make(map[string]*Comparer),
		constructors: make(map[string]*Constructor),
		conventions:  make(map[string]convention.Convention),
	}

	maps.Copy(r.types, basicTypes)

	return r
}

var basicTypes = map[string]reflect.Type{
	"any":           reflect.TypeFor[any](),
	"bool":          reflect.TypeFor[bool](),
	"string":        reflect.TypeFor[string](),
	"int":           reflect.TypeFor[int](),
	"int8":          reflect.TypeFor[int8](),
	"int16":         reflect.TypeFor[int16](),
	"int32":         reflect.TypeFor[int32](),
	"int64":         reflect.TypeFor[int64](),
	"uint":          reflect.TypeFor[uint](),
	"uint8":         reflect.TypeFor[uint8](),
	"uint16":        reflect.TypeFor[uint16](),
	"uint32":        reflect.TypeFor[uint32](),
	"uint64":        reflect.TypeFor[uint64](),
	"uintptr":       reflect.TypeFor[uintptr](),
	"byte":          reflect.TypeFor[byte](),
	"rune":          reflect.TypeFor[rune](),
	"float32":       reflect.TypeFor[float32](),
	"float64":       reflect.TypeFor[float64](),
	"complex64":     reflect.TypeFor[complex64](),
	"complex128":    reflect.TypeFor[complex128](),
	"time.Time":     reflect.TypeFor[time.Time](),
	"time.Duration": reflect.TypeFor[time.Duration](),
	"uuid.UUID":     reflect.TypeFor[uuid.UUID](),
}

// IsBasicTypeName returns true if the name refers to a Go basic type.
func IsBasicTypeName(name string) bool {
	_, ok := basicTypes[name]
	return ok
}

// RegisterType makes t resolvable by its qualified name ("pkg/path.Name") and
// the short forms Type accepts.
func (r *Registry) RegisterType(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[common.TypeName(t)] = t
}

// RegisterConverter registers a converter function under name.
func (r *Registry) RegisterConverter(name string, fn any) error {
	caster, err := primitive.ParseCaster(fn)
	if err != nil {
		return fmt.Errorf("converter %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.converters[name] = &caster

	return nil
}

// RegisterComparer registers an element comparer under name.
func (r *Registry) RegisterComparer(name string, c *Comparer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comparers[name] = c
}

// RegisterConstructor registers a target constructor under name.
func (r *Registry) RegisterConstructor(name string, c *Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[name] = c
}

// RegisterConvention registers a convention under name.
func (r *Registry) RegisterConvention(name string, c convention.Convention) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conventions[name] = c
}

// Type resolves a type name like:
// - "store.Order" (short)
// - "example.com/app/store.Order" (full)
// - "Order" (name only, when unambiguous)
// - "*store.Order", "[]store.Order", "map[string]store.Order".
func (r *Registry) Type(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)

	switch {
	case strings.HasPrefix(name, "*"):
		elem, err := r.Type(name[1:])
		if err != nil {
			return nil, err
		}

		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(name, "[]"):
		elem, err := r.Type(name[2:])
		if err != nil {
			return nil, err
		}

		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "map["):
		return r.mapType(name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.types[name]; ok {
		return t, nil
	}

	var found []reflect.Type

	for id, t := range r.types {
		if typeNameMatches(id, name) {
			found = append(found, t)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return nil, unknownName("type", name, r.shortNames(strings.Contains(name, ".")))
	default:
		return nil, fmt.Errorf("type %q is ambiguous: %d registered types match", name, len(found))
	}
}

func (r *Registry) mapType(name string) (reflect.Type, error) {
	depth := 0

	for i := len("map"); i < len(name); i++ {
		switch name[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				key, err := r.Type(name[len("map["):i])
				if err != nil {
					return nil, err
				}

				elem, err := r.Type(name[i+1:])
				if err != nil {
					return nil, err
				}

				return reflect.MapOf(key, elem), nil
			}
		}
	}

	return nil, fmt.Errorf("invalid map type %q", name)
}

// shortNames lists registered types as "pkg.Name", or as bare names.
func (r *Registry) shortNames(qualified bool) []string {
	names := make([]string, 0, len(r.types))

	for id := range r.types {
		short := id
		if i := strings.LastIndex(short, "/"); i >= 0 {
			short = short[i+1:]
		}

		if !qualified {
			short = short[strings.LastIndex(short, ".")+1:]
		}

		names = append(names, short)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// typeNameMatches matches a qualified id against a short or name-only form.
func typeNameMatches(id, name string) bool {
	lastDot := strings.LastIndex(id, ".")
	if lastDot < 0 {
		return false
	}

	pkg, typ := id[:lastDot], id[lastDot+1:]

	if !strings.Contains(name, ".") {
		return typ == name
	}

	nameDot := strings.LastIndex(name, ".")
	if typ != name[nameDot+1:] {
		return false
	}

	short := name[:nameDot]

	return pkg == short || strings.HasSuffix(pkg, "/"+short)
}

// Converter returns the converter registered under name.
func (r *Registry) Converter(name string) (*primitive.Caster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lookupNamed(r.converters, "converter", name)
}

// Comparer returns the comparer registered under name.
func (r *Registry) Comparer(name string) (*Comparer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lookupNamed(r.comparers, "comparer", name)
}

// Constructor returns the constructor registered under name.
func (r *Registry) Constructor(name string) (*Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lookupNamed(r.constructors, "constructor", name)
}

// Convention returns the convention registered under name.
func (r *Registry) Convention(name string) (convention.Convention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lookupNamed(r.conventions, "convention", name)
}

// Names returns the registered names of each kind, sorted.
func (r *Registry) Names() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string][]string{
		"type":        slices.Sorted(maps.Keys(r.types)),
		"converter":   slices.Sorted(maps.Keys(r.converters)),
		"comparer":    slices.Sorted(maps.Keys(r.comparers)),
		"constructor": slices.Sorted(maps.Keys(r.constructors)),
		"convention":  slices.Sorted(maps.Keys(r.conventions)),
	}
}

func lookupNamed[V any](m map[string]V, kind, name string) (V, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}

	var zero V

	return zero, unknownName(kind, name, slices.Sorted(maps.Keys(m)))
}

func unknownName(kind, name string, known []string) error {
	if s := match.Suggest(name, known, 3); len(s) > 0 {
		return fmt.Errorf("unknown %s %q (did you mean %s?)", kind, name, strings.Join(s, ", "))
	}

	return fmt.Errorf("unknown %s %q", kind, name)
}
