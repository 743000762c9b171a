package mapper

import (
	"reflect"

	"object-mapper/internal/mapping"
)

// RegisterEnum records the names of enum type T, parsed case-insensitively
// when strings are mapped onto T and used when T is mapped onto strings.
func RegisterEnum[T any](m *Mapper, values map[string]T) error {
	rv := make(map[string]reflect.Value, len(values))
	for name, v := range values {
		rv[name] = reflect.ValueOf(v)
	}

	return m.prims.RegisterEnum(reflect.TypeFor[T](), rv)
}

// RegisterType makes T nameable in mapping files.
func RegisterType[T any](m *Mapper) {
	m.names.RegisterType(reflect.TypeFor[T]())
}

// RegisterConverter makes fn usable as a converter named name in mapping files.
func (m *Mapper) RegisterConverter(name string, fn any) error {
	return m.names.RegisterConverter(name, fn)
}

// RegisterComparer makes c usable as a comparer named name in mapping files.
func (m *Mapper) RegisterComparer(name string, c *Comparer) {
	m.names.RegisterComparer(name, c)
}

// RegisterConstructor makes c usable as a constructor named name in mapping files.
func (m *Mapper) RegisterConstructor(name string, c *Constructor) {
	m.names.RegisterConstructor(name, c)
}

// RegisterConvention makes the convention built by fn usable under name in mapping files.
func (m *Mapper) RegisterConvention(name string, fn ConventionFunc) {
	m.names.RegisterConvention(name, fn(m.provider, m.rules))
}

// LoadMappings reads a YAML mapping file and applies it.
func (m *Mapper) LoadMappings(path string) error {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	return m.ApplyMappings(mf)
}

// ParseMappings parses YAML mapping declarations and applies them.
func (m *Mapper) ParseMappings(data []byte) error {
	mf, err := mapping.Parse(data)
	if err != nil {
		return err
	}

	return m.ApplyMappings(mf)
}

// ApplyMappings applies parsed declarations. Every declaration is attempted;
// the returned error combines the problems found.
func (m *Mapper) ApplyMappings(mf *MappingFile) error {
	return mapping.Apply(mf, m.tree, m.names)
}
