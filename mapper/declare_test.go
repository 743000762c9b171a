package mapper_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/mapper"
)

const declarations = `
defaults:
  collection: merge
mappings:
  - source: Animal
    target: AnimalDTO
    members:
      - Kind: Species
  - source: "*Employee"
    target: "*EmployeeDTO"
    options:
      reference: create_new
      tracking: false
  - source: Line
    target: LineDTO
    members:
      - target: Qty
        source: Qty
        converter: Dozens
`

func newDeclaringMapper(t *testing.T) *mapper.Mapper {
	t.Helper()

	m := newMapper(t)

	mapper.RegisterType[Animal](m)
	mapper.RegisterType[AnimalDTO](m)
	mapper.RegisterType[Employee](m)
	mapper.RegisterType[EmployeeDTO](m)
	mapper.RegisterType[Line](m)
	mapper.RegisterType[LineDTO](m)

	require.NoError(t, m.RegisterConverter("Dozens", func(n int) string {
		return strconv.Itoa(n) + " dozen"
	}))

	return m
}

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(declarations), 0o600))

	m := newDeclaringMapper(t)
	require.NoError(t, m.LoadMappings(path))

	animal, err := mapper.To[AnimalDTO](m, Dog{Animal: Animal{Species: "canine"}})
	require.NoError(t, err)
	assert.Equal(t, "canine", animal.Kind)

	line, err := mapper.To[LineDTO](m, Line{SKU: "egg", Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, LineDTO{SKU: "egg", Qty: "2 dozen"}, line)

	shared := &Employee{Name: "shared"}

	emp, err := mapper.To[*EmployeeDTO](m, &Employee{Manager: shared, Buddy: shared})
	require.NoError(t, err)
	assert.NotSame(t, emp.Manager, emp.Buddy)

	tags := []int{9}
	require.NoError(t, m.Map([]int{1}, &tags))
	assert.Equal(t, []int{9, 1}, tags)
}

func TestParseMappings_Errors(t *testing.T) {
	m := newDeclaringMapper(t)

	err := m.ParseMappings([]byte(`
mappings:
  - source: Animal
    target: Cat
  - source: Line
    target: LineDTO
    members:
      - target: Qty
        source: Qty
        converter: Gross
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "Cat"`)
	assert.Contains(t, err.Error(), `unknown converter "Gross"`)

	require.Error(t, m.ParseMappings([]byte("mappings: [")))
	require.Error(t, m.LoadMappings(filepath.Join(t.TempDir(), "missing.yaml")))
}
