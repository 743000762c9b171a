package mapper_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"object-mapper/mapper"
)

type Customer struct {
	Name  string
	Email string
}

type CustomerDTO struct {
	Name  string
	Email string
}

type Line struct {
	SKU string
	Qty int
}

type LineDTO struct {
	SKU string
	Qty string
}

type Order struct {
	ID       int
	Customer *Customer
	Lines    []Line
	Tags     map[string]int
	Total    float64
}

type OrderDTO struct {
	ID       string
	Customer *CustomerDTO
	Lines    []LineDTO
	Tags     map[string]int64
	Total    float64
}

type OrderForm struct {
	ID            int
	CustomerName  string
	CustomerEmail string
}

type OrderSummary struct {
	ID           string
	CustomerName string
	Total        float64
}

type Animal struct {
	Species string
	Legs    int
}

type Dog struct {
	Animal
	Name string
}

type AnimalDTO struct {
	Kind string
	Legs int
	Name string
}

type Employee struct {
	Name    string
	Self    *Employee
	Manager *Employee
	Buddy   *Employee
}

type EmployeeDTO struct {
	Name    string
	Self    *EmployeeDTO
	Manager *EmployeeDTO
	Buddy   *EmployeeDTO
}

type Status int

const (
	Pending Status = iota
	Shipped
)

type Severity int

const (
	Low Severity = iota
	High
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "Low"
	case High:
		return "High"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func newMapper(t *testing.T, opts ...mapper.Option) *mapper.Mapper {
	t.Helper()

	opts = append([]mapper.Option{mapper.WithLogger(zaptest.NewLogger(t))}, opts...)

	m, err := mapper.New(opts...)
	require.NoError(t, err)

	return m
}

func TestMap_ConventionFallback(t *testing.T) {
	m := newMapper(t)

	src := Order{
		ID:       42,
		Customer: &Customer{Name: "Ada", Email: "ada@example.com"},
		Lines:    []Line{{SKU: "a", Qty: 2}},
		Tags:     map[string]int{"rush": 1},
		Total:    9.5,
	}

	got, err := mapper.To[OrderDTO](m, src)
	require.NoError(t, err)

	want := OrderDTO{
		ID:       "42",
		Customer: &CustomerDTO{Name: "Ada", Email: "ada@example.com"},
		Lines:    []LineDTO{{SKU: "a", Qty: "2"}},
		Tags:     map[string]int64{"rush": 1},
		Total:    9.5,
	}
	assert.Equal(t, want, got, spew.Sdump(got))
}

func TestMap_Projection(t *testing.T) {
	t.Run("unflattening", func(t *testing.T) {
		m := newMapper(t, mapper.WithConvention(mapper.ProjectionConvention))

		got, err := mapper.To[Order](m, OrderForm{ID: 7, CustomerName: "Ada", CustomerEmail: "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 7, got.ID)
		require.NotNil(t, got.Customer)
		assert.Equal(t, Customer{Name: "Ada", Email: "ada@example.com"}, *got.Customer)
	})

	t.Run("per pair", func(t *testing.T) {
		m := newMapper(t)
		require.NoError(t, mapper.Pair[Order, OrderSummary](m).Convention(mapper.ProjectionConvention).Err())

		got, err := mapper.To[OrderSummary](m, Order{ID: 1, Customer: &Customer{Name: "Bob"}})
		require.NoError(t, err)
		assert.Equal(t, OrderSummary{ID: "1", CustomerName: "Bob"}, got)
	})

	t.Run("settings", func(t *testing.T) {
		s := mapper.DefaultSettings()
		s.Convention = "projection"
		m := newMapper(t, mapper.WithSettings(s))

		// a nil step on the source path leaves the flattened member empty
		got, err := mapper.To[OrderSummary](m, Order{ID: 2, Total: 1.5})
		require.NoError(t, err)
		assert.Equal(t, OrderSummary{ID: "2", Total: 1.5}, got)
	})
}

func TestMap_InheritedConfiguration(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, mapper.Pair[Animal, AnimalDTO](m).MapMember("Kind", "Species").Err())

	got, err := mapper.To[AnimalDTO](m, Dog{Animal: Animal{Species: "canine", Legs: 4}, Name: "Rex"})
	require.NoError(t, err)
	assert.Equal(t, AnimalDTO{Kind: "canine", Legs: 4, Name: "Rex"}, got)
}

func TestMap_IdentityPreservation(t *testing.T) {
	m := newMapper(t)

	src := &Employee{Name: "loop"}
	src.Self = src

	got, err := mapper.To[*EmployeeDTO](m, src)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, got, got.Self)
}

func TestMap_SharedReferenceFanIn(t *testing.T) {
	m := newMapper(t)

	shared := &Employee{Name: "shared"}

	got, err := mapper.To[*EmployeeDTO](m, &Employee{Manager: shared, Buddy: shared})
	require.NoError(t, err)
	require.NotNil(t, got.Manager)
	assert.Same(t, got.Manager, got.Buddy)
}

func TestMap_TrackingOff(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, mapper.Pair[*Employee, *EmployeeDTO](m).Tracking(false).Err())

	shared := &Employee{Name: "shared"}

	got, err := mapper.To[*EmployeeDTO](m, &Employee{Manager: shared, Buddy: shared})
	require.NoError(t, err)
	assert.NotSame(t, got.Manager, got.Buddy)
	assert.Equal(t, got.Manager, got.Buddy)
}

func TestMap_NullPropagation(t *testing.T) {
	m := newMapper(t)

	dst := OrderDTO{Customer: &CustomerDTO{Name: "stale"}, Lines: []LineDTO{{SKU: "x"}}}
	require.NoError(t, m.Map(Order{}, &dst))

	assert.Nil(t, dst.Customer)
	assert.Nil(t, dst.Lines)
	assert.Nil(t, dst.Tags)
	assert.Equal(t, "0", dst.ID)
}

func TestMap_CollectionStrategies(t *testing.T) {
	tests := []struct {
		strategy mapper.CollectionStrategy
		want     []int
	}{
		{mapper.CollectionReset, []int{1, 2, 3}},
		{mapper.CollectionMerge, []int{9, 1, 2, 3}},
		{mapper.CollectionUpdate, []int{9, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			s := mapper.DefaultSettings()
			s.Collection = tt.strategy
			m := newMapper(t, mapper.WithSettings(s))

			dst := []int{9}
			require.NoError(t, m.Map([]int{1, 2, 3}, &dst))
			assert.Equal(t, tt.want, dst)

			// mapping the same source again keeps the state for reset and grows it for merge
			again := append([]int(nil), dst...)
			require.NoError(t, m.Map([]int{1, 2, 3}, &again))
			assert.Subset(t, again, dst)
		})
	}
}

func TestMap_UpdateByKey(t *testing.T) {
	m := newMapper(t)

	bySKU := mapper.NewComparer(func(s Line, d LineDTO) bool { return s.SKU == d.SKU })
	err := mapper.Pair[Order, OrderDTO](m).
		MapMember("Lines", "Lines", mapper.WithCollection(mapper.CollectionUpdate), mapper.WithComparer(bySKU)).
		Err()
	require.NoError(t, err)

	dst := OrderDTO{Lines: []LineDTO{{SKU: "a", Qty: "1"}, {SKU: "gone", Qty: "5"}}}
	require.NoError(t, m.Map(Order{Lines: []Line{{SKU: "a", Qty: 3}, {SKU: "new", Qty: 1}}}, &dst))

	assert.Equal(t, []LineDTO{{SKU: "a", Qty: "3"}, {SKU: "new", Qty: "1"}}, dst.Lines)
}

func TestMap_UpdateWithoutComparer(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, mapper.Pair[[]Line, []LineDTO](m).Collection(mapper.CollectionUpdate).Err())

	var dst []LineDTO
	err := m.Map([]Line{{SKU: "a"}}, &dst)

	var cfgErr *mapper.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestMap_ReferenceBehavior(t *testing.T) {
	src := &Employee{Name: "new", Manager: &Employee{Name: "boss"}}

	t.Run("reuse", func(t *testing.T) {
		m := newMapper(t)

		existing := &EmployeeDTO{Name: "old"}
		dst := &EmployeeDTO{Manager: existing}
		require.NoError(t, m.Map(src, dst))
		assert.Same(t, existing, dst.Manager)
		assert.Equal(t, "boss", existing.Name)
	})

	t.Run("create new", func(t *testing.T) {
		m := newMapper(t)
		require.NoError(t, mapper.Pair[*Employee, *EmployeeDTO](m).Reference(mapper.ReferenceCreateNew).Err())

		existing := &EmployeeDTO{Name: "old"}
		dst := &EmployeeDTO{Manager: existing}
		require.NoError(t, m.Map(src, dst))
		assert.NotSame(t, existing, dst.Manager)
		assert.Equal(t, "old", existing.Name)
		assert.Equal(t, "boss", dst.Manager.Name)
	})

	t.Run("constructor", func(t *testing.T) {
		m := newMapper(t)

		calls := 0
		ctor := mapper.NewConstructor(func() (*EmployeeDTO, error) {
			calls++
			return &EmployeeDTO{Name: "built"}, nil
		})
		require.NoError(t, mapper.Pair[*Employee, *EmployeeDTO](m).Constructor(ctor).Err())

		got, err := mapper.To[*EmployeeDTO](m, src)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
		assert.Equal(t, 2, calls)
	})
}

func TestMap_Converters(t *testing.T) {
	m := newMapper(t)

	err := mapper.Pair[Order, OrderSummary](m).
		MapMemberWith("CustomerName", "Customer", func(c *Customer) (string, bool) {
			if c == nil {
				return "", false
			}

			return c.Name + " <" + c.Email + ">", true
		}).
		Err()
	require.NoError(t, err)

	got, err := mapper.To[OrderSummary](m, Order{Customer: &Customer{Name: "Ada", Email: "a@x"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada <a@x>", got.CustomerName)

	require.NoError(t, mapper.Pair[Customer, string](m).Converter(func(c Customer) string { return c.Name }).Err())

	name, err := mapper.To[string](m, Customer{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
}

func TestRegisterEnum(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, mapper.RegisterEnum(m, map[string]Status{"pending": Pending, "shipped": Shipped}))

	got, err := mapper.To[Status](m, "SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, Shipped, got)

	name, err := mapper.To[string](m, Pending)
	require.NoError(t, err)
	assert.Equal(t, "pending", name)

	_, err = mapper.To[Status](m, "lost")

	var convErr *mapper.ConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestMap_StringerEnumByName(t *testing.T) {
	m := newMapper(t)

	type Ticket struct{ Level string }

	type TicketDTO struct{ Level Severity }

	got, err := mapper.To[TicketDTO](m, Ticket{Level: "high"})
	require.NoError(t, err)
	assert.Equal(t, TicketDTO{Level: High}, got)

	back, err := mapper.To[Ticket](m, TicketDTO{Level: Low})
	require.NoError(t, err)
	assert.Equal(t, Ticket{Level: "Low"}, back)
}

func TestMap_Errors(t *testing.T) {
	t.Run("invalid target", func(t *testing.T) {
		m := newMapper(t)
		require.ErrorIs(t, m.Map(Order{}, OrderDTO{}), mapper.ErrInvalidTarget)

		_, err := mapper.MapStruct[*OrderDTO](m, Order{})
		require.ErrorIs(t, err, mapper.ErrInvalidTarget)
	})

	t.Run("conversion not allowed", func(t *testing.T) {
		s := mapper.DefaultSettings()
		s.Conversions = []string{"safe_number"}
		m := newMapper(t, mapper.WithSettings(s))

		_, err := mapper.To[string](m, 5)

		var convErr *mapper.ConversionError
		require.ErrorAs(t, err, &convErr)
		require.ErrorIs(t, err, mapper.ErrNotConvertible)
	})

	t.Run("conversion failure names the member", func(t *testing.T) {
		m := newMapper(t)

		_, err := mapper.To[Line](m, LineDTO{SKU: "a", Qty: "many"})

		var convErr *mapper.ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, "Qty", convErr.Member)
	})

	t.Run("unknown member path", func(t *testing.T) {
		m := newMapper(t)

		err := mapper.Pair[Animal, AnimalDTO](m).MapMember("Kind", "Genus").Err()

		var cfgErr *mapper.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "Kind", cfgErr.Member)

		// the pair keeps failing until it is fixed
		_, err = mapper.To[AnimalDTO](m, Animal{})
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("configured after use", func(t *testing.T) {
		m := newMapper(t)

		_, err := mapper.To[AnimalDTO](m, Animal{})
		require.NoError(t, err)

		err = mapper.Pair[Animal, AnimalDTO](m).Collection(mapper.CollectionMerge).Err()
		require.ErrorIs(t, err, mapper.ErrAlreadyCompiled)
	})

	t.Run("bad converter", func(t *testing.T) {
		m := newMapper(t)

		err := mapper.Pair[Order, OrderSummary](m).MapMemberWith("ID", "ID", "not a function").Err()
		require.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		s := mapper.DefaultSettings()
		s.Convention = "guess"

		_, err := mapper.New(mapper.WithSettings(s))
		require.Error(t, err)
	})

	t.Run("rule category without rules", func(t *testing.T) {
		_, err := mapper.New(mapper.WithRules(func(rules *mapper.RuleSet) {
			rules.Replace(mapper.RuleCategoryName)
		}))

		var cfgErr *mapper.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestWithRules(t *testing.T) {
	type Source struct{ DtoName string }
	type Target struct{ Name string }

	m := newMapper(t, mapper.WithRules(func(rules *mapper.RuleSet) {
		rules.Add(mapper.PrefixName{Prefixes: []string{"Dto"}})
	}))

	got, err := mapper.To[Target](m, Source{DtoName: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestMapWithTracker(t *testing.T) {
	m := newMapper(t)
	tr := mapper.NewTracker()

	shared := &Employee{Name: "shared"}

	var a, b EmployeeDTO
	require.NoError(t, m.MapWithTracker(tr, &Employee{Manager: shared}, &a))
	require.NoError(t, m.MapWithTracker(tr, &Employee{Manager: shared}, &b))
	assert.Same(t, a.Manager, b.Manager)
}

func TestMapType(t *testing.T) {
	m := newMapper(t)

	v, err := m.MapType(Customer{Name: "Ada"}, reflect.TypeFor[CustomerDTO]())
	require.NoError(t, err)
	assert.Equal(t, CustomerDTO{Name: "Ada"}, v)

	s, err := mapper.MapStruct[CustomerDTO](m, &Customer{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, CustomerDTO{Name: "Bob"}, s)
}

func TestDescribe(t *testing.T) {
	m := newMapper(t)

	out, err := m.Describe(reflect.TypeFor[*Employee](), reflect.TypeFor[*EmployeeDTO]())
	require.NoError(t, err)
	assert.Contains(t, out, "#1 reference *mapper_test.Employee -> *mapper_test.EmployeeDTO (tracking on, reuse_target)")
}

func TestMap_Concurrent(t *testing.T) {
	m := newMapper(t)

	var g errgroup.Group

	for i := range 32 {
		g.Go(func() error {
			src := &Employee{Name: "e", Manager: &Employee{Name: "m"}}
			src.Self = src

			got, err := mapper.To[*EmployeeDTO](m, src)
			if err != nil {
				return err
			}

			if got.Self != got || got.Manager.Name != "m" {
				t.Errorf("worker %d: unexpected result %s", i, spew.Sdump(got))
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}
