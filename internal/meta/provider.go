package meta

import (
	"reflect"
	"sync"
)

// Filter selects which members a provider exposes.
type Filter struct {
	Fields       bool // exported struct fields, including promoted ones
	Accessors    bool // getter/setter method pairs
	DeclaredOnly bool // drop members promoted through embedding
}

// DefaultFilter exposes fields and accessors, declared and promoted.
func DefaultFilter() Filter {
	return Filter{Fields: true, Accessors: true}
}

// Provider yields the members of a type. Pointer types are described by their
// element type.
type Provider interface {
	// SourceMembers returns the readable members of t in declaration order.
	SourceMembers(t reflect.Type) []Member
	// TargetMembers returns the writable members of t in declaration order.
	TargetMembers(t reflect.Type) []Member
	// Category returns the closed category of t.
	Category(t reflect.Type) Category
}

type typeInfo struct {
	members  []Member
	category Category
}

// ReflectProvider discovers members with reflection and caches the result per type.
type ReflectProvider struct {
	filter Filter

	mu    sync.RWMutex
	types map[reflect.Type]*typeInfo
}

var _ Provider = (*ReflectProvider)(nil)

// NewReflectProvider creates a provider exposing members selected by filter.
func NewReflectProvider(filter Filter) *ReflectProvider {
	return &ReflectProvider{
		filter: filter,
		types:  make(map[reflect.Type]*typeInfo),
	}
}

// Filter returns the provider's member filter.
func (p *ReflectProvider) Filter() Filter {
	return p.filter
}

func (p *ReflectProvider) SourceMembers(t reflect.Type) []Member {
	return selectMembers(p.info(t).members, func(m Member) bool { return m.Readable })
}

func (p *ReflectProvider) TargetMembers(t reflect.Type) []Member {
	return selectMembers(p.info(t).members, func(m Member) bool { return m.Writable })
}

func (p *ReflectProvider) Category(t reflect.Type) Category {
	return p.info(t).category
}

// Member looks a member up by name among all members of t.
func (p *ReflectProvider) Member(t reflect.Type, name string) (Member, bool) {
	for _, m := range p.info(t).members {
		if m.Name == name {
			return m, true
		}
	}

	return Member{}, false
}

func (p *ReflectProvider) info(t reflect.Type) *typeInfo {
	t = Deref(t)

	p.mu.RLock()
	info, ok := p.types[t]
	p.mu.RUnlock()

	if ok {
		return info
	}

	info = &typeInfo{
		members:  discover(t, p.filter),
		category: CategoryOf(t),
	}

	p.mu.Lock()
	if existing, ok := p.types[t]; ok {
		info = existing
	} else {
		p.types[t] = info
	}
	p.mu.Unlock()

	return info
}

func selectMembers(members []Member, keep func(Member) bool) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if keep(m) {
			out = append(out, m)
		}
	}

	return out
}

// discover lists the members of t: fields first, then accessors sorted by name
// as reflect reports methods.
func discover(t reflect.Type, filter Filter) []Member {
	var members []Member

	switch t.Kind() {
	case reflect.Struct:
		if filter.Fields {
			members = append(members, structFields(t, filter)...)
		}

		if filter.Accessors {
			members = append(members, structAccessors(t, filter, members)...)
		}

	case reflect.Interface:
		if filter.Accessors {
			members = append(members, interfaceGetters(t)...)
		}
	}

	return members
}

func structFields(t reflect.Type, filter Filter) []Member {
	var members []Member

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous && isStructLike(f.Type) {
			continue
		}

		depth := len(f.Index) - 1
		if filter.DeclaredOnly && depth > 0 {
			continue
		}

		members = append(members, Member{
			Name:     f.Name,
			Type:     f.Type,
			Kind:     MemberKindField,
			Owner:    t,
			Index:    f.Index,
			Tag:      f.Tag,
			Depth:    depth,
			Readable: true,
			Writable: writableThrough(t, f.Index),
		})
	}

	return members
}

// isStructLike reports embedded struct (or pointer to struct) fields; their
// promoted members are listed instead.
func isStructLike(t reflect.Type) bool {
	return Deref(t).Kind() == reflect.Struct
}

// writableThrough reports whether no unexported embedded pointer lies on the path;
// such pointers cannot be allocated through reflection.
func writableThrough(t reflect.Type, index []int) bool {
	cur := t
	for i, x := range index {
		if i > 0 && cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}

		f := cur.Field(x)
		if i < len(index)-1 && f.Type.Kind() == reflect.Pointer && !f.IsExported() {
			return false
		}

		cur = f.Type
	}

	return true
}

func structAccessors(t reflect.Type, filter Filter, fields []Member) []Member {
	taken := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		taken[f.Name] = struct{}{}
	}

	pt := reflect.PointerTo(t)

	getters := make(map[string]reflect.Method)
	setters := make(map[string]reflect.Method)

	var order []string

	for i := range pt.NumMethod() {
		method := pt.Method(i)
		if _, skip := skipMethods[method.Name]; skip {
			continue
		}

		if filter.DeclaredOnly && promotedMethod(t, method.Name) {
			continue
		}

		mt := method.Type

		switch {
		case mt.NumIn() == 1 && mt.NumOut() == 1:
			getters[method.Name] = method
			order = append(order, method.Name)
		case mt.NumIn() == 2 && mt.NumOut() == 0:
			if _, ok := setterTarget(method.Name); ok {
				setters[method.Name] = method
				order = append(order, method.Name)
			}
		}
	}

	var members []Member

	used := make(map[string]struct{})

	for _, name := range order {
		if _, ok := used[name]; ok {
			continue
		}

		if getter, ok := getters[name]; ok {
			m := Member{
				Name:     name,
				Type:     getter.Type.Out(0),
				Kind:     MemberKindAccessor,
				Owner:    t,
				Getter:   name,
				Readable: true,
			}

			setterName := setPrefix + getterBase(name)
			if setter, ok := setters[setterName]; ok && setter.Type.In(1) == m.Type {
				m.Setter = setterName
				m.Writable = true
				used[setterName] = struct{}{}
			}

			if promotedMethod(t, name) {
				m.Depth = 1
			}

			used[name] = struct{}{}

			if _, clash := taken[m.Name]; !clash {
				members = append(members, m)
			}

			continue
		}

		setter := setters[name]
		base, _ := setterTarget(name)

		// SetName pairs with Name() or GetName() when both exist
		if g, ok := getters[base]; ok && g.Type.Out(0) == setter.Type.In(1) {
			continue
		}

		if g, ok := getters[getPrefix+base]; ok && g.Type.Out(0) == setter.Type.In(1) {
			continue
		}

		used[name] = struct{}{}

		m := Member{
			Name:     name,
			Type:     setter.Type.In(1),
			Kind:     MemberKindAccessor,
			Owner:    t,
			Setter:   name,
			Writable: true,
		}

		if promotedMethod(t, name) {
			m.Depth = 1
		}

		members = append(members, m)
	}

	return members
}

// promotedMethod reports whether the method comes from an embedded field.
func promotedMethod(t reflect.Type, name string) bool {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := f.Type
		if ft.Kind() != reflect.Pointer && ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(ft)
		}

		if _, ok := ft.MethodByName(name); ok {
			return true
		}
	}

	return false
}

func interfaceGetters(t reflect.Type) []Member {
	var members []Member

	for i := range t.NumMethod() {
		method := t.Method(i)
		if _, skip := skipMethods[method.Name]; skip {
			continue
		}

		if method.Type.NumIn() != 0 || method.Type.NumOut() != 1 {
			continue
		}

		members = append(members, Member{
			Name:     method.Name,
			Type:     method.Type.Out(0),
			Kind:     MemberKindAccessor,
			Owner:    t,
			Getter:   method.Name,
			Readable: true,
		})
	}

	return members
}
