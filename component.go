package dreki

import (
	"fmt"
	"reflect"
)

// maxComponentTypes bounds the number of distinct component types a schema can
// register; archetype keys are fixed-size bitmasks over these rows.
const maxComponentTypes = 64

// typeOf returns the reflect.Type identifying component type T.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// shortTypeName strips the package path from a component type, keeping only
// the bare name (e.g. "dreki.Transform" -> "Transform").
func shortTypeName(t reflect.Type) string {
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// schema assigns each component type a stable row index within a World. Row
// indices are the bit positions used to build archetype key masks.
type schema struct {
	rows  map[reflect.Type]uint32
	types []reflect.Type
}

func newSchema() *schema {
	return &schema{rows: make(map[reflect.Type]uint32)}
}

// rowIndexFor returns the row index for a component type, registering it on
// first sight. Panics once the schema is full — a hard capacity limit, not a
// recoverable condition.
func (s *schema) rowIndexFor(t reflect.Type) uint32 {
	if row, ok := s.rows[t]; ok {
		return row
	}
	if len(s.types) >= maxComponentTypes {
		panic(fmt.Sprintf("dreki: cannot register component type %s: maximum of %d component types reached", t, maxComponentTypes))
	}
	row := uint32(len(s.types))
	s.rows[t] = row
	s.types = append(s.types, t)
	return row
}

// componentColumn is a type-erased, append-only, homogeneous sequence of
// components. Each element is a boxed pointer (*T stored as any), so typed
// access hands out stable pointers into the box and migration can move the
// box between archetypes without copying or knowing T.
type componentColumn struct {
	data []any
}

func newColumn() *componentColumn {
	return &componentColumn{}
}

// columnGet returns the component at index as *T.
//
// Panics if the stored type doesn't match — that means the archetype's
// row/column invariants are already broken, never a user error.
func columnGet[T any](c *componentColumn, index int) *T {
	p, ok := c.data[index].(*T)
	if !ok {
		panic(fmt.Sprintf("dreki: component type mismatch: expected %s in column", typeOf[T]()))
	}
	return p
}

// swapRemove removes the element at index by moving the last element into its
// slot. Returns true iff a relocation happened (the removed element was not
// the last one).
func (c *componentColumn) swapRemove(index int) bool {
	last := len(c.data) - 1
	swapped := index != last
	c.data[index] = c.data[last]
	c.data[last] = nil
	c.data = c.data[:last]
	return swapped
}

// take removes the element at index with swap-remove mechanics and transfers
// ownership of the box to the caller. Used when migrating an entity between
// archetypes.
func (c *componentColumn) take(index int) any {
	v := c.data[index]
	c.swapRemove(index)
	return v
}

// pushAny appends a boxed component taken from another column.
func (c *componentColumn) pushAny(box any) {
	c.data = append(c.data, box)
}

// getAny returns the boxed component at index for introspection. The result
// is a *T wrapped in any.
func (c *componentColumn) getAny(index int) any {
	return c.data[index]
}

func (c *componentColumn) len() int {
	return len(c.data)
}

// boxComponent normalizes a component value into (element type, boxed
// pointer). Plain values are copied into a fresh box; pointers are used as
// the box directly, which lets deserialization paths hand over ownership.
func boxComponent(component any) (reflect.Type, any) {
	rt := reflect.TypeOf(component)
	if rt == nil {
		panic("dreki: cannot attach untyped nil as a component")
	}
	if rt.Kind() == reflect.Pointer {
		return rt.Elem(), component
	}
	box := reflect.New(rt)
	box.Elem().Set(reflect.ValueOf(component))
	return rt, box.Interface()
}
