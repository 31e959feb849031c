package dreki

import (
	"reflect"
	"sort"

	"github.com/TheBitDrifter/mask"
)

// archetypeKey is the canonical identity of an archetype: a bitmask over the
// schema rows of its component types. Two component sets with the same types
// in any order and with duplicates collapsed produce the same key.
type archetypeKey = mask.Mask

// archetype is a columnar table of every entity sharing one exact component
// set. Row i of every column and entities[i] refer to the same entity, and
// all columns always have the same length as the entity list.
type archetype struct {
	key archetypeKey
	// types is the component set sorted by schema row, for deterministic
	// iteration and diagnostics.
	types    []reflect.Type
	columns  map[reflect.Type]*componentColumn
	entities []Entity
}

func newArchetype(s *schema, types []reflect.Type) *archetype {
	var key archetypeKey
	columns := make(map[reflect.Type]*componentColumn, len(types))
	dedup := make([]reflect.Type, 0, len(types))
	for _, t := range types {
		if _, exists := columns[t]; exists {
			continue
		}
		key.Mark(s.rowIndexFor(t))
		columns[t] = newColumn()
		dedup = append(dedup, t)
	}
	sort.Slice(dedup, func(i, j int) bool {
		return s.rows[dedup[i]] < s.rows[dedup[j]]
	})
	return &archetype{key: key, types: dedup, columns: columns}
}

func (a *archetype) hasType(t reflect.Type) bool {
	_, ok := a.columns[t]
	return ok
}

// swapRemove removes row from every column and the entity list, mirroring the
// same relocation everywhere. Returns the entity that was moved into the
// vacated row, or ok=false if the last row was removed.
func (a *archetype) swapRemove(row int) (moved Entity, ok bool) {
	for _, col := range a.columns {
		col.swapRemove(row)
	}
	last := len(a.entities) - 1
	a.entities[row] = a.entities[last]
	a.entities = a.entities[:last]
	if row < len(a.entities) {
		return a.entities[row], true
	}
	return Entity{}, false
}

// archetypeSet is the registry of all archetypes in a World: a lookup by key
// plus a stable insertion-ordered list for iteration.
type archetypeSet struct {
	byKey map[archetypeKey]int
	list  []*archetype
}

func newArchetypeSet() *archetypeSet {
	return &archetypeSet{byKey: make(map[archetypeKey]int)}
}

func (s *archetypeSet) get(key archetypeKey) (*archetype, bool) {
	if i, ok := s.byKey[key]; ok {
		return s.list[i], true
	}
	return nil, false
}

func (s *archetypeSet) add(a *archetype) {
	s.byKey[a.key] = len(s.list)
	s.list = append(s.list, a)
}
