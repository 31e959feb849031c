package dreki

import (
	"fmt"
	"iter"
	"reflect"

	iterutil "github.com/TheBitDrifter/util/iter"
	"github.com/rs/zerolog"
)

// entityLocation is the sole durable pointer from an entity to its storage:
// which archetype it lives in and which row it occupies. Rewritten on every
// migration and on every despawn-induced swap.
type entityLocation struct {
	key archetypeKey
	row int
}

// World owns all entities, their components (organized into archetypes), and
// global resources. Exactly one caller holds the World at any instant; no
// operation suspends or runs concurrently with another.
type World struct {
	alloc      entityAllocator
	schema     *schema
	archetypes *archetypeSet
	// locations maps entity index to its place in archetype storage.
	locations map[uint32]entityLocation
	// resources are singletons keyed by type, boxed the same way as columns.
	resources map[reflect.Type]any
	// Named entity lookup and its reverse index.
	names    map[string]Entity
	namesRev map[uint32]string
	// Tag membership, both directions.
	tags       map[string]map[Entity]struct{}
	entityTags map[uint32][]string
	// Per-frame counters, reported and reset by PoolStats.
	spawnedThisFrame   uint32
	despawnedThisFrame uint32

	log zerolog.Logger
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	w := &World{
		schema:     newSchema(),
		archetypes: newArchetypeSet(),
		locations:  make(map[uint32]entityLocation),
		resources:  make(map[reflect.Type]any),
		names:      make(map[string]Entity),
		namesRev:   make(map[uint32]string),
		tags:       make(map[string]map[Entity]struct{}),
		entityTags: make(map[uint32][]string),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// EntityCount returns the number of alive entities.
func (w *World) EntityCount() int {
	return w.alloc.aliveCount()
}

// ArchetypeCount returns the number of archetypes, empty ones included.
func (w *World) ArchetypeCount() int {
	return len(w.archetypes.list)
}

// IsAlive reports whether an entity handle is still valid.
func (w *World) IsAlive(e Entity) bool {
	return w.alloc.isAlive(e)
}

// getOrCreateArchetype returns the archetype for the given component set,
// creating it (and registering any unseen component types) on first use.
func (w *World) getOrCreateArchetype(types []reflect.Type) *archetype {
	var key archetypeKey
	for _, t := range types {
		key.Mark(w.schema.rowIndexFor(t))
	}
	if arch, ok := w.archetypes.get(key); ok {
		return arch
	}
	arch := newArchetype(w.schema, types)
	w.archetypes.add(arch)
	names := make([]string, len(arch.types))
	for i, t := range arch.types {
		names[i] = shortTypeName(t)
	}
	w.log.Debug().Strs("components", names).Msg("archetype created")
	return arch
}

// ── Spawn / Despawn ──────────────────────────────────────────────────────

// Spawn creates an entity carrying the given bundle of components. Components
// may be passed as values or as pointers; either way the World owns the
// stored copy. Panics if the bundle contains two components of the same type.
func (w *World) Spawn(components ...any) Entity {
	types := make([]reflect.Type, len(components))
	boxes := make([]any, len(components))
	for i, c := range components {
		t, box := boxComponent(c)
		for _, seen := range types[:i] {
			if seen == t {
				panic(fmt.Sprintf("dreki: duplicate component type %s in spawn bundle", t))
			}
		}
		types[i] = t
		boxes[i] = box
	}

	e := w.alloc.allocate()
	w.spawnedThisFrame++

	arch := w.getOrCreateArchetype(types)
	row := len(arch.entities)
	arch.entities = append(arch.entities, e)
	for i, t := range types {
		arch.columns[t].pushAny(boxes[i])
	}
	w.locations[e.Index] = entityLocation{key: arch.key, row: row}
	return e
}

// SpawnEmpty creates an entity with no components. It lives in the empty
// archetype until components are inserted.
func (w *World) SpawnEmpty() Entity {
	return w.Spawn()
}

// Despawn removes an entity from the world, freeing its slot for reuse and
// purging any name or tag entries. Returns false if the entity is already
// dead — absence is an expected outcome, not an error.
func (w *World) Despawn(e Entity) bool {
	if !w.alloc.isAlive(e) {
		return false
	}

	if name, ok := w.namesRev[e.Index]; ok {
		delete(w.namesRev, e.Index)
		delete(w.names, name)
	}
	if tags, ok := w.entityTags[e.Index]; ok {
		delete(w.entityTags, e.Index)
		for _, tag := range tags {
			if set, ok := w.tags[tag]; ok {
				delete(set, e)
				if len(set) == 0 {
					delete(w.tags, tag)
				}
			}
		}
	}

	if loc, ok := w.locations[e.Index]; ok {
		delete(w.locations, e.Index)
		if arch, ok := w.archetypes.get(loc.key); ok {
			// Whichever entity was swapped into the vacated row needs its
			// recorded location patched to point there.
			if moved, swapped := arch.swapRemove(loc.row); swapped {
				movedLoc := w.locations[moved.Index]
				movedLoc.row = loc.row
				w.locations[moved.Index] = movedLoc
			}
		}
	}

	w.alloc.deallocate(e)
	w.despawnedThisFrame++
	return true
}

// liveEntities yields every alive entity, archetype by archetype.
func (w *World) liveEntities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, arch := range w.archetypes.list {
			for _, e := range arch.entities {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// DespawnAll despawns every entity in the world and clears the name and tag
// indices.
func (w *World) DespawnAll() {
	all := iterutil.Collect(w.liveEntities())
	for _, e := range all {
		w.Despawn(e)
	}
	// Despawn already removes per-entity entries; this guarantees a clean
	// slate regardless.
	clear(w.names)
	clear(w.namesRev)
	clear(w.tags)
	clear(w.entityTags)
	w.log.Debug().Int("count", len(all)).Msg("despawned all entities")
}

// ── Per-Entity Component Access ──────────────────────────────────────────

// Get returns a pointer to the component of type T on an entity, or ok=false
// if the entity is dead or doesn't carry T.
func Get[T any](w *World, e Entity) (*T, bool) {
	if !w.alloc.isAlive(e) {
		return nil, false
	}
	loc, ok := w.locations[e.Index]
	if !ok {
		return nil, false
	}
	arch, ok := w.archetypes.get(loc.key)
	if !ok {
		return nil, false
	}
	col, ok := arch.columns[typeOf[T]()]
	if !ok {
		return nil, false
	}
	return columnGet[T](col, loc.row), true
}

// GetMut returns a pointer to the component of type T on an entity for
// mutation, or ok=false if the component is absent.
//
// Panics if the entity is dead: writing through a stale handle would mean
// the location invariant has already been violated.
func GetMut[T any](w *World, e Entity) (*T, bool) {
	if !w.alloc.isAlive(e) {
		panic(fmt.Sprintf("dreki: cannot mutate component %s on dead entity %v", typeOf[T](), e))
	}
	loc := w.locations[e.Index]
	arch, ok := w.archetypes.get(loc.key)
	if !ok {
		return nil, false
	}
	col, ok := arch.columns[typeOf[T]()]
	if !ok {
		return nil, false
	}
	return columnGet[T](col, loc.row), true
}

// ── Dynamic Component Add / Remove ───────────────────────────────────────

// Insert attaches a component to an existing entity. If the entity already
// carries type T the value is replaced in place; otherwise the entity
// migrates to the archetype for its schema plus T.
//
// Panics if the entity is not alive.
func Insert[T any](w *World, e Entity, component T) {
	if !w.alloc.isAlive(e) {
		panic(fmt.Sprintf("dreki: cannot insert component %s on dead entity %v", typeOf[T](), e))
	}
	box := &component
	w.insertBoxed(e, typeOf[T](), box, true)
}

// InsertAnyComponent attaches a type-erased component to an entity, migrating
// it to a new archetype. Deserialization paths use this to insert decoded
// components without knowing the concrete type at compile time. If the entity
// already carries the type the call is a no-op.
//
// Panics if the entity is not alive.
func (w *World) InsertAnyComponent(e Entity, component any) {
	if !w.alloc.isAlive(e) {
		panic(fmt.Sprintf("dreki: cannot insert component on dead entity %v", e))
	}
	t, box := boxComponent(component)
	w.insertBoxed(e, t, box, false)
}

// insertBoxed implements insert for an already-boxed component. When replace
// is false an existing component of the same type is left untouched.
func (w *World) insertBoxed(e Entity, t reflect.Type, box any, replace bool) {
	loc := w.locations[e.Index]
	src, _ := w.archetypes.get(loc.key)

	if col, ok := src.columns[t]; ok {
		if replace {
			reflect.ValueOf(col.getAny(loc.row)).Elem().Set(reflect.ValueOf(box).Elem())
		}
		return
	}

	dstTypes := append(append(make([]reflect.Type, 0, len(src.types)+1), src.types...), t)
	dst := w.getOrCreateArchetype(dstTypes)
	w.moveEntity(e, loc, src, dst, t, box, nil)
}

// Remove detaches the component of type T from an entity, migrating it to the
// archetype for its schema minus T. Returns false if the entity doesn't carry
// T — expected absence, not an error.
//
// Panics if the entity is not alive.
func Remove[T any](w *World, e Entity) bool {
	if !w.alloc.isAlive(e) {
		panic(fmt.Sprintf("dreki: cannot remove component %s from dead entity %v", typeOf[T](), e))
	}
	return w.removeType(e, typeOf[T]())
}

func (w *World) removeType(e Entity, t reflect.Type) bool {
	loc := w.locations[e.Index]
	src, _ := w.archetypes.get(loc.key)
	if !src.hasType(t) {
		return false
	}

	dstTypes := make([]reflect.Type, 0, len(src.types)-1)
	for _, st := range src.types {
		if st != t {
			dstTypes = append(dstTypes, st)
		}
	}
	dst := w.getOrCreateArchetype(dstTypes)
	w.moveEntity(e, loc, src, dst, nil, nil, t)
	return true
}

// moveEntity migrates an entity from src to dst. Every component currently on
// the entity is taken out of src with swap-remove mechanics — patching the
// location of whichever entity got relocated into the vacated row — then
// pushed into dst's matching columns, plus the added component (add/addBox)
// and minus the dropped one (drop). Finally the entity's location is
// rewritten to its new row.
func (w *World) moveEntity(e Entity, loc entityLocation, src, dst *archetype, add reflect.Type, addBox any, drop reflect.Type) {
	taken := make(map[reflect.Type]any, len(src.columns))
	for t, col := range src.columns {
		taken[t] = col.take(loc.row)
	}

	last := len(src.entities) - 1
	src.entities[loc.row] = src.entities[last]
	src.entities = src.entities[:last]
	if loc.row < len(src.entities) {
		moved := src.entities[loc.row]
		movedLoc := w.locations[moved.Index]
		movedLoc.row = loc.row
		w.locations[moved.Index] = movedLoc
	}

	newRow := len(dst.entities)
	dst.entities = append(dst.entities, e)
	if add != nil {
		dst.columns[add].pushAny(addBox)
	}
	for t, col := range dst.columns {
		if t == add {
			continue
		}
		if box, ok := taken[t]; ok && t != drop {
			col.pushAny(box)
		}
	}
	// A dropped component's box is simply abandoned here.

	w.locations[e.Index] = entityLocation{key: dst.key, row: newRow}
}

// ── Type-Erased Access ───────────────────────────────────────────────────

// GetAnyByType returns the boxed component of the given type on an entity, or
// ok=false if the entity is dead or doesn't carry it. The result is a pointer
// to the stored value wrapped in any; introspection only.
func (w *World) GetAnyByType(e Entity, t reflect.Type) (any, bool) {
	if !w.alloc.isAlive(e) {
		return nil, false
	}
	loc, ok := w.locations[e.Index]
	if !ok {
		return nil, false
	}
	arch, ok := w.archetypes.get(loc.key)
	if !ok {
		return nil, false
	}
	col, ok := arch.columns[t]
	if !ok {
		return nil, false
	}
	return col.getAny(loc.row), true
}

// ForEachEntity calls f for every alive entity with the component types on
// its archetype. Serialization paths walk the world this way.
func (w *World) ForEachEntity(f func(e Entity, types []reflect.Type)) {
	for _, arch := range w.archetypes.list {
		for _, e := range arch.entities {
			f(e, arch.types)
		}
	}
}

// EntitiesWith collects every entity carrying a component of type T.
func EntitiesWith[T any](w *World) []Entity {
	t := typeOf[T]()
	var result []Entity
	for _, arch := range w.archetypes.list {
		if arch.hasType(t) {
			result = append(result, arch.entities...)
		}
	}
	return result
}

// HasComponentType reports whether any non-empty archetype contains a
// component of type T.
func HasComponentType[T any](w *World) bool {
	t := typeOf[T]()
	for _, arch := range w.archetypes.list {
		if arch.hasType(t) && len(arch.entities) > 0 {
			return true
		}
	}
	return false
}
