package dreki

import "fmt"

// Name and tag indices. A name maps to exactly one entity; a tag is
// many-to-many. Both indices are purged automatically when an entity is
// despawned.

// NameEntity assigns a unique name to an entity.
//
// Panics if the name is already in use — overwriting a name silently would
// hide a scene-construction bug.
func (w *World) NameEntity(e Entity, name string) {
	if existing, ok := w.names[name]; ok {
		panic(fmt.Sprintf("dreki: name %q is already used by entity %v (tried to assign to %v)", name, existing, e))
	}
	w.names[name] = e
	w.namesRev[e.Index] = name
}

// Named returns the entity with the given name.
//
// Panics if no entity has that name.
func (w *World) Named(name string) Entity {
	e, ok := w.names[name]
	if !ok {
		panic(fmt.Sprintf("dreki: no entity named %q", name))
	}
	return e
}

// TryNamed returns the entity with the given name, or ok=false if the name is
// unused.
func (w *World) TryNamed(name string) (Entity, bool) {
	e, ok := w.names[name]
	return e, ok
}

// Tag adds a tag to an entity. An entity can carry multiple tags and many
// entities can share one tag.
func (w *World) Tag(e Entity, tag string) {
	set, ok := w.tags[tag]
	if !ok {
		set = make(map[Entity]struct{})
		w.tags[tag] = set
	}
	set[e] = struct{}{}
	w.entityTags[e.Index] = append(w.entityTags[e.Index], tag)
}

// Tagged returns all entities carrying the given tag, in no particular order.
// Unknown tags yield an empty slice.
func (w *World) Tagged(tag string) []Entity {
	set, ok := w.tags[tag]
	if !ok {
		return nil
	}
	entities := make([]Entity, 0, len(set))
	for e := range set {
		entities = append(entities, e)
	}
	return entities
}
