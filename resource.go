package dreki

import "fmt"

// Resources are singleton values owned by the World and keyed by type — the
// home for state that isn't tied to any entity, like a clock or an input
// snapshot. A resource can be temporarily removed with ResourceRemove, used
// alongside the World, then reinserted: the same extract/restore idiom the
// query engine applies to columns.

// InsertResource stores a resource, replacing any existing value of the same
// type.
func InsertResource[T any](w *World, value T) {
	w.resources[typeOf[T]()] = &value
}

// Resource returns the resource of type T.
//
// Panics if the resource hasn't been inserted — a missing required resource
// is a wiring bug, not a runtime condition to recover from.
func Resource[T any](w *World) *T {
	box, ok := w.resources[typeOf[T]()]
	if !ok {
		panic(fmt.Sprintf("dreki: resource %s not found; was it inserted?", typeOf[T]()))
	}
	return box.(*T)
}

// GetResource returns the resource of type T, or ok=false if absent.
func GetResource[T any](w *World) (*T, bool) {
	box, ok := w.resources[typeOf[T]()]
	if !ok {
		return nil, false
	}
	return box.(*T), true
}

// ResourceRemove takes a resource out of the World, transferring ownership to
// the caller. Returns ok=false if no resource of type T is present.
func ResourceRemove[T any](w *World) (T, bool) {
	t := typeOf[T]()
	box, ok := w.resources[t]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, t)
	return *box.(*T), true
}

// HasResource reports whether a resource of type T is present.
func HasResource[T any](w *World) bool {
	_, ok := w.resources[typeOf[T]()]
	return ok
}
