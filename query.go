package dreki

import (
	"fmt"
	"reflect"
)

// The query engine yields borrowed component data per entity across every
// archetype whose component set is a superset of the requested types.
//
// Columns are temporarily extracted from the archetype's column map into an
// owned local set for the duration of a pass, then restored on every exit
// path — including a panic inside the caller's closure. Row indices are fixed
// at extraction time, so structural mutation performed by the closure is not
// observed within the same pass; collect affected entities and apply changes
// afterwards, or queue them on a Commands buffer.

// matchingArchetypes collects the archetypes whose key contains every
// required type. The snapshot is taken before iteration begins so archetypes
// created mid-pass are not visited.
func (w *World) matchingArchetypes(required []reflect.Type) []*archetype {
	var req archetypeKey
	for _, t := range required {
		req.Mark(w.schema.rowIndexFor(t))
	}
	var matched []*archetype
	for _, arch := range w.archetypes.list {
		if arch.key.ContainsAll(req) {
			matched = append(matched, arch)
		}
	}
	return matched
}

// forEachMatch runs the extract/iterate/restore protocol over one archetype.
// The extracted columns are handed to row in required-type order.
func forEachMatch(arch *archetype, required []reflect.Type, visit func(cols []*componentColumn, row int, e Entity)) {
	cols := make([]*componentColumn, len(required))
	for i, t := range required {
		cols[i] = arch.columns[t]
		delete(arch.columns, t)
	}
	defer func() {
		for i, t := range required {
			arch.columns[t] = cols[i]
		}
	}()

	count := len(arch.entities)
	for row := 0; row < count; row++ {
		visit(cols, row, arch.entities[row])
	}
}

func (w *World) runQuery(required []reflect.Type, visit func(cols []*componentColumn, row int, e Entity)) {
	for _, arch := range w.matchingArchetypes(required) {
		forEachMatch(arch, required, visit)
	}
}

// ── Typed query surface ──────────────────────────────────────────────────

// Query1 calls f once for every entity carrying component type A.
func Query1[A any](w *World, f func(e Entity, a *A)) {
	required := []reflect.Type{typeOf[A]()}
	w.runQuery(required, func(cols []*componentColumn, row int, e Entity) {
		f(e, columnGet[A](cols[0], row))
	})
}

// Query2 calls f once for every entity carrying both A and B.
func Query2[A, B any](w *World, f func(e Entity, a *A, b *B)) {
	required := []reflect.Type{typeOf[A](), typeOf[B]()}
	w.runQuery(required, func(cols []*componentColumn, row int, e Entity) {
		f(e, columnGet[A](cols[0], row), columnGet[B](cols[1], row))
	})
}

// Query3 calls f once for every entity carrying A, B, and C.
func Query3[A, B, C any](w *World, f func(e Entity, a *A, b *B, c *C)) {
	required := []reflect.Type{typeOf[A](), typeOf[B](), typeOf[C]()}
	w.runQuery(required, func(cols []*componentColumn, row int, e Entity) {
		f(e, columnGet[A](cols[0], row), columnGet[B](cols[1], row), columnGet[C](cols[2], row))
	})
}

// Query4 calls f once for every entity carrying A, B, C, and D.
func Query4[A, B, C, D any](w *World, f func(e Entity, a *A, b *B, c *C, d *D)) {
	required := []reflect.Type{typeOf[A](), typeOf[B](), typeOf[C](), typeOf[D]()}
	w.runQuery(required, func(cols []*componentColumn, row int, e Entity) {
		f(e, columnGet[A](cols[0], row), columnGet[B](cols[1], row), columnGet[C](cols[2], row), columnGet[D](cols[3], row))
	})
}

// QueryFiltered1 behaves like Query1 but only visits entities that also carry
// the marker type F. The marker is a presence check and is not yielded.
func QueryFiltered1[A, F any](w *World, f func(e Entity, a *A)) {
	required := []reflect.Type{typeOf[A]()}
	withMarker := append(append([]reflect.Type{}, required...), typeOf[F]())
	for _, arch := range w.matchingArchetypes(withMarker) {
		forEachMatch(arch, required, func(cols []*componentColumn, row int, e Entity) {
			f(e, columnGet[A](cols[0], row))
		})
	}
}

// QueryFiltered2 behaves like Query2 with an additional marker type F.
func QueryFiltered2[A, B, F any](w *World, f func(e Entity, a *A, b *B)) {
	required := []reflect.Type{typeOf[A](), typeOf[B]()}
	withMarker := append(append([]reflect.Type{}, required...), typeOf[F]())
	for _, arch := range w.matchingArchetypes(withMarker) {
		forEachMatch(arch, required, func(cols []*componentColumn, row int, e Entity) {
			f(e, columnGet[A](cols[0], row), columnGet[B](cols[1], row))
		})
	}
}

// querySingleTarget finds the one entity matching the required set, panicking
// when the singleton invariant is violated.
func (w *World) querySingleTarget(required []reflect.Type, marker reflect.Type) (*archetype, int, bool) {
	var (
		foundArch *archetype
		foundRow  int
		found     bool
	)
	for _, arch := range w.matchingArchetypes(required) {
		for row := range arch.entities {
			if found {
				panic(fmt.Sprintf("dreki: query single: multiple entities match marker %s", marker))
			}
			foundArch, foundRow, found = arch, row, true
		}
	}
	return foundArch, foundRow, found
}

// QuerySingle1 calls f with the single entity carrying A and the marker F.
// f is not called when nothing matches; two or more matches panic, since the
// singleton invariant is already broken.
func QuerySingle1[A, F any](w *World, f func(e Entity, a *A)) {
	marker := typeOf[F]()
	required := []reflect.Type{typeOf[A](), marker}
	arch, row, ok := w.querySingleTarget(required, marker)
	if !ok {
		return
	}
	extract := []reflect.Type{typeOf[A]()}
	forEachSingle(arch, extract, row, func(cols []*componentColumn) {
		f(arch.entities[row], columnGet[A](cols[0], row))
	})
}

// QuerySingle2 is QuerySingle1 for entities carrying A, B, and the marker F.
func QuerySingle2[A, B, F any](w *World, f func(e Entity, a *A, b *B)) {
	marker := typeOf[F]()
	required := []reflect.Type{typeOf[A](), typeOf[B](), marker}
	arch, row, ok := w.querySingleTarget(required, marker)
	if !ok {
		return
	}
	extract := []reflect.Type{typeOf[A](), typeOf[B]()}
	forEachSingle(arch, extract, row, func(cols []*componentColumn) {
		f(arch.entities[row], columnGet[A](cols[0], row), columnGet[B](cols[1], row))
	})
}

// forEachSingle extracts columns for exactly one row visit, with the same
// restore guarantee as a full pass.
func forEachSingle(arch *archetype, required []reflect.Type, row int, visit func(cols []*componentColumn)) {
	cols := make([]*componentColumn, len(required))
	for i, t := range required {
		cols[i] = arch.columns[t]
		delete(arch.columns, t)
	}
	defer func() {
		for i, t := range required {
			arch.columns[t] = cols[i]
		}
	}()
	visit(cols)
}
