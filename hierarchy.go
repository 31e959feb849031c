package dreki

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Parent/Children form a forest over entities: a node is a root (no Parent)
// or a child whose Parent points at a live entity and which appears exactly
// once in that parent's Children list. The public constructors below are the
// only way these components are meant to be attached; wiring a cycle by hand
// would make the traversals below loop forever. Cycle-freedom is a
// precondition, not something the engine checks.

// Parent marks an entity as a child of another entity.
type Parent struct {
	Entity Entity
}

// Children stores the child entities of a parent.
type Children struct {
	Entities []Entity
}

// GlobalTransform is the world-space transform computed by
// PropagateTransforms. For roots it equals the local Transform's matrix; for
// children it is parentGlobal * childLocal. It is a derived cache, recomputed
// on every propagation pass.
type GlobalTransform struct {
	Matrix mgl32.Mat4
}

// SpawnChild spawns an entity as a child of parent: the bundle is spawned,
// Parent and a default GlobalTransform are attached, and the child is
// appended to the parent's Children list (created on first child).
//
// Panics if the parent is not alive.
func (w *World) SpawnChild(parent Entity, components ...any) Entity {
	if !w.alloc.isAlive(parent) {
		panic(fmt.Sprintf("dreki: cannot spawn child on dead parent %v", parent))
	}

	child := w.Spawn(components...)
	Insert(w, child, Parent{Entity: parent})
	Insert(w, child, GlobalTransform{Matrix: mgl32.Ident4()})

	if children, ok := Get[Children](w, parent); ok {
		children.Entities = append(children.Entities, child)
	} else {
		Insert(w, parent, Children{Entities: []Entity{child}})
	}
	return child
}

// DespawnRecursive despawns an entity and all its transitive descendants, and
// detaches the entity from its former parent's Children list. Descendants are
// collected breadth-first before any despawn happens, so the hierarchy stays
// readable while it is walked. Returns false if the entity is already dead.
func (w *World) DespawnRecursive(e Entity) bool {
	if !w.alloc.isAlive(e) {
		return false
	}

	if parent, ok := Get[Parent](w, e); ok {
		if children, ok := Get[Children](w, parent.Entity); ok {
			kept := children.Entities[:0]
			for _, c := range children.Entities {
				if c != e {
					kept = append(kept, c)
				}
			}
			children.Entities = kept
		}
	}

	// Worklist BFS; hierarchy depth is caller-controlled, so never recurse.
	toDespawn := []Entity{e}
	for i := 0; i < len(toDespawn); i++ {
		if children, ok := Get[Children](w, toDespawn[i]); ok {
			toDespawn = append(toDespawn, children.Entities...)
		}
	}

	for _, d := range toDespawn {
		w.Despawn(d)
	}
	return true
}

// PropagateTransforms recomputes every GlobalTransform from the hierarchy,
// once per invocation. Roots (entities with a Transform and no Parent) get
// their local matrix; each child gets parentGlobal * childLocal, walking
// Children edges breadth-first so parents are always computed before their
// children. A node without a local Transform contributes identity but still
// forwards its inherited global to descendants.
func PropagateTransforms(w *World) {
	type pending struct {
		entity Entity
		matrix mgl32.Mat4
	}

	// Collect local matrices first; inserting GlobalTransform migrates
	// entities between archetypes and must not happen mid-query.
	var withTransform []pending
	Query1(w, func(e Entity, t *Transform) {
		withTransform = append(withTransform, pending{entity: e, matrix: t.Matrix()})
	})

	var queue []pending
	for _, p := range withTransform {
		if _, isChild := Get[Parent](w, p.entity); isChild {
			continue
		}
		Insert(w, p.entity, GlobalTransform{Matrix: p.matrix})
		if children, ok := Get[Children](w, p.entity); ok {
			for _, child := range children.Entities {
				queue = append(queue, pending{entity: child, matrix: p.matrix})
			}
		}
	}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		local := mgl32.Ident4()
		if t, ok := Get[Transform](w, head.entity); ok {
			local = t.Matrix()
		}
		global := head.matrix.Mul4(local)
		Insert(w, head.entity, GlobalTransform{Matrix: global})

		if children, ok := Get[Children](w, head.entity); ok {
			for _, child := range children.Entities {
				queue = append(queue, pending{entity: child, matrix: global})
			}
		}
	}
}
