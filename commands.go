package dreki

import "reflect"

// Commands is a deferred command buffer: structural mutations recorded during
// a query pass and applied afterwards with Flush. The query engine fixes row
// indices at extraction time, so spawn/despawn/insert/remove must not touch
// the archetypes mid-pass; queueing them here is the supported alternative to
// hand-rolled collect-then-apply.

type commandKind int

const (
	cmdInsert commandKind = iota
	cmdRemove
	cmdSkip // canceled by a later despawn of the same entity
)

type componentCommand struct {
	kind   commandKind
	entity Entity
	typ    reflect.Type
	box    any
}

type commandTarget struct {
	entity Entity
	typ    reflect.Type
}

// Commands records structural operations for later application. The zero
// value is not usable; create one with NewCommands.
type Commands struct {
	spawns         [][]any
	componentOps   []componentCommand
	despawns       []Entity
	pendingDespawn map[Entity]struct{}
	// pendingOps maps (entity, type) to the index of the op that currently
	// stands for that pair, so a later insert/remove replaces it in place.
	pendingOps map[commandTarget]int
}

func NewCommands() *Commands {
	return &Commands{
		pendingDespawn: make(map[Entity]struct{}),
		pendingOps:     make(map[commandTarget]int),
	}
}

// Spawn queues a bundle of components to spawn at Flush time. The entity
// handle does not exist until the buffer is flushed.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Despawn queues an entity for despawn, cancelling any component ops already
// queued against it.
func (c *Commands) Despawn(e Entity) {
	if _, queued := c.pendingDespawn[e]; queued {
		return
	}
	c.pendingDespawn[e] = struct{}{}
	c.despawns = append(c.despawns, e)
	for target, idx := range c.pendingOps {
		if target.entity == e {
			c.componentOps[idx].kind = cmdSkip
			delete(c.pendingOps, target)
		}
	}
}

// QueueInsert queues attaching a component to an entity. A later queued op on
// the same (entity, type) pair replaces this one.
func QueueInsert[T any](c *Commands, e Entity, component T) {
	c.queueComponentOp(cmdInsert, e, typeOf[T](), &component)
}

// QueueRemove queues detaching component type T from an entity.
func QueueRemove[T any](c *Commands, e Entity) {
	c.queueComponentOp(cmdRemove, e, typeOf[T](), nil)
}

func (c *Commands) queueComponentOp(kind commandKind, e Entity, t reflect.Type, box any) {
	if _, doomed := c.pendingDespawn[e]; doomed {
		return
	}
	target := commandTarget{entity: e, typ: t}
	if idx, exists := c.pendingOps[target]; exists {
		c.componentOps[idx] = componentCommand{kind: kind, entity: e, typ: t, box: box}
		return
	}
	c.pendingOps[target] = len(c.componentOps)
	c.componentOps = append(c.componentOps, componentCommand{kind: kind, entity: e, typ: t, box: box})
}

// Flush applies the buffered operations: spawns first, then component ops,
// then despawns. Component ops against entities that died since queueing are
// dropped silently. The buffer is empty afterwards and can be reused.
func (c *Commands) Flush(w *World) {
	for _, bundle := range c.spawns {
		w.Spawn(bundle...)
	}

	for _, op := range c.componentOps {
		if op.kind == cmdSkip || !w.IsAlive(op.entity) {
			continue
		}
		switch op.kind {
		case cmdInsert:
			w.insertBoxed(op.entity, op.typ, op.box, true)
		case cmdRemove:
			w.removeType(op.entity, op.typ)
		}
	}

	for _, e := range c.despawns {
		w.Despawn(e)
	}

	c.spawns = c.spawns[:0]
	c.componentOps = c.componentOps[:0]
	c.despawns = c.despawns[:0]
	clear(c.pendingDespawn)
	clear(c.pendingOps)
}
