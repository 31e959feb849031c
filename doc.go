/*
Package dreki provides an archetype-based Entity-Component-System (ECS) storage
engine for games and simulations.

Entities with identical component sets are stored together in archetypes —
columnar tables where row i of every column belongs to the same entity. Adding
or removing a component migrates the entity between archetypes; removal uses
swap-remove so storage stays dense.

Core Concepts:

  - Entity: a generational (index, generation) handle. Stale handles are
    detected and rejected after the slot is recycled.
  - Component: a plain Go value attached to an entity, one per (entity, type).
  - Archetype: a columnar table holding every entity with the same exact
    component set.
  - Resource: a singleton value owned by the World, keyed by type.
  - Query: closure-based iteration over every archetype whose component set is
    a superset of the requested types.

Basic Usage:

	world := dreki.NewWorld()

	// Spawn entities with component bundles
	e := world.Spawn(Position{X: 0, Y: 0}, Velocity{X: 1, Y: 2})

	// Query entities and process them
	dreki.Query2(world, func(e dreki.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

	// Dynamic schema changes migrate entities between archetypes
	dreki.Insert(world, e, Health{Current: 100, Max: 100})
	dreki.Remove[Velocity](world, e)

Structural mutation (spawn, despawn, insert, remove) performed inside a query
closure is not observed within the same pass; collect the affected entities
and apply changes afterwards, or record them on a Commands buffer and flush it
once the pass completes.

The engine is single-threaded: exactly one caller holds the World at a time,
and systems run sequentially in the order they were added to a Schedule.
*/
package dreki
