package dreki

import (
	"fmt"
	"reflect"
	"sort"

	gojson "github.com/goccy/go-json"
)

// The diagnostics hook exposes a bounded view of the world: counts for
// everything, full per-entity component dumps only for explicitly expanded
// archetypes, so snapshot cost scales with the selected subset rather than
// the whole world.

// ComponentSnapshot is one formatted component value on an entity.
type ComponentSnapshot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EntitySnapshot is the full dump of one entity inside an expanded archetype.
type EntitySnapshot struct {
	ID         uint32              `json:"id"`
	Generation uint32              `json:"generation"`
	Components []ComponentSnapshot `json:"components"`
	ParentID   *uint32             `json:"parent_id,omitempty"`
	ChildCount uint32              `json:"child_count"`
}

// ArchetypeSnapshot summarizes one non-empty archetype. Entities is nil
// unless the archetype's index was in the expanded set.
type ArchetypeSnapshot struct {
	EntityCount    int              `json:"entity_count"`
	ComponentNames []string         `json:"component_names"`
	Entities       []EntitySnapshot `json:"entities,omitempty"`
}

// WorldSnapshot is the result of World.Snapshot.
type WorldSnapshot struct {
	EntityCount    int                 `json:"entity_count"`
	ArchetypeCount int                 `json:"archetype_count"`
	Archetypes     []ArchetypeSnapshot `json:"archetypes"`
}

// JSON serializes the snapshot for external tooling.
func (s WorldSnapshot) JSON() ([]byte, error) {
	return gojson.Marshal(s)
}

// ComponentRegistry maps component types to formatter functions so snapshot
// dumps can render component values. Unregistered types render "<opaque>".
type ComponentRegistry struct {
	formatters map[reflect.Type]func(any) string
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{formatters: make(map[reflect.Type]func(any) string)}
}

// RegisterFormat registers the default "%+v" formatter for component type T.
func RegisterFormat[T any](r *ComponentRegistry) {
	RegisterFormatFunc(r, func(v *T) string {
		return fmt.Sprintf("%+v", *v)
	})
}

// RegisterFormatFunc registers a custom formatter for component type T.
func RegisterFormatFunc[T any](r *ComponentRegistry, format func(*T) string) {
	r.formatters[typeOf[T]()] = func(box any) string {
		p, ok := box.(*T)
		if !ok {
			return "<downcast failed>"
		}
		return format(p)
	}
}

func (r *ComponentRegistry) format(t reflect.Type, box any) string {
	if r == nil {
		return "<opaque>"
	}
	fn, ok := r.formatters[t]
	if !ok {
		return "<opaque>"
	}
	return fn(box)
}

// Snapshot collects a diagnostics view of the world. Archetypes are reported
// non-empty only, ordered by entity count descending (stable on ties), and
// per-entity component dumps are produced only for archetypes whose position
// in that ordering appears in expanded.
func (w *World) Snapshot(expanded []int, registry *ComponentRegistry) WorldSnapshot {
	snapshot := WorldSnapshot{
		EntityCount:    w.alloc.aliveCount(),
		ArchetypeCount: len(w.archetypes.list),
	}

	populated := make([]*archetype, 0, len(w.archetypes.list))
	for _, arch := range w.archetypes.list {
		if len(arch.entities) > 0 {
			populated = append(populated, arch)
		}
	}
	sort.SliceStable(populated, func(i, j int) bool {
		return len(populated[i].entities) > len(populated[j].entities)
	})

	expandedSet := make(map[int]struct{}, len(expanded))
	for _, idx := range expanded {
		expandedSet[idx] = struct{}{}
	}

	for idx, arch := range populated {
		names := make([]string, len(arch.types))
		for i, t := range arch.types {
			names[i] = shortTypeName(t)
		}
		info := ArchetypeSnapshot{
			EntityCount:    len(arch.entities),
			ComponentNames: names,
		}
		if _, ok := expandedSet[idx]; ok {
			info.Entities = w.snapshotEntities(arch, registry)
		}
		snapshot.Archetypes = append(snapshot.Archetypes, info)
	}
	return snapshot
}

func (w *World) snapshotEntities(arch *archetype, registry *ComponentRegistry) []EntitySnapshot {
	entities := make([]EntitySnapshot, 0, len(arch.entities))
	for row, e := range arch.entities {
		components := make([]ComponentSnapshot, 0, len(arch.types))
		for _, t := range arch.types {
			components = append(components, ComponentSnapshot{
				Name:  shortTypeName(t),
				Value: registry.format(t, arch.columns[t].getAny(row)),
			})
		}

		info := EntitySnapshot{
			ID:         e.Index,
			Generation: e.Generation,
			Components: components,
		}
		if parent, ok := Get[Parent](w, e); ok {
			id := parent.Entity.Index
			info.ParentID = &id
		}
		if children, ok := Get[Children](w, e); ok {
			info.ChildCount = uint32(len(children.Entities))
		}
		entities = append(entities, info)
	}
	return entities
}

// EntityPoolStats reports allocator occupancy plus per-frame spawn/despawn
// counters.
type EntityPoolStats struct {
	TotalSlots        uint32 `json:"total_slots"`
	FreeCount         int    `json:"free_count"`
	AliveCount        int    `json:"alive_count"`
	SpawnedThisTick   uint32 `json:"spawned_this_tick"`
	DespawnedThisTick uint32 `json:"despawned_this_tick"`
}

// PoolStats returns entity pool statistics and resets the per-frame counters.
func (w *World) PoolStats() EntityPoolStats {
	stats := EntityPoolStats{
		TotalSlots:        w.alloc.totalSlots(),
		FreeCount:         w.alloc.freeCount(),
		AliveCount:        w.alloc.aliveCount(),
		SpawnedThisTick:   w.spawnedThisFrame,
		DespawnedThisTick: w.despawnedThisFrame,
	}
	w.spawnedThisFrame = 0
	w.despawnedThisFrame = 0
	return stats
}
