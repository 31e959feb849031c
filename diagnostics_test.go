package dreki

import (
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
)

func TestSnapshotCounts(t *testing.T) {
	world := NewWorld()
	for i := 0; i < 3; i++ {
		world.Spawn(Position{}, Velocity{})
	}
	world.Spawn(Position{})

	snap := world.Snapshot(nil, nil)

	if snap.EntityCount != 4 {
		t.Errorf("EntityCount = %d, want 4", snap.EntityCount)
	}
	if snap.ArchetypeCount != 2 {
		t.Errorf("ArchetypeCount = %d, want 2", snap.ArchetypeCount)
	}
	if len(snap.Archetypes) != 2 {
		t.Fatalf("reported %d archetypes, want 2", len(snap.Archetypes))
	}
	// Ordered by entity count descending.
	if snap.Archetypes[0].EntityCount != 3 || snap.Archetypes[1].EntityCount != 1 {
		t.Errorf("archetype counts = [%d %d], want [3 1]",
			snap.Archetypes[0].EntityCount, snap.Archetypes[1].EntityCount)
	}
	// No expanded indices: no per-entity dumps.
	for i, arch := range snap.Archetypes {
		if arch.Entities != nil {
			t.Errorf("archetype %d has entity dump without expansion", i)
		}
	}
}

func TestSnapshotSkipsEmptyArchetypes(t *testing.T) {
	world := NewWorld()
	e := world.Spawn(Position{})
	Insert(world, e, Velocity{}) // leaves the {Position} archetype empty

	snap := world.Snapshot(nil, nil)
	if snap.ArchetypeCount != 2 {
		t.Errorf("ArchetypeCount = %d, want 2", snap.ArchetypeCount)
	}
	if len(snap.Archetypes) != 1 {
		t.Errorf("reported %d populated archetypes, want 1", len(snap.Archetypes))
	}
}

func TestSnapshotExpanded(t *testing.T) {
	world := NewWorld()
	e := world.Spawn(Position{X: 1.5, Y: 2.5})

	registry := NewComponentRegistry()
	RegisterFormat[Position](registry)

	snap := world.Snapshot([]int{0}, registry)
	if len(snap.Archetypes) != 1 {
		t.Fatalf("reported %d archetypes, want 1", len(snap.Archetypes))
	}
	entities := snap.Archetypes[0].Entities
	if len(entities) != 1 {
		t.Fatalf("expanded archetype holds %d entities, want 1", len(entities))
	}
	if entities[0].ID != e.Index || entities[0].Generation != e.Generation {
		t.Errorf("entity snapshot = %d v%d, want %v", entities[0].ID, entities[0].Generation, e)
	}
	if len(entities[0].Components) != 1 {
		t.Fatalf("entity has %d components, want 1", len(entities[0].Components))
	}
	comp := entities[0].Components[0]
	if comp.Name != "Position" {
		t.Errorf("component name = %q, want %q", comp.Name, "Position")
	}
	if comp.Value != "{X:1.5 Y:2.5}" {
		t.Errorf("component value = %q, want %q", comp.Value, "{X:1.5 Y:2.5}")
	}
}

func TestSnapshotUnregisteredTypeOpaque(t *testing.T) {
	world := NewWorld()
	world.Spawn(Position{X: 1})

	registry := NewComponentRegistry() // Position not registered
	snap := world.Snapshot([]int{0}, registry)

	comp := snap.Archetypes[0].Entities[0].Components[0]
	if comp.Value != "<opaque>" {
		t.Errorf("unregistered component value = %q, want %q", comp.Value, "<opaque>")
	}
}

func TestSnapshotCustomFormatter(t *testing.T) {
	world := NewWorld()
	world.Spawn(Health{Current: 3, Max: 10})

	registry := NewComponentRegistry()
	RegisterFormatFunc(registry, func(h *Health) string {
		return "hp 3/10"
	})

	snap := world.Snapshot([]int{0}, registry)
	comp := snap.Archetypes[0].Entities[0].Components[0]
	if comp.Value != "hp 3/10" {
		t.Errorf("custom-formatted value = %q, want %q", comp.Value, "hp 3/10")
	}
}

func TestSnapshotOutOfRangeExpandedIgnored(t *testing.T) {
	world := NewWorld()
	world.Spawn(Position{})

	snap := world.Snapshot([]int{5, -1}, NewComponentRegistry())
	if len(snap.Archetypes) != 1 {
		t.Fatalf("reported %d archetypes, want 1", len(snap.Archetypes))
	}
	if snap.Archetypes[0].Entities != nil {
		t.Error("out-of-range expanded index produced an entity dump")
	}
}

func TestSnapshotHierarchyInfo(t *testing.T) {
	world := NewWorld()
	parent := world.Spawn(TransformFromXY(0, 0))
	world.SpawnChild(parent, TransformFromXY(1, 0))

	// Expand everything; find the parent and child dumps.
	snap := world.Snapshot([]int{0, 1, 2, 3}, NewComponentRegistry())

	var parentSnap, childSnap *EntitySnapshot
	for a := range snap.Archetypes {
		for i := range snap.Archetypes[a].Entities {
			es := &snap.Archetypes[a].Entities[i]
			if es.ID == parent.Index {
				parentSnap = es
			} else if es.ParentID != nil {
				childSnap = es
			}
		}
	}
	if parentSnap == nil || childSnap == nil {
		t.Fatal("snapshot missing parent or child dump")
	}
	if parentSnap.ChildCount != 1 {
		t.Errorf("parent ChildCount = %d, want 1", parentSnap.ChildCount)
	}
	if *childSnap.ParentID != parent.Index {
		t.Errorf("child ParentID = %d, want %d", *childSnap.ParentID, parent.Index)
	}
}

func TestSnapshotJSON(t *testing.T) {
	world := NewWorld()
	world.Spawn(Position{X: 1})

	data, err := world.Snapshot(nil, nil).JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if !strings.Contains(string(data), `"entity_count":1`) {
		t.Errorf("JSON missing entity count: %s", data)
	}

	var decoded WorldSnapshot
	if err := gojson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round-trip unmarshal error: %v", err)
	}
	if decoded.EntityCount != 1 {
		t.Errorf("round-tripped EntityCount = %d, want 1", decoded.EntityCount)
	}
}

func TestPoolStats(t *testing.T) {
	world := NewWorld()
	a := world.Spawn(Position{})
	world.Spawn(Position{})
	world.Despawn(a)

	stats := world.PoolStats()
	if stats.AliveCount != 1 {
		t.Errorf("AliveCount = %d, want 1", stats.AliveCount)
	}
	if stats.TotalSlots != 2 {
		t.Errorf("TotalSlots = %d, want 2", stats.TotalSlots)
	}
	if stats.FreeCount != 1 {
		t.Errorf("FreeCount = %d, want 1", stats.FreeCount)
	}
	if stats.SpawnedThisTick != 2 {
		t.Errorf("SpawnedThisTick = %d, want 2", stats.SpawnedThisTick)
	}
	if stats.DespawnedThisTick != 1 {
		t.Errorf("DespawnedThisTick = %d, want 1", stats.DespawnedThisTick)
	}

	// Per-frame counters reset on read; occupancy does not.
	next := world.PoolStats()
	if next.SpawnedThisTick != 0 || next.DespawnedThisTick != 0 {
		t.Errorf("counters after reset = (%d, %d), want (0, 0)",
			next.SpawnedThisTick, next.DespawnedThisTick)
	}
	if next.AliveCount != 1 {
		t.Errorf("AliveCount after reset = %d, want 1", next.AliveCount)
	}
}
