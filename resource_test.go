package dreki

import "testing"

type gameTime struct {
	Elapsed float64
	Delta   float64
}

type score struct {
	Value int
}

func TestResourceInsertAndGet(t *testing.T) {
	world := NewWorld()
	InsertResource(world, gameTime{Elapsed: 1.5, Delta: 0.016})

	gt := Resource[gameTime](world)
	if gt.Elapsed != 1.5 || gt.Delta != 0.016 {
		t.Errorf("resource = %+v, want {1.5 0.016}", *gt)
	}
}

func TestResourceMutation(t *testing.T) {
	world := NewWorld()
	InsertResource(world, score{Value: 10})

	Resource[score](world).Value += 5

	if got := Resource[score](world).Value; got != 15 {
		t.Errorf("score after mutation = %d, want 15", got)
	}
}

func TestResourceMissingPanics(t *testing.T) {
	world := NewWorld()
	mustPanic(t, "not found", func() {
		Resource[gameTime](world)
	})
}

func TestGetResource(t *testing.T) {
	world := NewWorld()

	if _, ok := GetResource[score](world); ok {
		t.Error("GetResource reported a resource that was never inserted")
	}

	InsertResource(world, score{Value: 3})
	s, ok := GetResource[score](world)
	if !ok || s.Value != 3 {
		t.Errorf("GetResource = %+v (ok=%v), want {3}", s, ok)
	}
}

func TestResourceReplace(t *testing.T) {
	world := NewWorld()
	InsertResource(world, score{Value: 1})
	InsertResource(world, score{Value: 2})

	if got := Resource[score](world).Value; got != 2 {
		t.Errorf("score after replace = %d, want 2", got)
	}
}

func TestResourceRemove(t *testing.T) {
	world := NewWorld()
	InsertResource(world, gameTime{Elapsed: 9})

	removed, ok := ResourceRemove[gameTime](world)
	if !ok || removed.Elapsed != 9 {
		t.Errorf("removed = %+v (ok=%v), want {9 0}", removed, ok)
	}
	if HasResource[gameTime](world) {
		t.Error("resource still present after remove")
	}

	if _, ok := ResourceRemove[gameTime](world); ok {
		t.Error("second remove reported ok")
	}

	// Reinsertion after removal starts fresh.
	InsertResource(world, gameTime{Elapsed: 1})
	if got := Resource[gameTime](world).Elapsed; got != 1 {
		t.Errorf("reinserted elapsed = %v, want 1", got)
	}
}

func TestHasResource(t *testing.T) {
	world := NewWorld()
	if HasResource[score](world) {
		t.Error("HasResource true on empty world")
	}
	InsertResource(world, score{})
	if !HasResource[score](world) {
		t.Error("HasResource false after insert")
	}
}
