package dreki

import "fmt"

// Entity is a lightweight handle to an entity in a World.
//
// An Entity is only valid for the World that created it, and only while its
// generation matches the allocator's current generation for its slot. A handle
// whose slot has since been recycled is stale and is rejected by every lookup.
type Entity struct {
	// Index is the slot index in the allocator. Recycled on despawn.
	Index uint32
	// Generation is bumped each time the slot is reused, so stale handles
	// can be detected.
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

// entityAllocator issues and recycles generational entity identifiers.
//
// Layout:
//
//	generations: [0, 1, 0, 2, 0]  one generation per slot ever allocated
//	freeList:    [1, 3]           slots available for reuse
//	len:         5                next fresh index when freeList is empty
//
// Allocation pops the free list if possible, otherwise grows. Deallocation
// bumps the slot generation and pushes the index onto the free list.
type entityAllocator struct {
	generations []uint32
	freeList    []uint32
	len         uint32
}

// allocate returns a new Entity, reusing a freed slot when available. The
// generation of a reused slot was already bumped at deallocation time.
func (a *entityAllocator) allocate() Entity {
	if n := len(a.freeList); n > 0 {
		index := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return Entity{Index: index, Generation: a.generations[index]}
	}
	index := a.len
	a.len++
	a.generations = append(a.generations, 0)
	return Entity{Index: index, Generation: 0}
}

// deallocate frees an entity's slot for reuse, bumping its generation so any
// surviving handles become stale. Returns false if the handle is already
// stale; the double free is a no-op, not an error.
func (a *entityAllocator) deallocate(e Entity) bool {
	idx := int(e.Index)
	if idx >= len(a.generations) || a.generations[idx] != e.Generation {
		return false
	}
	a.generations[idx]++
	a.freeList = append(a.freeList, e.Index)
	return true
}

// isAlive reports whether the handle's generation matches the slot's current
// generation.
func (a *entityAllocator) isAlive(e Entity) bool {
	idx := int(e.Index)
	return idx < len(a.generations) && a.generations[idx] == e.Generation
}

// aliveCount returns the number of currently alive entities.
func (a *entityAllocator) aliveCount() int {
	return int(a.len) - len(a.freeList)
}

// freeCount returns the number of recyclable slots.
func (a *entityAllocator) freeCount() int {
	return len(a.freeList)
}

// totalSlots returns the number of slots ever allocated.
func (a *entityAllocator) totalSlots() uint32 {
	return a.len
}
