package dreki

import "github.com/rs/zerolog"

// Option configures a World at construction time.
type Option func(*World)

// WithLogger attaches a zerolog logger to the World. The engine is silent by
// default; with a logger attached it emits debug events for archetype
// creation and bulk despawns.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) {
		w.log = logger
	}
}

// WithEntityCapacity pre-sizes the allocator and location index for worlds
// whose approximate entity count is known up front.
func WithEntityCapacity(n int) Option {
	return func(w *World) {
		w.alloc.generations = make([]uint32, 0, n)
		w.locations = make(map[uint32]entityLocation, n)
	}
}
