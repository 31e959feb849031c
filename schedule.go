package dreki

import (
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// A System is any function operating on the World: query entities, mutate
// components, read resources. Scheduling stays deliberately simple — systems
// run sequentially in the order they were added, one frame at a time, never
// concurrently.
type System func(*World)

// SystemTiming records how long one system ran during the most recent frame.
type SystemTiming struct {
	Name     string
	Duration time.Duration
}

type namedSystem struct {
	name   string
	system System
}

// Schedule is an ordered list of systems executed once per Run call.
type Schedule struct {
	systems []namedSystem
	timings []SystemTiming
	log     zerolog.Logger
}

// NewSchedule creates an empty schedule. The logger, if provided via
// WithScheduleLogger, receives per-system timings at trace level.
func NewSchedule() *Schedule {
	return &Schedule{log: zerolog.Nop()}
}

// WithScheduleLogger attaches a logger for per-system trace timings.
func (s *Schedule) WithScheduleLogger(logger zerolog.Logger) *Schedule {
	s.log = logger
	return s
}

// AddSystem appends a system to the schedule. A short diagnostic name is
// derived from the function; anonymous closures show up as "<closure>".
func (s *Schedule) AddSystem(system System) {
	s.systems = append(s.systems, namedSystem{
		name:   shortSystemName(system),
		system: system,
	})
}

// Run executes every system in order on the given world, recording per-system
// timings.
func (s *Schedule) Run(w *World) {
	s.timings = s.timings[:0]
	for _, ns := range s.systems {
		start := time.Now()
		ns.system(w)
		elapsed := time.Since(start)
		s.timings = append(s.timings, SystemTiming{Name: ns.name, Duration: elapsed})
		s.log.Trace().Str("system", ns.name).Dur("took", elapsed).Msg("system ran")
	}
}

// Timings returns the per-system durations from the most recent Run.
func (s *Schedule) Timings() []SystemTiming {
	return s.timings
}

// Len returns the number of systems in the schedule.
func (s *Schedule) Len() int {
	return len(s.systems)
}

// shortSystemName strips the package path from a system function's name,
// keeping only the last meaningful segment.
func shortSystemName(system System) string {
	pc := reflect.ValueOf(system).Pointer()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "<unknown>"
	}
	full := fn.Name()
	name := full[strings.LastIndex(full, ".")+1:]
	if strings.HasPrefix(name, "func") {
		// Anonymous functions are named funcN by the runtime.
		return "<closure>"
	}
	return name
}
