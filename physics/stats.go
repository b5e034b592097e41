package physics

import (
	"time"
)

type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Count += 1

	return t
}

type Phase uint8

const (
	PhaseStep Phase = iota
	PhaseSync
	PhaseManifolds
	PhaseSweep
	phaseCount
)

var phaseNames = [phaseCount]string{"step", "sync", "manifolds", "sweep"}

func (p Phase) String() string {
	return phaseNames[p]
}

// StepStats collects counters of the engine across all frames.
type StepStats struct {
	Frames   uint64
	SubSteps int

	Manifolds        int
	SkippedManifolds int

	// Events counts the emitted events by category.
	Events map[EventFlags]int

	Phases [phaseCount]Timings
}

func (s *StepStats) measure(phase Phase) func() {
	startTime := time.Now()

	return func() {
		s.Phases[phase] = s.Phases[phase].Add(time.Since(startTime))
	}
}

func (s *StepStats) countEvent(flag EventFlags) {
	if s.Events == nil {
		s.Events = map[EventFlags]int{}
	}

	s.Events[flag] += 1
}

// TotalEvents returns the number of events emitted over all categories.
func (s *StepStats) TotalEvents() int {
	var total int
	for _, count := range s.Events {
		total += count
	}

	return total
}
