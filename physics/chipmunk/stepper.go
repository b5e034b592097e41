package chipmunk

// stepper splits the time of a frame into fixed steps.
//
// Time that did not add up to a full step is carried over into the next
// frame. If a frame needs more than the allowed number of steps, the excess
// time is dropped so the simulation can catch up after a stall.
type stepper struct {
	overstep float64
}

// advance adds dt and returns the number of fixed steps to run.
func (s *stepper) advance(dt float64, maxSteps int, stepInterval float64) int {
	s.overstep += dt

	steps := int(s.overstep / stepInterval)
	s.overstep -= float64(steps) * stepInterval

	return min(steps, maxSteps)
}
