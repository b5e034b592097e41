package physics

import "errors"

// ErrStaleHandle is returned when a body or constraint handle is added twice,
// or removed while it is not part of the simulation.
var ErrStaleHandle = errors.New("physics: stale handle")

// ErrSimulationUnavailable is returned by every operation of an engine
// that was created without a simulation.
var ErrSimulationUnavailable = errors.New("physics: simulation unavailable")

var ErrInvalidConfig = errors.New("physics: invalid config")

var ErrNoBody = errors.New("physics: entity has no body")

var ErrBodyExists = errors.New("physics: entity already has a body")
