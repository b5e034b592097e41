package physics

import (
	"fmt"
	"log/slog"

	"github.com/kamstrup/intmap"
	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
)

type bodyRecord struct {
	owner   scene.EntityId
	inWorld bool
}

// Registry bridges bodies and constraints into the simulation. It owns the
// mapping from body handles to their owning entities and rejects handles
// that are added twice or removed while absent.
type Registry struct {
	sim Simulation

	bodies      *intmap.Map[BodyHandle, *bodyRecord]
	constraints *intmap.Map[ConstraintHandle, bool]
}

func newRegistry(sim Simulation) *Registry {
	return &Registry{
		sim:         sim,
		bodies:      intmap.New[BodyHandle, *bodyRecord](64),
		constraints: intmap.New[ConstraintHandle, bool](16),
	}
}

// bind records the owning entity of a freshly created body.
func (r *Registry) bind(body BodyHandle, owner scene.EntityId) {
	r.bodies.Put(body, &bodyRecord{owner: owner})
}

func (r *Registry) unbind(body BodyHandle) {
	r.bodies.Del(body)
}

// ResolveOwningEntity returns the entity that owns the body.
func (r *Registry) ResolveOwningEntity(body BodyHandle) (scene.EntityId, bool) {
	record, ok := r.bodies.Get(body)
	if !ok {
		return scene.NoEntityId, false
	}

	return record.owner, true
}

// Contains reports whether the body is currently part of the simulation.
func (r *Registry) Contains(body BodyHandle) bool {
	record, ok := r.bodies.Get(body)
	return ok && record.inWorld
}

func (r *Registry) AddBody(body BodyHandle) error {
	if r.sim == nil {
		return ErrSimulationUnavailable
	}

	record, ok := r.bodies.Get(body)
	if !ok || record.inWorld {
		return staleHandle("add body", uint64(body))
	}

	record.inWorld = true
	r.sim.AddBody(body)
	return nil
}

func (r *Registry) RemoveBody(body BodyHandle) error {
	if r.sim == nil {
		return ErrSimulationUnavailable
	}

	record, ok := r.bodies.Get(body)
	if !ok || !record.inWorld {
		return staleHandle("remove body", uint64(body))
	}

	record.inWorld = false
	r.sim.RemoveBody(body)
	return nil
}

func (r *Registry) AddConstraint(constraint ConstraintHandle) error {
	if r.sim == nil {
		return ErrSimulationUnavailable
	}

	inWorld, ok := r.constraints.Get(constraint)
	if !ok || inWorld {
		return staleHandle("add constraint", uint64(constraint))
	}

	r.constraints.Put(constraint, true)
	r.sim.AddConstraint(constraint)
	return nil
}

func (r *Registry) RemoveConstraint(constraint ConstraintHandle) error {
	if r.sim == nil {
		return ErrSimulationUnavailable
	}

	inWorld, ok := r.constraints.Get(constraint)
	if !ok || !inWorld {
		return staleHandle("remove constraint", uint64(constraint))
	}

	r.constraints.Put(constraint, false)
	r.sim.RemoveConstraint(constraint)
	return nil
}

func (r *Registry) SetGravity(x, y, z float64) error {
	if r.sim == nil {
		return ErrSimulationUnavailable
	}

	r.sim.SetGravity(gm.Vec3{X: x, Y: y, Z: z})
	return nil
}

type RaycastResult struct {
	Entity scene.EntityId
	Point  gm.Vec3
	Normal gm.Vec3
}

// RaycastFirst returns the closest hit along the ray from start to end.
// Bodies without an owning entity are never reported.
func (r *Registry) RaycastFirst(start, end gm.Vec3) (RaycastResult, bool) {
	if r.sim == nil {
		return RaycastResult{}, false
	}

	hit, ok := r.sim.RaycastFirst(start, end)
	if !ok {
		return RaycastResult{}, false
	}

	entityId, ok := r.ResolveOwningEntity(hit.Body)
	if !ok {
		return RaycastResult{}, false
	}

	return RaycastResult{Entity: entityId, Point: hit.Point, Normal: hit.Normal}, true
}

// RaycastFirstFunc calls fn with the closest hit, if there is one.
func (r *Registry) RaycastFirstFunc(start, end gm.Vec3, fn func(RaycastResult)) {
	if result, ok := r.RaycastFirst(start, end); ok {
		fn(result)
	}
}

func (r *Registry) trackConstraint(constraint ConstraintHandle) {
	r.constraints.Put(constraint, false)
}

func (r *Registry) forgetConstraint(constraint ConstraintHandle) {
	r.constraints.Del(constraint)
}

func staleHandle(op string, handle uint64) error {
	slog.Warn("Ignoring stale physics handle",
		slog.String("op", op),
		slog.Uint64("handle", handle),
	)

	return fmt.Errorf("physics: %s %d: %w", op, handle, ErrStaleHandle)
}
