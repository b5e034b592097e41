package physics

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/rigid/scene"
)

// RigidBody is the physics component of an entity.
type RigidBody struct {
	BodyDef

	Entity  scene.EntityId
	Enabled bool

	// Handle references the body in the simulation.
	Handle BodyHandle
}

// CreateRigidBody creates a body for the entity, placed at the entity's
// transform, and adds it to the simulation.
func (e *Engine) CreateRigidBody(entityId scene.EntityId, def BodyDef) (*RigidBody, error) {
	if e.sim == nil {
		return nil, ErrSimulationUnavailable
	}

	if e.bodies.Has(entityId) {
		return nil, fmt.Errorf("physics: create body for entity %s: %w", entityId, ErrBodyExists)
	}

	if transform, ok := e.host.Transform(entityId); ok {
		def.Transform = transform
	}

	handle, err := e.sim.CreateBody(def)
	if err != nil {
		return nil, fmt.Errorf("physics: create body for entity %s: %w", entityId, err)
	}

	body := &RigidBody{
		BodyDef: def,
		Entity:  entityId,
		Enabled: true,
		Handle:  handle,
	}

	e.bind(handle, entityId)
	e.bodies.Put(entityId, body)
	e.cache.insert(entityId, def.Kind)

	if err := e.AddBody(handle); err != nil {
		return nil, err
	}

	slog.Debug("Created rigid body",
		slog.Any("entity", entityId),
		slog.String("kind", def.Kind.String()),
		slog.Uint64("handle", uint64(handle)),
	)

	return body, nil
}

// RegisterTrigger creates a trigger volume for the entity. The volume
// follows the entity's transform.
func (e *Engine) RegisterTrigger(entityId scene.EntityId, shape Shape) (*RigidBody, error) {
	def := DefaultBodyDef(shape)
	def.Kind = KindTrigger
	return e.CreateRigidBody(entityId, def)
}

// UnregisterTrigger removes a trigger volume previously added with RegisterTrigger.
func (e *Engine) UnregisterTrigger(entityId scene.EntityId) error {
	return e.DestroyRigidBody(entityId)
}

// RigidBody returns the body of the entity.
func (e *Engine) RigidBody(entityId scene.EntityId) (*RigidBody, bool) {
	return e.bodies.Get(entityId)
}

// DestroyRigidBody removes the body of the entity from the simulation,
// together with all joints attached to it.
func (e *Engine) DestroyRigidBody(entityId scene.EntityId) error {
	if e.sim == nil {
		return ErrSimulationUnavailable
	}

	body, ok := e.bodies.Get(entityId)
	if !ok {
		return fmt.Errorf("physics: destroy body of entity %s: %w", entityId, ErrNoBody)
	}

	e.destroyJointsOf(entityId)

	if e.Contains(body.Handle) {
		if err := e.RemoveBody(body.Handle); err != nil {
			return err
		}
	}

	e.sim.DestroyBody(body.Handle)
	e.unbind(body.Handle)
	e.bodies.Del(entityId)
	e.cache.remove(entityId)

	slog.Debug("Destroyed rigid body", slog.Any("entity", entityId))

	return nil
}

// SetEnabled adds or removes the body of the entity from the simulation
// without destroying it.
func (e *Engine) SetEnabled(entityId scene.EntityId, enabled bool) error {
	if e.sim == nil {
		return ErrSimulationUnavailable
	}

	body, ok := e.bodies.Get(entityId)
	if !ok {
		return fmt.Errorf("physics: enable body of entity %s: %w", entityId, ErrNoBody)
	}

	if body.Enabled == enabled {
		return nil
	}

	body.Enabled = enabled

	if enabled {
		if transform, ok := e.host.Transform(entityId); ok {
			e.sim.SetBodyTransform(body.Handle, transform)
		}

		return e.AddBody(body.Handle)
	}

	return e.RemoveBody(body.Handle)
}

// SetBodyKind changes the kind of the entity's body. The event
// classification picks up the new kind with the next frame.
func (e *Engine) SetBodyKind(entityId scene.EntityId, kind BodyKind) error {
	if e.sim == nil {
		return ErrSimulationUnavailable
	}

	body, ok := e.bodies.Get(entityId)
	if !ok {
		return fmt.Errorf("physics: set kind of entity %s: %w", entityId, ErrNoBody)
	}

	if body.Kind == kind {
		return nil
	}

	body.Kind = kind
	e.sim.SetBodyKind(body.Handle, kind)

	return nil
}

// Forget releases every physics resource held by the entity.
// It is meant to be registered as a despawn hook.
func (e *Engine) Forget(entityId scene.EntityId) {
	if e.sim == nil {
		return
	}

	e.destroyJointsOf(entityId)

	if e.bodies.Has(entityId) {
		if err := e.DestroyRigidBody(entityId); err != nil {
			slog.Warn("Failed to destroy rigid body",
				slog.Any("entity", entityId),
				slog.Any("err", err),
			)
		}
	}
}
