package physics

import (
	"errors"
	"fmt"

	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
)

var ErrNoJoint = errors.New("physics: entity has no joint")

type JointDef struct {
	Kind ConstraintKind

	// Other is the entity to connect to. NoEntityId connects to the world.
	Other scene.EntityId

	// Pivot is the anchor in local space of the entity, PivotOther
	// the anchor in local space of the other entity.
	Pivot      gm.Vec3
	PivotOther gm.Vec3

	// Limits restricts the relative angle of a hinge.
	Limits *AngleLimits
}

// Joint connects the body of an entity to another body or the world.
type Joint struct {
	JointDef

	Entity scene.EntityId
	Handle ConstraintHandle
}

// CreateJoint connects the body of the entity as described by def.
// An entity has at most one joint.
func (e *Engine) CreateJoint(entityId scene.EntityId, def JointDef) (*Joint, error) {
	if e.sim == nil {
		return nil, ErrSimulationUnavailable
	}

	body, ok := e.bodies.Get(entityId)
	if !ok {
		return nil, fmt.Errorf("physics: create joint for entity %s: %w", entityId, ErrNoBody)
	}

	constraintDef := ConstraintDef{
		Kind:   def.Kind,
		BodyA:  body.Handle,
		PivotA: def.Pivot,
		PivotB: def.PivotOther,
		Limits: def.Limits,
	}

	if def.Other != scene.NoEntityId {
		other, ok := e.bodies.Get(def.Other)
		if !ok {
			return nil, fmt.Errorf("physics: create joint to entity %s: %w", def.Other, ErrNoBody)
		}

		constraintDef.BodyB = other.Handle
	}

	if e.joints.Has(entityId) {
		if err := e.DestroyJoint(entityId); err != nil {
			return nil, err
		}
	}

	handle, err := e.sim.CreateConstraint(constraintDef)
	if err != nil {
		return nil, fmt.Errorf("physics: create joint for entity %s: %w", entityId, err)
	}

	e.trackConstraint(handle)

	if err := e.AddConstraint(handle); err != nil {
		e.sim.DestroyConstraint(handle)
		e.forgetConstraint(handle)
		return nil, err
	}

	joint := &Joint{JointDef: def, Entity: entityId, Handle: handle}
	e.joints.Put(entityId, joint)

	return joint, nil
}

// UpdateJoint replaces the joint of the entity with one built from def.
func (e *Engine) UpdateJoint(entityId scene.EntityId, def JointDef) (*Joint, error) {
	if !e.joints.Has(entityId) {
		return nil, fmt.Errorf("physics: update joint of entity %s: %w", entityId, ErrNoJoint)
	}

	return e.CreateJoint(entityId, def)
}

func (e *Engine) Joint(entityId scene.EntityId) (*Joint, bool) {
	return e.joints.Get(entityId)
}

func (e *Engine) DestroyJoint(entityId scene.EntityId) error {
	if e.sim == nil {
		return ErrSimulationUnavailable
	}

	joint, ok := e.joints.Get(entityId)
	if !ok {
		return fmt.Errorf("physics: destroy joint of entity %s: %w", entityId, ErrNoJoint)
	}

	e.joints.Del(entityId)

	// the constraint might have been removed from the world already
	if inWorld, _ := e.constraints.Get(joint.Handle); inWorld {
		if err := e.RemoveConstraint(joint.Handle); err != nil {
			return err
		}
	}

	e.sim.DestroyConstraint(joint.Handle)
	e.forgetConstraint(joint.Handle)

	return nil
}

// destroyJointsOf removes the joint of the entity and all
// joints connecting other entities to it.
func (e *Engine) destroyJointsOf(entityId scene.EntityId) {
	var owners []scene.EntityId

	e.joints.ForEach(func(owner scene.EntityId, joint *Joint) bool {
		if owner == entityId || joint.Other == entityId {
			owners = append(owners, owner)
		}

		return true
	})

	for _, owner := range owners {
		_ = e.DestroyJoint(owner)
	}
}
