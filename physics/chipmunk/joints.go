package chipmunk

import (
	"fmt"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/rigid/physics"
)

func (s *Space) CreateConstraint(def physics.ConstraintDef) (physics.ConstraintHandle, error) {
	bodyA, ok := s.bodies.Get(def.BodyA)
	if !ok {
		return 0, fmt.Errorf("chipmunk: unknown body %d", def.BodyA)
	}

	a := bodyA.body
	b := s.space.StaticBody

	anchorA := toVector(def.PivotA)
	anchorB := toVector(def.PivotB)

	if def.BodyB == physics.NoBodyHandle {
		// pin to the world where the pivot currently is
		anchorB = a.LocalToWorld(anchorA)
	} else {
		bodyB, ok := s.bodies.Get(def.BodyB)
		if !ok {
			return 0, fmt.Errorf("chipmunk: unknown body %d", def.BodyB)
		}

		b = bodyB.body
	}

	c := &constraint{
		parts: []*cp.Constraint{cp.NewPivotJoint2(a, b, anchorA, anchorB)},
	}

	if def.Kind == physics.ConstraintHinge && def.Limits != nil {
		limit := cp.NewRotaryLimitJoint(a, b, def.Limits.Low.Radians(), def.Limits.High.Radians())
		c.parts = append(c.parts, limit)
	}

	s.handleSeq += 1
	handle := physics.ConstraintHandle(s.handleSeq)
	s.constraints.Put(handle, c)

	return handle, nil
}

func (s *Space) DestroyConstraint(handle physics.ConstraintHandle) {
	c, ok := s.constraints.Get(handle)
	if !ok {
		return
	}

	for _, part := range c.parts {
		if s.space.ContainsConstraint(part) {
			s.space.RemoveConstraint(part)
		}
	}

	s.constraints.Del(handle)
}

func (s *Space) AddConstraint(handle physics.ConstraintHandle) {
	if c, ok := s.constraints.Get(handle); ok {
		for _, part := range c.parts {
			s.space.AddConstraint(part)
		}
	}
}

func (s *Space) RemoveConstraint(handle physics.ConstraintHandle) {
	if c, ok := s.constraints.Get(handle); ok {
		for _, part := range c.parts {
			s.space.RemoveConstraint(part)
		}
	}
}
