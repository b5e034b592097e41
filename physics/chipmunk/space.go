// Package chipmunk implements physics.Simulation on top of the chipmunk2d port
// github.com/jakecoffman/cp. Bodies live in the XY plane.
package chipmunk

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp/v2"
	"github.com/kamstrup/intmap"
	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/physics"
	"github.com/oliverbestmann/rigid/scene"
)

// every shape managed by a Space uses this collision type
const collisionTypeBody cp.CollisionType = 1

type body struct {
	def   physics.BodyDef
	body  *cp.Body
	shape *cp.Shape
}

type constraint struct {
	parts []*cp.Constraint
}

// Space is a physics.Simulation backed by a cp.Space.
type Space struct {
	space *cp.Space

	handleSeq   uint64
	bodies      *intmap.Map[physics.BodyHandle, *body]
	constraints *intmap.Map[physics.ConstraintHandle, *constraint]

	stepper stepper

	manifolds []physics.Manifold
	points    []physics.ManifoldPoint
}

var _ physics.Simulation = (*Space)(nil)

func New(config physics.Config) (*Space, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("chipmunk: %w", err)
	}

	s := &Space{
		space:       cp.NewSpace(),
		bodies:      intmap.New[physics.BodyHandle, *body](64),
		constraints: intmap.New[physics.ConstraintHandle, *constraint](16),
	}

	s.SetGravity(config.Gravity)
	s.SetSolver(config.Solver)

	// capture the contacts of every colliding pair, including sensors
	handler := s.space.NewCollisionHandler(collisionTypeBody, collisionTypeBody)
	handler.PreSolveFunc = s.preSolve

	return s, nil
}

// Space returns the underlying cp.Space.
func (s *Space) Space() *cp.Space {
	return s.space
}

func (s *Space) preSolve(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	bodyA, bodyB := arb.Bodies()

	handleA, okA := bodyA.UserData.(physics.BodyHandle)
	handleB, okB := bodyB.UserData.(physics.BodyHandle)
	if !okA || !okB {
		return true
	}

	// the arbiter recycles its contacts, copy them now
	set := arb.ContactPointSet()
	if set.Count == 0 {
		return true
	}

	normal := toVec3(set.Normal)

	start := len(s.points)
	for idx := 0; idx < set.Count; idx++ {
		pointA, pointB := set.Points[idx].PointA, set.Points[idx].PointB

		s.points = append(s.points, physics.ManifoldPoint{
			LocalA: toVec3(bodyA.WorldToLocal(pointA)),
			LocalB: toVec3(bodyB.WorldToLocal(pointB)),
			WorldA: toVec3(pointA),
			WorldB: toVec3(pointB),
			Normal: normal,
		})
	}

	end := len(s.points)

	s.manifolds = append(s.manifolds, physics.Manifold{
		BodyA:  handleA,
		BodyB:  handleB,
		Points: s.points[start:end:end],
	})

	return true
}

func (s *Space) Step(dt float64, maxSubSteps int, fixedTimeStep float64) int {
	if maxSubSteps == 0 {
		if dt <= 0 {
			return 0
		}

		s.stepOnce(dt)
		return 1
	}

	steps := s.stepper.advance(dt, maxSubSteps, fixedTimeStep)
	for range steps {
		s.stepOnce(fixedTimeStep)
	}

	return steps
}

func (s *Space) stepOnce(dt float64) {
	// only the contacts of the last step are reported
	clear(s.manifolds)
	s.manifolds = s.manifolds[:0]
	s.points = s.points[:0]

	s.space.Step(dt)
}

func (s *Space) Manifolds() []physics.Manifold {
	return s.manifolds
}

func (s *Space) SetGravity(gravity gm.Vec3) {
	s.space.SetGravity(toVector(gravity))
}

func (s *Space) SetSolver(solver physics.SolverConfig) {
	s.space.Iterations = uint(solver.Iterations)
	s.space.SetDamping(solver.Damping)
	s.space.SetCollisionSlop(solver.CollisionSlop)
}

func (s *Space) CreateBody(def physics.BodyDef) (physics.BodyHandle, error) {
	if def.Mass <= 0 {
		def.Mass = 1
	}

	cpBody := newBody(def)

	shape, err := makeShape(cpBody, def.Shape)
	if err != nil {
		return physics.NoBodyHandle, err
	}

	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Restitution)
	shape.SetCollisionType(collisionTypeBody)
	shape.SetSensor(def.Kind == physics.KindTrigger)

	cpBody.SetPosition(toVector(def.Transform.Translation))
	cpBody.SetAngle(def.Transform.Rotation.Radians())
	cpBody.SetVelocityUpdateFunc(velocityUpdate(def))

	s.handleSeq += 1
	handle := physics.BodyHandle(s.handleSeq)

	cpBody.UserData = handle
	shape.UserData = handle

	s.bodies.Put(handle, &body{def: def, body: cpBody, shape: shape})

	return handle, nil
}

func newBody(def physics.BodyDef) *cp.Body {
	switch def.Kind {
	case physics.KindDynamic:
		return cp.NewBody(def.Mass, momentOf(def.Mass, def.Shape))

	case physics.KindKinematic, physics.KindTrigger:
		return cp.NewKinematicBody()

	default:
		return cp.NewStaticBody()
	}
}

// velocityUpdate applies per body damping and the linear and angular factors.
func velocityUpdate(def physics.BodyDef) func(*cp.Body, cp.Vector, float64, float64) {
	return func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		v0, w0 := body.Velocity(), body.AngularVelocity()

		cp.BodyUpdateVelocity(body, gravity, damping, dt)

		v, w := body.Velocity(), body.AngularVelocity()

		// only scale the change in velocity
		v = cp.Vector{
			X: v0.X + (v.X-v0.X)*def.LinearFactor.X,
			Y: v0.Y + (v.Y-v0.Y)*def.LinearFactor.Y,
		}

		w = w0 + (w-w0)*def.AngularFactor

		linearDamping := math.Pow(1-def.LinearDamping, dt)
		angularDamping := math.Pow(1-def.AngularDamping, dt)

		body.SetVelocityVector(v.Mult(linearDamping))
		body.SetAngularVelocity(w * angularDamping)
	}
}

func (s *Space) DestroyBody(handle physics.BodyHandle) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return
	}

	if s.space.ContainsBody(b.body) {
		s.RemoveBody(handle)
	}

	b.body.UserData = nil
	b.shape.UserData = nil
	s.bodies.Del(handle)
}

func (s *Space) AddBody(handle physics.BodyHandle) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return
	}

	s.space.AddBody(b.body)
	s.space.AddShape(b.shape)
}

func (s *Space) RemoveBody(handle physics.BodyHandle) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return
	}

	s.space.RemoveShape(b.shape)
	s.space.RemoveBody(b.body)
}

func (s *Space) SetBodyKind(handle physics.BodyHandle, kind physics.BodyKind) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return
	}

	b.def.Kind = kind
	b.shape.SetSensor(kind == physics.KindTrigger)

	switch kind {
	case physics.KindDynamic:
		b.body.SetType(cp.BODY_DYNAMIC)

		// shapes carry no mass, the body would end up massless
		b.body.SetMass(b.def.Mass)
		b.body.SetMoment(momentOf(b.def.Mass, b.def.Shape))

	case physics.KindKinematic, physics.KindTrigger:
		b.body.SetType(cp.BODY_KINEMATIC)

	default:
		b.body.SetType(cp.BODY_STATIC)
	}
}

func (s *Space) BodyState(handle physics.BodyHandle) (physics.BodyState, bool) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return physics.BodyState{}, false
	}

	return physics.BodyState{
		Transform: transformOf(b.body),
		Active:    !b.body.IsSleeping(),
	}, true
}

func (s *Space) SetBodyTransform(handle physics.BodyHandle, transform scene.Transform) {
	b, ok := s.bodies.Get(handle)
	if !ok {
		return
	}

	b.body.SetPosition(toVector(transform.Translation))
	b.body.SetAngle(transform.Rotation.Radians())
}

func (s *Space) RaycastFirst(start, end gm.Vec3) (physics.RayHit, bool) {
	info := s.space.SegmentQueryFirst(toVector(start), toVector(end), 0, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return physics.RayHit{}, false
	}

	handle, _ := info.Shape.UserData.(physics.BodyHandle)

	return physics.RayHit{
		Body:   handle,
		Point:  toVec3(info.Point),
		Normal: toVec3(info.Normal),
	}, true
}
