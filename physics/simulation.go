package physics

import (
	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
)

// BodyHandle identifies a body within a Simulation.
type BodyHandle uint64

const NoBodyHandle BodyHandle = 0

// ConstraintHandle identifies a constraint within a Simulation.
type ConstraintHandle uint64

type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents gm.Vec3
}

func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

func Box(halfWidth, halfHeight float64) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: gm.Vec3{X: halfWidth, Y: halfHeight}}
}

// BodyDef describes the physical properties of a body.
type BodyDef struct {
	Kind  BodyKind
	Shape Shape

	Mass        float64
	Friction    float64
	Restitution float64

	LinearDamping  float64
	AngularDamping float64

	// LinearFactor scales the velocity change per axis. Zero locks the axis.
	LinearFactor gm.Vec3

	// AngularFactor scales the change of angular velocity. Zero locks rotation.
	AngularFactor float64

	// Transform is the initial placement of the body.
	Transform scene.Transform
}

// DefaultBodyDef returns a static body with unit mass.
func DefaultBodyDef(shape Shape) BodyDef {
	return BodyDef{
		Kind:          KindStatic,
		Shape:         shape,
		Mass:          1,
		Friction:      0.5,
		LinearFactor:  gm.Vec3{X: 1, Y: 1, Z: 1},
		AngularFactor: 1,
	}
}

type ConstraintKind uint8

const (
	// ConstraintBallSocket pins two anchor points together.
	ConstraintBallSocket ConstraintKind = iota

	// ConstraintHinge pins two anchors together and optionally limits the relative angle.
	ConstraintHinge
)

type AngleLimits struct {
	Low, High gm.Rad
}

type ConstraintDef struct {
	Kind ConstraintKind

	BodyA BodyHandle

	// BodyB is the second body. NoBodyHandle attaches BodyA to the world at
	// the current world position of PivotA.
	BodyB BodyHandle

	// PivotA and PivotB are anchor points in local space of their bodies.
	PivotA, PivotB gm.Vec3

	// Limits is only used by hinges.
	Limits *AngleLimits
}

// BodyState is the simulated state of a body after a step.
type BodyState struct {
	Transform scene.Transform

	// Active is false for bodies that are asleep.
	Active bool
}

// ManifoldPoint is a single contact point as reported for the ordered body pair.
type ManifoldPoint struct {
	LocalA, LocalB gm.Vec3
	WorldA, WorldB gm.Vec3

	// Normal points from body A towards body B.
	Normal gm.Vec3
}

// Manifold holds the contact points between two bodies produced by the most recent step.
type Manifold struct {
	BodyA, BodyB BodyHandle
	Points       []ManifoldPoint
}

type RayHit struct {
	Body   BodyHandle
	Point  gm.Vec3
	Normal gm.Vec3
}

// Simulation is the rigid body engine that steps dynamics and detects collisions.
// Handles passed to a Simulation are always valid, the Registry guards against misuse.
type Simulation interface {
	CreateBody(def BodyDef) (BodyHandle, error)
	DestroyBody(body BodyHandle)

	AddBody(body BodyHandle)
	RemoveBody(body BodyHandle)

	SetBodyKind(body BodyHandle, kind BodyKind)
	BodyState(body BodyHandle) (BodyState, bool)
	SetBodyTransform(body BodyHandle, transform scene.Transform)

	CreateConstraint(def ConstraintDef) (ConstraintHandle, error)
	DestroyConstraint(constraint ConstraintHandle)

	AddConstraint(constraint ConstraintHandle)
	RemoveConstraint(constraint ConstraintHandle)

	SetGravity(gravity gm.Vec3)
	SetSolver(solver SolverConfig)

	// Step advances the simulation by dt using at most maxSubSteps steps of
	// fixedTimeStep. A maxSubSteps of zero performs a single variable step of dt.
	// It returns the number of steps taken.
	Step(dt float64, maxSubSteps int, fixedTimeStep float64) int

	// Manifolds returns the contacts of the last simulation step.
	// The slice is owned by the simulation and valid until the next call to Step.
	Manifolds() []Manifold

	RaycastFirst(start, end gm.Vec3) (RayHit, bool)
}
