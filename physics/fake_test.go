package physics

import (
	"testing"

	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
	"github.com/stretchr/testify/require"
)

type fakeBody struct {
	def     BodyDef
	inWorld bool
	state   BodyState
}

// fakeSimulation replays scripted manifolds instead of simulating anything.
type fakeSimulation struct {
	handleSeq uint64

	bodies      map[BodyHandle]*fakeBody
	constraints map[ConstraintHandle]ConstraintDef
	added       map[ConstraintHandle]bool

	gravity gm.Vec3
	solver  SolverConfig

	manifolds []Manifold
	steps     int

	// skipStep makes Step report that no substep ran
	skipStep bool

	hit *RayHit
}

func newFakeSimulation() *fakeSimulation {
	return &fakeSimulation{
		bodies:      map[BodyHandle]*fakeBody{},
		constraints: map[ConstraintHandle]ConstraintDef{},
		added:       map[ConstraintHandle]bool{},
	}
}

func (f *fakeSimulation) CreateBody(def BodyDef) (BodyHandle, error) {
	f.handleSeq += 1
	handle := BodyHandle(f.handleSeq)

	f.bodies[handle] = &fakeBody{
		def:   def,
		state: BodyState{Transform: def.Transform, Active: true},
	}

	return handle, nil
}

func (f *fakeSimulation) DestroyBody(body BodyHandle) {
	delete(f.bodies, body)
}

func (f *fakeSimulation) AddBody(body BodyHandle) {
	f.bodies[body].inWorld = true
}

func (f *fakeSimulation) RemoveBody(body BodyHandle) {
	f.bodies[body].inWorld = false
}

func (f *fakeSimulation) SetBodyKind(body BodyHandle, kind BodyKind) {
	f.bodies[body].def.Kind = kind
}

func (f *fakeSimulation) BodyState(body BodyHandle) (BodyState, bool) {
	b, ok := f.bodies[body]
	if !ok {
		return BodyState{}, false
	}

	return b.state, true
}

func (f *fakeSimulation) SetBodyTransform(body BodyHandle, transform scene.Transform) {
	f.bodies[body].state.Transform = transform
}

func (f *fakeSimulation) CreateConstraint(def ConstraintDef) (ConstraintHandle, error) {
	f.handleSeq += 1
	handle := ConstraintHandle(f.handleSeq)
	f.constraints[handle] = def
	return handle, nil
}

func (f *fakeSimulation) DestroyConstraint(constraint ConstraintHandle) {
	delete(f.constraints, constraint)
	delete(f.added, constraint)
}

func (f *fakeSimulation) AddConstraint(constraint ConstraintHandle) {
	f.added[constraint] = true
}

func (f *fakeSimulation) RemoveConstraint(constraint ConstraintHandle) {
	delete(f.added, constraint)
}

func (f *fakeSimulation) SetGravity(gravity gm.Vec3) {
	f.gravity = gravity
}

func (f *fakeSimulation) SetSolver(solver SolverConfig) {
	f.solver = solver
}

func (f *fakeSimulation) Step(dt float64, maxSubSteps int, fixedTimeStep float64) int {
	f.steps += 1

	if f.skipStep {
		return 0
	}

	return 1
}

func (f *fakeSimulation) Manifolds() []Manifold {
	return f.manifolds
}

func (f *fakeSimulation) RaycastFirst(start, end gm.Vec3) (RayHit, bool) {
	if f.hit == nil {
		return RayHit{}, false
	}

	return *f.hit, true
}

// countingHost counts the listener queries made by the engine.
type countingHost struct {
	SceneHost
	queries map[scene.EntityId]int
}

func (h *countingHost) CountListeners(entityId scene.EntityId, flag EventFlags) int {
	h.queries[entityId] += 1
	return h.SceneHost.CountListeners(entityId, flag)
}

type testWorld struct {
	t      *testing.T
	scene  *scene.Scene
	host   *countingHost
	sim    *fakeSimulation
	engine *Engine
}

func newTestWorld(t *testing.T) *testWorld {
	return newTestWorldWithConfig(t, DefaultConfig())
}

func newTestWorldWithConfig(t *testing.T, config Config) *testWorld {
	s := scene.New()
	sim := newFakeSimulation()
	host := &countingHost{SceneHost: SceneHost{Scene: s}, queries: map[scene.EntityId]int{}}

	engine, err := NewEngine(sim, host, config)
	require.NoError(t, err)

	s.OnDespawn(engine.Forget)

	return &testWorld{t: t, scene: s, host: host, sim: sim, engine: engine}
}

func (w *testWorld) spawn(name string, kind BodyKind) (scene.EntityId, BodyHandle) {
	entityId := w.scene.Spawn(name, scene.Transform{})

	def := DefaultBodyDef(Circle(1))
	def.Kind = kind

	body, err := w.engine.CreateRigidBody(entityId, def)
	require.NoError(w.t, err)

	return entityId, body.Handle
}

// step advances the engine by one frame reporting the given manifolds.
func (w *testWorld) step(manifolds ...Manifold) {
	w.sim.manifolds = manifolds
	require.NoError(w.t, w.engine.Advance(1.0/60.0))
}

func touching(a, b BodyHandle, n int) Manifold {
	points := make([]ManifoldPoint, n)
	for idx := range points {
		offset := float64(idx)
		points[idx] = ManifoldPoint{
			LocalA: gm.Vec3{X: 1, Y: offset},
			LocalB: gm.Vec3{X: -1, Y: offset},
			WorldA: gm.Vec3{X: 1, Y: offset},
			WorldB: gm.Vec3{X: 1.1, Y: offset},
			Normal: gm.Vec3{X: 1},
		}
	}

	return Manifold{BodyA: a, BodyB: b, Points: points}
}

// recorder collects events of type E delivered to an entity.
type recorder[E any] struct {
	events []E
}

func record[E any](s *scene.Scene, target scene.EntityId) *recorder[E] {
	r := &recorder[E]{}
	scene.Observe(s, target, func(ev scene.On[E]) {
		r.events = append(r.events, ev.Event)
	})

	return r
}
