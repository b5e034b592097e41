package physics

import (
	"testing"

	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
	"github.com/stretchr/testify/require"
)

func TestEngine_NoListenersNoEvents(t *testing.T) {
	w := newTestWorld(t)

	_, a := w.spawn("a", KindDynamic)
	_, b := w.spawn("b", KindStatic)
	_, c := w.spawn("c", KindTrigger)
	_, d := w.spawn("d", KindKinematic)

	for range 5 {
		w.step(touching(a, b, 2), touching(a, c, 1), touching(d, a, 3), touching(b, d, 1))
	}

	w.step()

	stats := w.engine.Stats()
	require.Zero(t, stats.TotalEvents())
	require.Equal(t, 20, stats.Manifolds)
	require.Zero(t, w.engine.TrackedPairOwners())

	// no contact list was ever built
	require.Zero(t, len(w.engine.contactsA))
	require.Zero(t, len(w.engine.contactsB))
}

func TestEngine_ContactEveryStep(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindStatic)

	var pointCounts []int
	scene.Observe(w.scene, x, func(ev scene.On[Contact]) {
		require.Equal(t, y, ev.Event.Other)
		pointCounts = append(pointCounts, len(ev.Event.Contacts))
	})

	for range 3 {
		w.step(touching(bodyX, bodyY, 2))
	}

	require.Equal(t, []int{2, 2, 2}, pointCounts)

	// y has no listeners and must not receive anything
	stats := w.engine.Stats()
	require.Equal(t, 3, stats.Events[FlagContact])
	require.Equal(t, 3, stats.TotalEvents())
}

func TestEngine_TriggerEnterAndLeave(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindTrigger)
	y, bodyY := w.spawn("y", KindDynamic)

	enter := record[TriggerEnter](w.scene, x)
	leave := record[TriggerLeave](w.scene, x)

	// step 1, nothing overlaps
	w.step()
	require.Empty(t, enter.events)

	// step 2, y enters the trigger
	w.step(touching(bodyY, bodyX, 1))
	require.Equal(t, []TriggerEnter{{Other: y}}, enter.events)
	require.True(t, w.engine.Touching(x, y))

	// steps 3 to 5, y stays inside
	for range 3 {
		w.step(touching(bodyY, bodyX, 1))
	}

	require.Len(t, enter.events, 1)
	require.Empty(t, leave.events)

	// step 6, y left
	w.step()
	require.Len(t, enter.events, 1)
	require.Equal(t, []TriggerLeave{{Other: y}}, leave.events)
	require.False(t, w.engine.Touching(x, y))

	stats := w.engine.Stats()
	require.Equal(t, 2, stats.TotalEvents())
}

func TestEngine_GlobalContactOnly(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindStatic)
	_, bodyZ := w.spawn("z", KindTrigger)

	var contacts []GlobalContact
	scene.ObserveGlobal(w.scene, func(ev scene.On[GlobalContact]) {
		contacts = append(contacts, ev.Event)
	})

	w.step(touching(bodyX, bodyY, 3), touching(bodyX, bodyZ, 2))
	require.Len(t, contacts, 3)

	for _, contact := range contacts {
		require.Equal(t, x, contact.A)
		require.Equal(t, y, contact.B)
	}

	w.step(touching(bodyX, bodyY, 2))
	require.Len(t, contacts, 5)

	stats := w.engine.Stats()
	require.Equal(t, 5, stats.Events[FlagGlobalContact])
	require.Equal(t, 5, stats.TotalEvents())
	require.Zero(t, w.engine.TrackedPairOwners())
}

func TestEngine_GlobalContactOrientedFromLowerEntity(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindDynamic)
	require.Less(t, x, y)

	var contacts []GlobalContact
	scene.ObserveGlobal(w.scene, func(ev scene.On[GlobalContact]) {
		contacts = append(contacts, ev.Event)
	})

	// the simulation reports the pair with y first
	w.step(touching(bodyY, bodyX, 1))

	require.Len(t, contacts, 1)
	require.Equal(t, x, contacts[0].A)
	require.Equal(t, y, contacts[0].B)
	require.Equal(t, gm.Vec3{X: -1}, contacts[0].Normal)
	require.Equal(t, gm.Vec3{X: 1.1}, contacts[0].Point)
	require.Equal(t, gm.Vec3{X: 1}, contacts[0].PointOther)
}

func TestEngine_CollisionStartFiresOnce(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindStatic)

	start := record[CollisionStart](w.scene, x)
	end := record[CollisionEnd](w.scene, x)

	for range 4 {
		w.step(touching(bodyX, bodyY, 1))
		require.Len(t, start.events, 1)
		require.Empty(t, end.events)
	}

	require.Equal(t, y, start.events[0].Other)

	w.step()
	require.Equal(t, []CollisionEnd{{Other: y}}, end.events)
	require.False(t, w.engine.Touching(x, y))
	require.Zero(t, w.engine.TrackedPairOwners())

	w.step()
	require.Len(t, end.events, 1)

	// touching again starts a new collision
	w.step(touching(bodyX, bodyY, 1))
	require.Len(t, start.events, 2)
}

func TestEngine_ContactsAreMirrored(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindDynamic)

	var onX, onY []ContactResult
	scene.Observe(w.scene, x, func(ev scene.On[CollisionStart]) {
		onX = append(onX, ev.Event.Clone())
	})

	scene.Observe(w.scene, y, func(ev scene.On[CollisionStart]) {
		onY = append(onY, ev.Event.Clone())
	})

	w.step(touching(bodyX, bodyY, 2))

	require.Len(t, onX, 1)
	require.Len(t, onY, 1)

	require.Equal(t, y, onX[0].Other)
	require.Equal(t, x, onY[0].Other)

	for idx := range 2 {
		a, b := onX[0].Contacts[idx], onY[0].Contacts[idx]
		require.Equal(t, gm.Vec3{X: 1}, a.Normal)
		require.Equal(t, gm.Vec3{X: -1}, b.Normal)
		require.Equal(t, a.Point, b.PointOther)
		require.Equal(t, a.PointOther, b.Point)
		require.Equal(t, a.LocalPoint, b.LocalPointOther)
		require.Equal(t, a.LocalPointOther, b.LocalPoint)
		require.Equal(t, a, b.Mirrored())
	}
}

func TestEngine_FlagsAreComputedOncePerFrame(t *testing.T) {
	w := newTestWorld(t)

	x, _ := w.spawn("x", KindDynamic)
	record[Contact](w.scene, x)

	w.step()

	before := w.host.queries[x]

	flags := w.engine.Flags(x)
	require.Equal(t, FlagContact, flags)
	require.Equal(t, before+len(EntityEventFlags), w.host.queries[x])

	for range 3 {
		require.Equal(t, flags, w.engine.Flags(x))
	}

	require.Equal(t, before+len(EntityEventFlags), w.host.queries[x])

	// listeners registered mid frame are picked up with the next frame
	record[CollisionEnd](w.scene, x)
	require.Equal(t, FlagContact, w.engine.Flags(x))

	w.step()
	require.Equal(t, FlagContact|FlagCollisionEnd, w.engine.Flags(x))
}

func TestEngine_FrameCounterWrap(t *testing.T) {
	config := DefaultConfig()
	config.FrameCounterLimit = 3

	w := newTestWorldWithConfig(t, config)

	x, bodyX := w.spawn("x", KindDynamic)
	_, bodyY := w.spawn("y", KindStatic)

	// refreshes the entry of x without listeners in frame 1
	w.step(touching(bodyX, bodyY, 1))
	require.Equal(t, uint64(1), w.engine.Frame())

	w.step()
	w.step()
	require.Equal(t, uint64(3), w.engine.Frame())

	contacts := record[Contact](w.scene, x)

	// the counter wraps back to one. The entry from the first frame must not be reused.
	w.step(touching(bodyX, bodyY, 1))
	require.Equal(t, uint64(1), w.engine.Frame())
	require.Len(t, contacts.events, 1)
}

func TestEngine_MissingOwnerIsSkipped(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	contacts := record[Contact](w.scene, x)

	w.step(touching(bodyX, BodyHandle(999), 1), touching(BodyHandle(998), bodyX, 1))

	require.Empty(t, contacts.events)
	require.Equal(t, 2, w.engine.Stats().SkippedManifolds)
}

func TestEngine_DespawnDuringDispatch(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindDynamic)
	_, bodyZ := w.spawn("z", KindStatic)

	scene.Observe(w.scene, x, func(ev scene.On[CollisionStart]) {
		w.scene.Despawn(ev.Event.Other)
	})

	end := record[CollisionEnd](w.scene, x)

	w.step(touching(bodyX, bodyY, 1), touching(bodyY, bodyZ, 1))

	_, exists := w.engine.RigidBody(y)
	require.False(t, exists)
	require.Equal(t, 1, w.engine.Stats().SkippedManifolds)

	// the pair is dropped silently because y is gone
	w.step()
	require.Empty(t, end.events)
	require.Zero(t, w.engine.TrackedPairOwners())
}

func TestEngine_SetBodyKind(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindStatic)
	_, bodyY := w.spawn("y", KindStatic)

	start := record[CollisionStart](w.scene, x)

	w.step(touching(bodyX, bodyY, 1))
	require.Empty(t, start.events)

	require.NoError(t, w.engine.SetBodyKind(x, KindDynamic))
	require.Equal(t, KindDynamic, w.sim.bodies[bodyX].def.Kind)

	w.step(touching(bodyX, bodyY, 1))
	require.Len(t, start.events, 1)

	require.ErrorIs(t, w.engine.SetBodyKind(scene.EntityId(1234), KindDynamic), ErrNoBody)
}

func TestEngine_SyncTransforms(t *testing.T) {
	w := newTestWorld(t)

	dynamic, bodyDynamic := w.spawn("dynamic", KindDynamic)
	kinematic, bodyKinematic := w.spawn("kinematic", KindKinematic)
	sleeping, bodySleeping := w.spawn("sleeping", KindDynamic)

	moved := scene.Transform{Translation: gm.Vec3{X: 5}, Rotation: 1}
	w.sim.bodies[bodyDynamic].state.Transform = moved

	w.sim.bodies[bodySleeping].state = BodyState{Transform: moved, Active: false}

	target := scene.Transform{Translation: gm.Vec3{X: 2, Y: 3}}
	w.scene.SetTransform(kinematic, target)

	w.step()

	transform, _ := w.scene.Transform(dynamic)
	require.Equal(t, moved, transform)

	require.Equal(t, target, w.sim.bodies[bodyKinematic].state.Transform)

	transform, _ = w.scene.Transform(sleeping)
	require.Equal(t, scene.Transform{}, transform)
}

func TestEngine_SetEnabled(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	require.True(t, w.sim.bodies[bodyX].inWorld)

	require.NoError(t, w.engine.SetEnabled(x, false))
	require.False(t, w.sim.bodies[bodyX].inWorld)
	require.False(t, w.engine.Contains(bodyX))

	// disabling twice is fine
	require.NoError(t, w.engine.SetEnabled(x, false))

	require.NoError(t, w.engine.SetEnabled(x, true))
	require.True(t, w.sim.bodies[bodyX].inWorld)
}

func TestEngine_StaleHandles(t *testing.T) {
	w := newTestWorld(t)

	_, bodyX := w.spawn("x", KindDynamic)

	require.ErrorIs(t, w.engine.AddBody(bodyX), ErrStaleHandle)
	require.True(t, w.engine.Contains(bodyX))

	require.NoError(t, w.engine.RemoveBody(bodyX))
	require.ErrorIs(t, w.engine.RemoveBody(bodyX), ErrStaleHandle)
	require.False(t, w.engine.Contains(bodyX))

	require.ErrorIs(t, w.engine.AddBody(BodyHandle(4711)), ErrStaleHandle)
	require.ErrorIs(t, w.engine.AddConstraint(ConstraintHandle(4711)), ErrStaleHandle)
	require.ErrorIs(t, w.engine.RemoveConstraint(ConstraintHandle(4711)), ErrStaleHandle)

	require.NoError(t, w.engine.AddBody(bodyX))
	require.True(t, w.sim.bodies[bodyX].inWorld)
}

func TestEngine_SimulationUnavailable(t *testing.T) {
	s := scene.New()

	engine, err := NewEngine(nil, SceneHost{Scene: s}, DefaultConfig())
	require.NoError(t, err)

	require.ErrorIs(t, engine.Advance(1.0/60.0), ErrSimulationUnavailable)
	require.ErrorIs(t, engine.Advance(1.0/60.0), ErrSimulationUnavailable)
	require.Zero(t, engine.Frame())

	x := s.Spawn("x", scene.Transform{})
	_, err = engine.CreateRigidBody(x, DefaultBodyDef(Circle(1)))
	require.ErrorIs(t, err, ErrSimulationUnavailable)

	require.ErrorIs(t, engine.AddBody(1), ErrSimulationUnavailable)
	require.ErrorIs(t, engine.SetGravity(0, -1, 0), ErrSimulationUnavailable)

	_, ok := engine.RaycastFirst(gm.Vec3{}, gm.Vec3{X: 10})
	require.False(t, ok)

	// must not panic
	engine.Forget(x)
}

func TestEngine_Raycast(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindStatic)

	w.sim.hit = &RayHit{Body: bodyX, Point: gm.Vec3{X: 4}, Normal: gm.Vec3{X: -1}}

	result, ok := w.engine.RaycastFirst(gm.Vec3{}, gm.Vec3{X: 10})
	require.True(t, ok)
	require.Equal(t, RaycastResult{Entity: x, Point: gm.Vec3{X: 4}, Normal: gm.Vec3{X: -1}}, result)

	// a body without an owning entity is never reported
	w.sim.hit = &RayHit{Body: BodyHandle(999)}

	called := false
	w.engine.RaycastFirstFunc(gm.Vec3{}, gm.Vec3{X: 10}, func(RaycastResult) {
		called = true
	})

	require.False(t, called)
}

func TestEngine_Joints(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindDynamic)

	limits := &AngleLimits{Low: -1, High: 1}
	joint, err := w.engine.CreateJoint(x, JointDef{
		Kind:   ConstraintHinge,
		Other:  y,
		Pivot:  gm.Vec3{X: 1},
		Limits: limits,
	})

	require.NoError(t, err)
	require.True(t, w.sim.added[joint.Handle])

	def := w.sim.constraints[joint.Handle]
	require.Equal(t, bodyX, def.BodyA)
	require.Equal(t, bodyY, def.BodyB)
	require.Equal(t, limits, def.Limits)

	// updating replaces the constraint
	updated, err := w.engine.UpdateJoint(x, JointDef{Kind: ConstraintBallSocket})
	require.NoError(t, err)
	require.NotEqual(t, joint.Handle, updated.Handle)
	require.NotContains(t, w.sim.constraints, joint.Handle)
	require.Equal(t, NoBodyHandle, w.sim.constraints[updated.Handle].BodyB)

	_, err = w.engine.UpdateJoint(y, JointDef{})
	require.ErrorIs(t, err, ErrNoJoint)

	_, err = w.engine.CreateJoint(x, JointDef{Other: scene.EntityId(999)})
	require.ErrorIs(t, err, ErrNoBody)

	// despawning the body also removes its joint
	_, err = w.engine.CreateJoint(y, JointDef{Other: x})
	require.NoError(t, err)

	w.scene.Despawn(x)
	require.Empty(t, w.sim.constraints)
	require.Empty(t, w.sim.added)

	_, ok := w.engine.Joint(y)
	require.False(t, ok)
}

func TestEngine_ApplyConfig(t *testing.T) {
	w := newTestWorld(t)
	require.Equal(t, gm.Vec3{Y: -9.82}, w.sim.gravity)

	config := DefaultConfig()
	config.Gravity = gm.Vec3{X: 1}
	config.Solver.Iterations = 3

	require.NoError(t, w.engine.ApplyConfig(config))
	require.Equal(t, gm.Vec3{X: 1}, w.sim.gravity)
	require.Equal(t, 3, w.sim.solver.Iterations)

	config.FixedTimeStep = 0
	require.ErrorIs(t, w.engine.ApplyConfig(config), ErrInvalidConfig)

	require.NoError(t, w.engine.SetGravity(0, -1, 0))
	require.Equal(t, gm.Vec3{Y: -1}, w.sim.gravity)
}

func TestEngine_DuplicateBody(t *testing.T) {
	w := newTestWorld(t)

	x, _ := w.spawn("x", KindDynamic)

	_, err := w.engine.CreateRigidBody(x, DefaultBodyDef(Circle(1)))
	require.ErrorIs(t, err, ErrBodyExists)

	require.NoError(t, w.engine.UnregisterTrigger(x))
	require.ErrorIs(t, w.engine.DestroyRigidBody(x), ErrNoBody)
}

func TestEngine_TriggerOverlapsStaticBody(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindTrigger)
	y, bodyY := w.spawn("y", KindStatic)

	enterX := record[TriggerEnter](w.scene, x)
	leaveX := record[TriggerLeave](w.scene, x)
	enterY := record[TriggerEnter](w.scene, y)

	// a static body never reports collisions with a trigger
	contactY := record[Contact](w.scene, y)

	w.step(touching(bodyY, bodyX, 1))
	w.step(touching(bodyY, bodyX, 1))

	require.Equal(t, []TriggerEnter{{Other: y}}, enterX.events)
	require.Equal(t, []TriggerEnter{{Other: x}}, enterY.events)
	require.Empty(t, contactY.events)

	w.step()
	require.Equal(t, []TriggerLeave{{Other: y}}, leaveX.events)
	require.Zero(t, w.engine.TrackedPairOwners())
}

func TestEngine_EndUsesCurrentListeners(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindStatic)

	start := record[CollisionStart](w.scene, x)

	w.step(touching(bodyX, bodyY, 1))
	require.Len(t, start.events, 1)

	// registered after the pair started
	end := record[CollisionEnd](w.scene, x)

	w.step(touching(bodyX, bodyY, 1))
	require.Empty(t, end.events)

	w.step()
	require.Equal(t, []CollisionEnd{{Other: y}}, end.events)

	w.step()
	require.Len(t, end.events, 1)
	require.Len(t, start.events, 1)
}

func TestEngine_UnobservedEndDoesNotFire(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	_, bodyY := w.spawn("y", KindStatic)

	start := record[CollisionStart](w.scene, x)

	var ends int
	endObserver := scene.Observe(w.scene, x, func(scene.On[CollisionEnd]) {
		ends += 1
	})

	w.step(touching(bodyX, bodyY, 1))
	require.Len(t, start.events, 1)
	require.Equal(t, 1, w.engine.TrackedPairOwners())

	require.True(t, w.scene.Unobserve(endObserver))

	w.step(touching(bodyX, bodyY, 1))
	w.step()

	require.Zero(t, ends)
	require.Zero(t, w.engine.TrackedPairOwners())
	require.Len(t, start.events, 1)
}

func TestEngine_NoEventsWithoutSubStep(t *testing.T) {
	w := newTestWorld(t)

	x, bodyX := w.spawn("x", KindDynamic)
	y, bodyY := w.spawn("y", KindStatic)

	contact := record[Contact](w.scene, x)
	end := record[CollisionEnd](w.scene, x)

	w.step(touching(bodyX, bodyY, 1))
	require.Len(t, contact.events, 1)

	// the simulation did not advance, the previous manifolds are still reported
	w.sim.skipStep = true
	w.step(touching(bodyX, bodyY, 1))
	w.step()

	require.Len(t, contact.events, 1)
	require.Empty(t, end.events)
	require.True(t, w.engine.Touching(x, y))

	w.sim.skipStep = false
	w.step()

	require.Equal(t, []CollisionEnd{{Other: y}}, end.events)
}
