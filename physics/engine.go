package physics

import (
	"log/slog"

	"github.com/kamstrup/intmap"
	"github.com/oliverbestmann/rigid/scene"
)

// maxContactPoints is the initial capacity of the contact scratch buffers.
const maxContactPoints = 4

// Engine steps a Simulation and turns its contact manifolds into events
// on the entities of a Host.
//
// An Engine is not safe for concurrent use. Listeners may be registered
// and entities despawned while events are being dispatched.
type Engine struct {
	*Registry

	sim    Simulation
	host   Host
	config Config

	frame            uint64
	hasGlobalContact bool

	cache flagCache
	pairs pairTracker

	bodies *intmap.Map[scene.EntityId, *RigidBody]
	joints *intmap.Map[scene.EntityId, *Joint]

	// scratch buffers for the contact lists of both sides of a manifold,
	// cleared for every manifold and never shrunk
	contactsA []ContactPoint
	contactsB []ContactPoint

	stats StepStats

	warnedUnavailable bool
}

// NewEngine creates a new engine. The simulation may be nil, in which case
// every operation fails with ErrSimulationUnavailable.
func NewEngine(sim Simulation, host Host, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		Registry: newRegistry(sim),
		sim:      sim,
		host:     host,
		config:   config,
		cache:    newFlagCache(),
		pairs:    newPairTracker(),
		bodies:   intmap.New[scene.EntityId, *RigidBody](64),
		joints:   intmap.New[scene.EntityId, *Joint](16),

		contactsA: make([]ContactPoint, 0, maxContactPoints),
		contactsB: make([]ContactPoint, 0, maxContactPoints),
	}

	if sim != nil {
		sim.SetGravity(config.Gravity)
		sim.SetSolver(config.Solver)
	}

	return e, nil
}

func (e *Engine) Config() Config {
	return e.config
}

// ApplyConfig validates and applies a new configuration.
func (e *Engine) ApplyConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if e.sim == nil {
		return ErrSimulationUnavailable
	}

	e.config = config
	e.sim.SetGravity(config.Gravity)
	e.sim.SetSolver(config.Solver)

	return nil
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() StepStats {
	stats := e.stats

	stats.Events = make(map[EventFlags]int, len(e.stats.Events))
	for flag, count := range e.stats.Events {
		stats.Events[flag] = count
	}

	return stats
}

// Advance runs a full frame: it steps the simulation, synchronizes the
// transforms and dispatches all collision events of the step.
func (e *Engine) Advance(dt float64) error {
	if e.sim == nil {
		if !e.warnedUnavailable {
			e.warnedUnavailable = true
			slog.Warn("Physics simulation is not available, skipping all physics updates")
		}

		return ErrSimulationUnavailable
	}

	e.advanceFrame()
	e.stats.Frames += 1

	e.hasGlobalContact = e.host.CountListeners(scene.NoEntityId, FlagGlobalContact) > 0

	stop := e.stats.measure(PhaseStep)
	e.stats.SubSteps = e.sim.Step(dt, e.config.MaxSubSteps, e.config.FixedTimeStep)
	stop()

	stop = e.stats.measure(PhaseSync)
	e.syncTransforms()
	stop()

	// no step ran, the manifolds and pairs of the previous frame still hold
	if e.stats.SubSteps == 0 {
		return nil
	}

	stop = e.stats.measure(PhaseManifolds)
	e.processManifolds(e.sim.Manifolds())
	stop()

	stop = e.stats.measure(PhaseSweep)
	e.pairs.sweep(e.pairEnded)
	stop()

	return nil
}

func (e *Engine) syncTransforms() {
	e.bodies.ForEach(func(entityId scene.EntityId, body *RigidBody) bool {
		if !body.Enabled || !e.host.Enabled(entityId) {
			return true
		}

		state, ok := e.sim.BodyState(body.Handle)
		if !ok || !state.Active {
			return true
		}

		if entry, ok := e.cache.entries.Get(entityId); ok {
			entry.kind = body.Kind
		}

		switch body.Kind {
		case KindDynamic:
			e.host.SetTransform(entityId, state.Transform)

		case KindKinematic, KindTrigger:
			if transform, ok := e.host.Transform(entityId); ok {
				e.sim.SetBodyTransform(body.Handle, transform)
			}
		}

		return true
	})
}

func (e *Engine) processManifolds(manifolds []Manifold) {
	for idx := range manifolds {
		manifold := &manifolds[idx]
		if len(manifold.Points) == 0 {
			continue
		}

		e.stats.Manifolds += 1

		entityA, okA := e.ResolveOwningEntity(manifold.BodyA)
		entityB, okB := e.ResolveOwningEntity(manifold.BodyB)
		if !okA || !okB {
			e.stats.SkippedManifolds += 1
			continue
		}

		entryA, okA := e.lookup(entityA)
		entryB, okB := e.lookup(entityB)
		if !okA || !okB {
			e.stats.SkippedManifolds += 1
			continue
		}

		var flagsA, flagsB EventFlags
		if entryA.flags != 0 {
			flagsA = Classify(entryA.flags, entryA.kind, entryB.kind)
		}

		if entryB.flags != 0 {
			flagsB = Classify(entryB.flags, entryB.kind, entryA.kind)
		}

		if flagsA == 0 && flagsB == 0 {
			continue
		}

		if (flagsA|flagsB)&FlagGlobalContact != 0 {
			e.emitGlobalContacts(entityA, entityB, manifold.Points)
		}

		if flagsA != 0 {
			e.dispatch(entityA, entityB, flagsA, manifold.Points, &e.contactsA, false)
		}

		if flagsB != 0 {
			e.dispatch(entityB, entityA, flagsB, manifold.Points, &e.contactsB, true)
		}
	}
}

func (e *Engine) emitGlobalContacts(entityA, entityB scene.EntityId, points []ManifoldPoint) {
	// report the pair from the entity with the lower id
	mirrored := entityB < entityA
	if mirrored {
		entityA, entityB = entityB, entityA
	}

	e.contactsA = appendContactPoints(e.contactsA[:0], points, mirrored)

	for _, point := range e.contactsA {
		e.emit(scene.NoEntityId, FlagGlobalContact, GlobalContact{
			SingleContactResult: SingleContactResult{
				A:            entityA,
				B:            entityB,
				ContactPoint: point,
			},
		})
	}
}

func (e *Engine) dispatch(
	self, other scene.EntityId,
	flags EventFlags,
	points []ManifoldPoint,
	buf *[]ContactPoint,
	mirrored bool,
) {
	result := ContactResult{Other: other}

	if flags&(FlagContact|FlagCollisionStart) != 0 {
		*buf = appendContactPoints((*buf)[:0], points, mirrored)
		result.Contacts = *buf
	}

	if flags&FlagContact != 0 {
		e.emit(self, FlagContact, Contact{ContactResult: result})
	}

	if flags&pairFlags == 0 {
		return
	}

	if !e.pairs.record(self, other) {
		return
	}

	if flags&FlagCollisionStart != 0 {
		e.emit(self, FlagCollisionStart, CollisionStart{ContactResult: result})
	}

	if flags&FlagTriggerEnter != 0 {
		e.emit(self, FlagTriggerEnter, TriggerEnter{Other: other})
	}
}

func (e *Engine) pairEnded(owner, other scene.EntityId) {
	entryOwner, okOwner := e.lookup(owner)
	entryOther, okOther := e.lookup(other)
	if !okOwner || !okOther || entryOwner.flags == 0 {
		return
	}

	flags := Classify(entryOwner.flags, entryOwner.kind, entryOther.kind)

	if flags&FlagCollisionEnd != 0 {
		e.emit(owner, FlagCollisionEnd, CollisionEnd{Other: other})
	}

	if flags&FlagTriggerLeave != 0 {
		e.emit(owner, FlagTriggerLeave, TriggerLeave{Other: other})
	}
}

func (e *Engine) emit(target scene.EntityId, flag EventFlags, event any) {
	e.stats.countEvent(flag)
	e.host.Emit(target, event)
}

// Touching reports whether the engine currently tracks the two entities
// as touching, seen from owner.
func (e *Engine) Touching(owner, other scene.EntityId) bool {
	return e.pairs.touching(owner, other)
}

// TrackedPairOwners returns the number of entities that currently have
// at least one touching partner.
func (e *Engine) TrackedPairOwners() int {
	return e.pairs.len()
}
