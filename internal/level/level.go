// Package level spawns entities, bodies, joints and scripts from a yaml description.
package level

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/physics"
	"github.com/oliverbestmann/rigid/scene"
	"github.com/oliverbestmann/rigid/script"
	"gopkg.in/yaml.v3"
)

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec2) Vec3() gm.Vec3 {
	return gm.Vec3{X: v.X, Y: v.Y}
}

// ShapeDef describes a circle by its radius or a box by its half extents.
type ShapeDef struct {
	Circle float64 `yaml:"circle"`
	Box    *Vec2   `yaml:"box"`
}

func (d ShapeDef) Shape() (physics.Shape, error) {
	switch {
	case d.Box != nil && d.Circle != 0:
		return physics.Shape{}, errors.New("shape must be either a circle or a box")

	case d.Box != nil:
		return physics.Box(d.Box.X, d.Box.Y), nil

	case d.Circle > 0:
		return physics.Circle(d.Circle), nil

	default:
		return physics.Shape{}, errors.New("shape needs a positive circle radius or box extents")
	}
}

type BodyDef struct {
	Kind           physics.BodyKind `yaml:"kind"`
	Shape          ShapeDef         `yaml:"shape"`
	Mass           float64          `yaml:"mass"`
	Friction       *float64         `yaml:"friction"`
	Restitution    float64          `yaml:"restitution"`
	LinearDamping  float64          `yaml:"linear_damping"`
	AngularDamping float64          `yaml:"angular_damping"`
	FixedRotation  bool             `yaml:"fixed_rotation"`
}

func (d BodyDef) physicsDef() (physics.BodyDef, error) {
	shape, err := d.Shape.Shape()
	if err != nil {
		return physics.BodyDef{}, err
	}

	def := physics.DefaultBodyDef(shape)
	def.Kind = d.Kind
	def.Restitution = d.Restitution
	def.LinearDamping = d.LinearDamping
	def.AngularDamping = d.AngularDamping

	if d.Mass > 0 {
		def.Mass = d.Mass
	}

	if d.Friction != nil {
		def.Friction = *d.Friction
	}

	if d.FixedRotation {
		def.AngularFactor = 0
	}

	return def, nil
}

type JointDef struct {
	Kind string `yaml:"kind"`

	// Other names the entity to connect to, empty for the world.
	Other string `yaml:"other"`

	Pivot      Vec2 `yaml:"pivot"`
	PivotOther Vec2 `yaml:"pivot_other"`

	// Limits of a hinge in degrees.
	Limits *[2]float64 `yaml:"limits"`
}

func (d JointDef) constraintKind() (physics.ConstraintKind, error) {
	switch d.Kind {
	case "", "ballsocket":
		return physics.ConstraintBallSocket, nil
	case "hinge":
		return physics.ConstraintHinge, nil
	default:
		return 0, fmt.Errorf("unknown joint kind %q", d.Kind)
	}
}

type EntityDef struct {
	Name     string `yaml:"name"`
	Position Vec2   `yaml:"position"`

	// Rotation in degrees.
	Rotation float64 `yaml:"rotation"`

	Body    *BodyDef  `yaml:"body"`
	Trigger *ShapeDef `yaml:"trigger"`
	Joint   *JointDef `yaml:"joint"`

	// Script is the path of a tengo script, relative to the level.
	Script string `yaml:"script"`

	// Log names events that are written to the log.
	Log []string `yaml:"log"`
}

type Level struct {
	Entities []EntityDef `yaml:"entities"`
}

func Parse(data []byte) (Level, error) {
	var level Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return Level{}, fmt.Errorf("level: %w", err)
	}

	return level, nil
}

// Load reads a level from fsys. Scripts are resolved relative to fsys too.
func Load(fsys fs.FS, path string) (Level, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Level{}, fmt.Errorf("level: %w", err)
	}

	return Parse(data)
}

// Spawned maps the entity names of a level to the spawned entities.
type Spawned map[string]scene.EntityId

// Spawn creates all entities of the level. Joints are created after all
// entities exist, so they may reference entities defined later. If the engine
// has no simulation, entities, scripts and listeners are still created.
func (l Level) Spawn(s *scene.Scene, engine *physics.Engine, fsys fs.FS) (Spawned, error) {
	spawned := Spawned{}
	programs := map[string]*script.Program{}

	for _, def := range l.Entities {
		if _, exists := spawned[def.Name]; exists {
			return nil, fmt.Errorf("level: duplicate entity name %q", def.Name)
		}

		transform := scene.Transform{
			Translation: def.Position.Vec3(),
			Rotation:    gm.DegToRad(def.Rotation),
		}

		entityId := s.Spawn(def.Name, transform)
		spawned[def.Name] = entityId

		if err := spawnEntity(s, engine, fsys, programs, entityId, def); err != nil {
			return nil, fmt.Errorf("level: entity %q: %w", def.Name, err)
		}
	}

	for _, def := range l.Entities {
		if def.Joint == nil {
			continue
		}

		if err := createJoint(engine, spawned, def); err != nil {
			return nil, fmt.Errorf("level: joint of %q: %w", def.Name, err)
		}
	}

	return spawned, nil
}

func spawnEntity(
	s *scene.Scene,
	engine *physics.Engine,
	fsys fs.FS,
	programs map[string]*script.Program,
	entityId scene.EntityId,
	def EntityDef,
) error {
	switch {
	case def.Body != nil && def.Trigger != nil:
		return errors.New("entity can not have both a body and a trigger")

	case def.Body != nil:
		bodyDef, err := def.Body.physicsDef()
		if err != nil {
			return err
		}

		if _, err := engine.CreateRigidBody(entityId, bodyDef); skipUnavailable(err) != nil {
			return err
		}

	case def.Trigger != nil:
		shape, err := def.Trigger.Shape()
		if err != nil {
			return err
		}

		if _, err := engine.RegisterTrigger(entityId, shape); skipUnavailable(err) != nil {
			return err
		}
	}

	for _, name := range def.Log {
		flag, err := physics.ParseEventName(name)
		if err != nil {
			return err
		}

		LogEvents(s, entityId, flag)
	}

	if def.Script != "" {
		program, ok := programs[def.Script]
		if !ok {
			source, err := fs.ReadFile(fsys, def.Script)
			if err != nil {
				return err
			}

			program, err = script.Load(def.Script, source)
			if err != nil {
				return err
			}

			programs[def.Script] = program
		}

		if _, err := program.Attach(s, engine, entityId); err != nil {
			return err
		}
	}

	return nil
}

func createJoint(engine *physics.Engine, spawned Spawned, def EntityDef) error {
	kind, err := def.Joint.constraintKind()
	if err != nil {
		return err
	}

	jointDef := physics.JointDef{
		Kind:       kind,
		Pivot:      def.Joint.Pivot.Vec3(),
		PivotOther: def.Joint.PivotOther.Vec3(),
	}

	if def.Joint.Other != "" {
		other, ok := spawned[def.Joint.Other]
		if !ok {
			return fmt.Errorf("unknown entity %q", def.Joint.Other)
		}

		jointDef.Other = other
	}

	if limits := def.Joint.Limits; limits != nil {
		jointDef.Limits = &physics.AngleLimits{
			Low:  gm.DegToRad(limits[0]),
			High: gm.DegToRad(limits[1]),
		}
	}

	_, err = engine.CreateJoint(spawned[def.Name], jointDef)
	return skipUnavailable(err)
}

// skipUnavailable drops ErrSimulationUnavailable. Without a simulation the
// level is spawned without bodies and joints.
func skipUnavailable(err error) error {
	if errors.Is(err, physics.ErrSimulationUnavailable) {
		return nil
	}

	return err
}

// LogEvents writes every event of the given category on the entity to the log.
func LogEvents(s *scene.Scene, entityId scene.EntityId, flag physics.EventFlags) scene.ObserverId {
	logEvent := func(target, other scene.EntityId, contacts int) {
		slog.Info("Physics event",
			slog.String("event", flag.String()),
			slog.Any("entity", target),
			slog.Any("other", other),
			slog.Int("contacts", contacts),
		)
	}

	switch flag {
	case physics.FlagContact:
		return scene.Observe(s, entityId, func(on scene.On[physics.Contact]) {
			logEvent(on.Target, on.Event.Other, len(on.Event.Contacts))
		})

	case physics.FlagCollisionStart:
		return scene.Observe(s, entityId, func(on scene.On[physics.CollisionStart]) {
			logEvent(on.Target, on.Event.Other, len(on.Event.Contacts))
		})

	case physics.FlagCollisionEnd:
		return scene.Observe(s, entityId, func(on scene.On[physics.CollisionEnd]) {
			logEvent(on.Target, on.Event.Other, 0)
		})

	case physics.FlagTriggerEnter:
		return scene.Observe(s, entityId, func(on scene.On[physics.TriggerEnter]) {
			logEvent(on.Target, on.Event.Other, 0)
		})

	case physics.FlagTriggerLeave:
		return scene.Observe(s, entityId, func(on scene.On[physics.TriggerLeave]) {
			logEvent(on.Target, on.Event.Other, 0)
		})

	default:
		panic(fmt.Sprintf("not an entity event: %s", flag))
	}
}
