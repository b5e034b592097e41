// Package script runs tengo scripts in response to physics events.
//
// A script declares the events it reacts to in a top level events array
// and is run once per event with these globals:
//
//	event     name of the event, e.g. "collisionstart"
//	self      id of the entity the script is attached to
//	other     id of the other entity
//	contacts  number of contact points, zero for end and trigger events
//	kind      assign a body kind like "dynamic" to change the body of self
//	log(...)  logs its arguments
//
// Observers are registered for the declared events only.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/oliverbestmann/rigid/physics"
	"github.com/oliverbestmann/rigid/scene"
)

var ErrNoEvents = errors.New("script: no events declared")

// modules lists the stdlib modules a script may import. Modules with
// access to the process or the file system are left out.
var modules = []string{"fmt", "math", "text", "times", "rand", "json", "enum"}

// BodyKindSetter changes the kind of an entity's body.
type BodyKindSetter interface {
	SetBodyKind(entityId scene.EntityId, kind physics.BodyKind) error
}

// Program is a compiled script that can be attached to any number of entities.
type Program struct {
	Name   string
	Events physics.EventFlags

	compiled *tengo.Compiled
}

// Load compiles the script and evaluates its event declaration.
func Load(name string, source []byte) (*Program, error) {
	script := tengo.NewScript(source)
	script.SetImports(stdlib.GetModuleMap(modules...))

	_ = script.Add("event", "")
	_ = script.Add("self", 0)
	_ = script.Add("other", 0)
	_ = script.Add("contacts", 0)
	_ = script.Add("kind", "")
	_ = script.Add("log", logFunction(name, scene.NoEntityId))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	// run once without an event to evaluate the declaration
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	events, err := declaredEvents(compiled)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	return &Program{Name: name, Events: events, compiled: compiled}, nil
}

func declaredEvents(compiled *tengo.Compiled) (physics.EventFlags, error) {
	if !compiled.IsDefined("events") {
		return 0, ErrNoEvents
	}

	var values []tengo.Object
	switch obj := compiled.Get("events").Object().(type) {
	case *tengo.Array:
		values = obj.Value
	case *tengo.ImmutableArray:
		values = obj.Value
	default:
		return 0, fmt.Errorf("events must be an array, got %s", obj.TypeName())
	}

	var events physics.EventFlags
	for _, value := range values {
		name, ok := value.(*tengo.String)
		if !ok {
			return 0, fmt.Errorf("event names must be strings, got %s", value.TypeName())
		}

		flag, err := physics.ParseEventName(name.Value)
		if err != nil {
			return 0, err
		}

		events |= flag
	}

	if events == 0 {
		return 0, ErrNoEvents
	}

	return events, nil
}

func logFunction(name string, entityId scene.EntityId) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			text, _ := tengo.ToString(arg)
			parts = append(parts, text)
		}

		slog.Info(strings.Join(parts, " "),
			slog.String("script", name),
			slog.Any("entity", entityId),
		)

		return tengo.UndefinedValue, nil
	}}
}

// Behavior is a Program attached to an entity.
type Behavior struct {
	Program *Program
	Entity  scene.EntityId

	scene     *scene.Scene
	bodies    BodyKindSetter
	compiled  *tengo.Compiled
	observers []scene.ObserverId
}

// Attach registers observers on the entity for every event the program declares.
func (p *Program) Attach(s *scene.Scene, bodies BodyKindSetter, entityId scene.EntityId) (*Behavior, error) {
	compiled := p.compiled.Clone()
	if err := compiled.Set("log", logFunction(p.Name, entityId)); err != nil {
		return nil, fmt.Errorf("script %s: %w", p.Name, err)
	}

	b := &Behavior{
		Program:  p,
		Entity:   entityId,
		scene:    s,
		bodies:   bodies,
		compiled: compiled,
	}

	for _, flag := range physics.EntityEventFlags {
		if p.Events.Has(flag) {
			b.observers = append(b.observers, b.observe(flag))
		}
	}

	return b, nil
}

func (b *Behavior) observe(flag physics.EventFlags) scene.ObserverId {
	switch flag {
	case physics.FlagContact:
		return scene.Observe(b.scene, b.Entity, func(on scene.On[physics.Contact]) {
			b.run(flag, on.Event.Other, len(on.Event.Contacts))
		})

	case physics.FlagCollisionStart:
		return scene.Observe(b.scene, b.Entity, func(on scene.On[physics.CollisionStart]) {
			b.run(flag, on.Event.Other, len(on.Event.Contacts))
		})

	case physics.FlagCollisionEnd:
		return scene.Observe(b.scene, b.Entity, func(on scene.On[physics.CollisionEnd]) {
			b.run(flag, on.Event.Other, 0)
		})

	case physics.FlagTriggerEnter:
		return scene.Observe(b.scene, b.Entity, func(on scene.On[physics.TriggerEnter]) {
			b.run(flag, on.Event.Other, 0)
		})

	case physics.FlagTriggerLeave:
		return scene.Observe(b.scene, b.Entity, func(on scene.On[physics.TriggerLeave]) {
			b.run(flag, on.Event.Other, 0)
		})

	default:
		panic(fmt.Sprintf("not an entity event: %s", flag))
	}
}

// Detach removes all observers of the behavior.
func (b *Behavior) Detach() {
	for _, observerId := range b.observers {
		b.scene.Unobserve(observerId)
	}

	b.observers = nil
}

func (b *Behavior) run(flag physics.EventFlags, other scene.EntityId, contacts int) {
	if err := b.exec(flag, other, contacts); err != nil {
		slog.Warn("Script failed",
			slog.String("script", b.Program.Name),
			slog.Any("entity", b.Entity),
			slog.String("event", flag.String()),
			slog.Any("err", err),
		)
	}
}

func (b *Behavior) exec(flag physics.EventFlags, other scene.EntityId, contacts int) error {
	c := b.compiled

	_ = c.Set("event", flag.String())
	_ = c.Set("self", int64(b.Entity))
	_ = c.Set("other", int64(other))
	_ = c.Set("contacts", contacts)
	_ = c.Set("kind", "")

	if err := c.Run(); err != nil {
		return err
	}

	value := c.Get("kind").String()
	if value == "" {
		return nil
	}

	kind, err := physics.ParseBodyKind(value)
	if err != nil {
		return err
	}

	return b.bodies.SetBodyKind(b.Entity, kind)
}
