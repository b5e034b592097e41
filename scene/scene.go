package scene

import (
	"log/slog"
	"reflect"

	"github.com/kamstrup/intmap"
)

// Scene holds the entities of a simulation and the observers listening
// for events on them.
type Scene struct {
	noCopy noCopy

	entityIdSeq EntityId
	entities    *intmap.Map[EntityId, *Entity]

	observerIdSeq ObserverId
	observers     map[observerKey][]*observer
	observerKeys  map[ObserverId]observerKey

	despawnHooks []func(EntityId)
}

func New() *Scene {
	return &Scene{
		entities:     intmap.New[EntityId, *Entity](64),
		observers:    map[observerKey][]*observer{},
		observerKeys: map[ObserverId]observerKey{},
	}
}

// Spawn creates a new enabled entity and returns its id.
func (s *Scene) Spawn(name string, transform Transform) EntityId {
	s.entityIdSeq += 1
	entityId := s.entityIdSeq

	s.entities.Put(entityId, &Entity{
		Id:        entityId,
		Name:      name,
		Enabled:   true,
		Transform: transform,
	})

	return entityId
}

func (s *Scene) Get(entityId EntityId) (*Entity, bool) {
	return s.entities.Get(entityId)
}

func (s *Scene) Len() int {
	return s.entities.Len()
}

// Each calls fn for every entity until fn returns false.
// Entities must not be spawned or despawned during iteration.
func (s *Scene) Each(fn func(entity *Entity) bool) {
	s.entities.ForEach(func(_ EntityId, entity *Entity) bool {
		return fn(entity)
	})
}

// OnDespawn registers a hook that runs before an entity is removed.
func (s *Scene) OnDespawn(hook func(entityId EntityId)) {
	s.despawnHooks = append(s.despawnHooks, hook)
}

// Despawn removes the entity together with all observers scoped to it.
func (s *Scene) Despawn(entityId EntityId) bool {
	if !s.entities.Has(entityId) {
		slog.Warn("Cannot despawn entity, does not exist", slog.Any("entity", entityId))
		return false
	}

	for _, hook := range s.despawnHooks {
		hook(entityId)
	}

	for observerId, key := range s.observerKeys {
		if key.target == entityId {
			s.Unobserve(observerId)
		}
	}

	s.entities.Del(entityId)
	return true
}

// Transform returns the transform of the given entity.
func (s *Scene) Transform(entityId EntityId) (Transform, bool) {
	entity, ok := s.entities.Get(entityId)
	if !ok {
		return Transform{}, false
	}

	return entity.Transform, true
}

func (s *Scene) SetTransform(entityId EntityId, transform Transform) {
	if entity, ok := s.entities.Get(entityId); ok {
		entity.Transform = transform
	}
}

// CountObserversOf returns the number of observers for the given event type
// on the target. Pass NoEntityId to count global observers.
func (s *Scene) CountObserversOf(target EntityId, eventType reflect.Type) int {
	return len(s.observers[observerKey{eventType: eventType, target: target}])
}
