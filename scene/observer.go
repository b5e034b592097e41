package scene

import (
	"reflect"
	"slices"
)

// On is passed to an observer when an event of type E is triggered.
type On[E any] struct {
	// Target is the entity the event was triggered on,
	// or NoEntityId for global events.
	Target EntityId
	Event  E
}

type ObserverId uint64

type observerKey struct {
	eventType reflect.Type
	target    EntityId
}

type observer struct {
	id       ObserverId
	callback func(target EntityId, event any)
}

// Observe registers fn to be called for every event of type E
// triggered on the target entity.
func Observe[E any](s *Scene, target EntityId, fn func(On[E])) ObserverId {
	if fn == nil {
		panic("observer callback must not be nil")
	}

	key := observerKey{eventType: reflect.TypeFor[E](), target: target}

	s.observerIdSeq += 1
	obs := &observer{
		id: s.observerIdSeq,
		callback: func(target EntityId, event any) {
			fn(On[E]{Target: target, Event: event.(E)})
		},
	}

	// never mutate a slice in place, a trigger might currently iterate it
	s.observers[key] = append(slices.Clip(s.observers[key]), obs)
	s.observerKeys[obs.id] = key

	return obs.id
}

// ObserveGlobal registers fn for events of type E that are triggered without a target.
func ObserveGlobal[E any](s *Scene, fn func(On[E])) ObserverId {
	return Observe(s, NoEntityId, fn)
}

// CountObservers returns the number of observers for events of type E on the target.
func CountObservers[E any](s *Scene, target EntityId) int {
	return s.CountObserversOf(target, reflect.TypeFor[E]())
}

// Unobserve removes a previously registered observer. Removing an unknown
// observer is a no-op.
func (s *Scene) Unobserve(observerId ObserverId) bool {
	key, ok := s.observerKeys[observerId]
	if !ok {
		return false
	}

	delete(s.observerKeys, observerId)

	remaining := slices.DeleteFunc(slices.Clone(s.observers[key]), func(obs *observer) bool {
		return obs.id == observerId
	})

	if len(remaining) == 0 {
		delete(s.observers, key)
	} else {
		s.observers[key] = remaining
	}

	return true
}

// Trigger calls all observers registered for the type of the event on the target.
// A target of NoEntityId reaches only global observers, any other target reaches only the
// observers scoped to that entity. Observers may register or remove observers while
// being called. Changes take effect with the next trigger.
func (s *Scene) Trigger(target EntityId, event any) {
	key := observerKey{eventType: reflect.TypeOf(event), target: target}

	for _, obs := range s.observers[key] {
		obs.callback(target, event)
	}
}
