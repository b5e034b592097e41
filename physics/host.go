package physics

import (
	"github.com/oliverbestmann/rigid/scene"
)

// Host is the entity side of the engine. It knows about listeners and
// owns the entity transforms.
type Host interface {
	// CountListeners returns the number of listeners for the event category
	// on the entity. NoEntityId asks for global listeners.
	CountListeners(entityId scene.EntityId, flag EventFlags) int

	// Emit delivers the event to the listeners of the entity.
	Emit(entityId scene.EntityId, event any)

	Enabled(entityId scene.EntityId) bool
	Transform(entityId scene.EntityId) (scene.Transform, bool)
	SetTransform(entityId scene.EntityId, transform scene.Transform)
}

// SceneHost connects the engine to the observers and entities of a scene.Scene.
type SceneHost struct {
	Scene *scene.Scene
}

func (h SceneHost) CountListeners(entityId scene.EntityId, flag EventFlags) int {
	switch flag {
	case FlagContact:
		return scene.CountObservers[Contact](h.Scene, entityId)
	case FlagCollisionStart:
		return scene.CountObservers[CollisionStart](h.Scene, entityId)
	case FlagCollisionEnd:
		return scene.CountObservers[CollisionEnd](h.Scene, entityId)
	case FlagTriggerEnter:
		return scene.CountObservers[TriggerEnter](h.Scene, entityId)
	case FlagTriggerLeave:
		return scene.CountObservers[TriggerLeave](h.Scene, entityId)
	case FlagGlobalContact:
		return scene.CountObservers[GlobalContact](h.Scene, scene.NoEntityId)
	default:
		return 0
	}
}

func (h SceneHost) Emit(entityId scene.EntityId, event any) {
	h.Scene.Trigger(entityId, event)
}

func (h SceneHost) Enabled(entityId scene.EntityId) bool {
	entity, ok := h.Scene.Get(entityId)
	return ok && entity.Enabled
}

func (h SceneHost) Transform(entityId scene.EntityId) (scene.Transform, bool) {
	return h.Scene.Transform(entityId)
}

func (h SceneHost) SetTransform(entityId scene.EntityId, transform scene.Transform) {
	h.Scene.SetTransform(entityId, transform)
}
