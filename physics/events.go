package physics

import "github.com/oliverbestmann/rigid/scene"

// Contact is raised on an entity for every step it touches another body.
type Contact struct {
	ContactResult
}

// CollisionStart is raised on an entity when it starts touching another body.
type CollisionStart struct {
	ContactResult
}

// CollisionEnd is raised on an entity after it stopped touching another body.
type CollisionEnd struct {
	Other scene.EntityId
}

// TriggerEnter is raised when a body enters a trigger volume. It is raised on both
// the trigger and the body.
type TriggerEnter struct {
	Other scene.EntityId
}

// TriggerLeave is raised when a body leaves a trigger volume.
type TriggerLeave struct {
	Other scene.EntityId
}

// GlobalContact is raised without a target once for every contact point between
// two bodies. A is the entity with the lower id, the contact point is oriented from A.
type GlobalContact struct {
	SingleContactResult
}
