package physics

import (
	"fmt"
	"strings"
)

// EventFlags is a set of event categories an entity wants to receive.
type EventFlags uint8

const (
	FlagContact EventFlags = 1 << iota
	FlagCollisionStart
	FlagCollisionEnd
	FlagTriggerEnter
	FlagTriggerLeave

	// FlagGlobalContact is set on every entity while at least one
	// global contact observer exists.
	FlagGlobalContact
)

// EntityEventFlags lists the categories that can be observed on a single entity.
var EntityEventFlags = [...]EventFlags{
	FlagContact,
	FlagCollisionStart,
	FlagCollisionEnd,
	FlagTriggerEnter,
	FlagTriggerLeave,
}

const pairFlags = FlagCollisionStart | FlagCollisionEnd | FlagTriggerEnter | FlagTriggerLeave

var flagNames = map[EventFlags]string{
	FlagContact:        "contact",
	FlagCollisionStart: "collisionstart",
	FlagCollisionEnd:   "collisionend",
	FlagTriggerEnter:   "triggerenter",
	FlagTriggerLeave:   "triggerleave",
	FlagGlobalContact:  "globalcontact",
}

func (f EventFlags) Has(other EventFlags) bool {
	return f&other == other
}

func (f EventFlags) String() string {
	if f == 0 {
		return "none"
	}

	var names []string
	for bit := FlagContact; bit <= FlagGlobalContact; bit <<= 1 {
		if f&bit != 0 {
			names = append(names, flagNames[bit])
		}
	}

	return strings.Join(names, "|")
}

// ParseEventName returns the flag for one of the event names
// "contact", "collisionstart", "collisionend", "triggerenter" and "triggerleave".
func ParseEventName(name string) (EventFlags, error) {
	for _, flag := range EntityEventFlags {
		if flagNames[flag] == name {
			return flag, nil
		}
	}

	return 0, fmt.Errorf("physics: unknown event %q", name)
}
