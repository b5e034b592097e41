package physics

type bucket uint8

const (
	bucketStatic bucket = iota
	bucketMoving
	bucketTrigger
)

func bucketOf(kind BodyKind) bucket {
	switch kind {
	case KindDynamic, KindKinematic:
		return bucketMoving
	case KindTrigger:
		return bucketTrigger
	default:
		return bucketStatic
	}
}

const (
	collisionEvents = FlagGlobalContact | FlagContact | FlagCollisionStart | FlagCollisionEnd
	triggerEvents   = FlagTriggerEnter | FlagTriggerLeave
)

// classificationTable holds the events that are possible for the row body
// when it touches the column body. Two static bodies never generate events.
// A trigger overlapping a static or moving body only reports enter and leave.
var classificationTable = [3][3]EventFlags{
	bucketStatic:  {bucketMoving: collisionEvents, bucketTrigger: triggerEvents},
	bucketMoving:  {bucketStatic: collisionEvents, bucketMoving: collisionEvents, bucketTrigger: triggerEvents},
	bucketTrigger: {bucketStatic: triggerEvents, bucketMoving: triggerEvents},
}

// Classify returns the events that should be raised on body A for a contact
// between a body of kindA, listening for flagsA, and a body of kindB.
// The flags of body B do not participate.
func Classify(flagsA EventFlags, kindA, kindB BodyKind) EventFlags {
	return flagsA & classificationTable[bucketOf(kindA)][bucketOf(kindB)]
}
