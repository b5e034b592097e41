package physics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var allKinds = []BodyKind{KindStatic, KindDynamic, KindKinematic, KindTrigger}

const allFlags = FlagContact | FlagCollisionStart | FlagCollisionEnd |
	FlagTriggerEnter | FlagTriggerLeave | FlagGlobalContact

func TestClassify_StaticStaticIsEmpty(t *testing.T) {
	for _, flags := range []EventFlags{0, FlagContact, allFlags} {
		require.Zero(t, Classify(flags, KindStatic, KindStatic))
	}
}

func TestClassify_AllPermutations(t *testing.T) {
	for _, kindA := range allKinds {
		for _, kindB := range allKinds {
			flags := Classify(allFlags, kindA, kindB)

			bucketA, bucketB := bucketOf(kindA), bucketOf(kindB)

			switch {
			case bucketA == bucketStatic && bucketB == bucketStatic:
				require.Zero(t, flags, "%s vs %s", kindA, kindB)

			case bucketA == bucketTrigger && bucketB == bucketTrigger:
				require.Zero(t, flags, "%s vs %s", kindA, kindB)

			case bucketA == bucketTrigger || bucketB == bucketTrigger:
				// triggers never report collisions
				require.Equal(t, triggerEvents, flags, "%s vs %s", kindA, kindB)

			default:
				require.Equal(t, collisionEvents, flags, "%s vs %s", kindA, kindB)
			}

			// the flags of the row body always limit the result
			require.Zero(t, Classify(0, kindA, kindB))
			require.Equal(t, flags&FlagContact, Classify(FlagContact, kindA, kindB))
		}
	}
}

func TestClassify_Triggers(t *testing.T) {
	require.Equal(t, triggerEvents, Classify(allFlags, KindTrigger, KindDynamic))
	require.Equal(t, triggerEvents, Classify(allFlags, KindTrigger, KindKinematic))
	require.Equal(t, triggerEvents, Classify(allFlags, KindDynamic, KindTrigger))

	require.Equal(t, triggerEvents, Classify(allFlags, KindTrigger, KindStatic))
	require.Equal(t, triggerEvents, Classify(allFlags, KindStatic, KindTrigger))

	// only the flags the static body listens for are reported
	require.Equal(t, FlagTriggerLeave, Classify(FlagTriggerLeave|FlagContact, KindStatic, KindTrigger))

	require.Zero(t, Classify(allFlags, KindTrigger, KindTrigger))
}

func TestClassify_IsSymmetricPerBucket(t *testing.T) {
	for _, kindA := range allKinds {
		for _, kindB := range allKinds {
			require.Equal(t,
				Classify(allFlags, kindA, kindB),
				Classify(allFlags, kindB, kindA),
				"%s vs %s", kindA, kindB,
			)
		}
	}
}

func TestEventFlags_String(t *testing.T) {
	require.Equal(t, "none", EventFlags(0).String())
	require.Equal(t, "contact|triggerleave", (FlagContact | FlagTriggerLeave).String())

	flag, err := ParseEventName("collisionend")
	require.NoError(t, err)
	require.Equal(t, FlagCollisionEnd, flag)

	_, err = ParseEventName("explode")
	require.Error(t, err)
}

func TestBodyKind_Text(t *testing.T) {
	var kind BodyKind
	require.NoError(t, kind.UnmarshalText([]byte("Kinematic")))
	require.Equal(t, KindKinematic, kind)

	text, err := KindTrigger.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "trigger", string(text))

	require.Error(t, kind.UnmarshalText([]byte("liquid")))
}
