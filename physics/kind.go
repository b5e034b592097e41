package physics

import (
	"fmt"
	"strings"
)

type BodyKind uint8

const (
	KindStatic BodyKind = iota
	KindDynamic
	KindKinematic

	// KindTrigger marks a volume that detects overlaps without
	// taking part in the collision response.
	KindTrigger
)

var kindNames = [...]string{
	KindStatic:    "static",
	KindDynamic:   "dynamic",
	KindKinematic: "kinematic",
	KindTrigger:   "trigger",
}

func (k BodyKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("BodyKind(%d)", k)
}

func ParseBodyKind(value string) (BodyKind, error) {
	for kind, name := range kindNames {
		if strings.EqualFold(name, value) {
			return BodyKind(kind), nil
		}
	}

	return 0, fmt.Errorf("physics: unknown body kind %q", value)
}

func (k BodyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BodyKind) UnmarshalText(text []byte) error {
	kind, err := ParseBodyKind(string(text))
	if err != nil {
		return err
	}

	*k = kind
	return nil
}
