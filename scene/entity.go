package scene

import (
	"log/slog"
	"strconv"

	"github.com/oliverbestmann/rigid/gm"
)

type EntityId uint64

// NoEntityId never identifies an entity. Observers registered for it are global.
const NoEntityId EntityId = 0

func (e EntityId) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e EntityId) LogValue() slog.Value {
	return slog.StringValue(e.String())
}

type Transform struct {
	Translation gm.Vec3
	Rotation    gm.Rad
}

type Entity struct {
	Id        EntityId
	Name      string
	Enabled   bool
	Transform Transform
}
