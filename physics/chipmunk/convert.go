package chipmunk

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
)

// The simulation runs in the XY plane, Z is dropped.

func toVector(v gm.Vec3) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func toVec3(v cp.Vector) gm.Vec3 {
	return gm.Vec3{X: v.X, Y: v.Y}
}

func transformOf(body *cp.Body) scene.Transform {
	return scene.Transform{
		Translation: toVec3(body.Position()),
		Rotation:    gm.Rad(body.Angle()),
	}
}
