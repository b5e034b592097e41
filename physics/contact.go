package physics

import (
	"slices"

	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/scene"
)

// ContactPoint describes a point of contact as seen from one of the two entities.
type ContactPoint struct {
	// LocalPoint and LocalPointOther are in local space of their entities.
	LocalPoint      gm.Vec3
	LocalPointOther gm.Vec3

	Point      gm.Vec3
	PointOther gm.Vec3

	// Normal points away from this entity, towards the other one.
	Normal gm.Vec3
}

// Mirrored returns the same contact as seen from the other entity.
func (c ContactPoint) Mirrored() ContactPoint {
	return ContactPoint{
		LocalPoint:      c.LocalPointOther,
		LocalPointOther: c.LocalPoint,
		Point:           c.PointOther,
		PointOther:      c.Point,
		Normal:          c.Normal.Neg(),
	}
}

// ContactResult is delivered to the entities of a touching pair.
//
// Contacts is only valid while the event is dispatched, use Clone
// to keep it longer.
type ContactResult struct {
	Other    scene.EntityId
	Contacts []ContactPoint
}

func (r ContactResult) Clone() ContactResult {
	r.Contacts = slices.Clone(r.Contacts)
	return r
}

// SingleContactResult is a single contact point of a pair, delivered to global observers.
type SingleContactResult struct {
	A, B scene.EntityId
	ContactPoint
}

func appendContactPoints(buf []ContactPoint, points []ManifoldPoint, mirrored bool) []ContactPoint {
	for _, p := range points {
		point := ContactPoint{
			LocalPoint:      p.LocalA,
			LocalPointOther: p.LocalB,
			Point:           p.WorldA,
			PointOther:      p.WorldB,
			Normal:          p.Normal,
		}

		if mirrored {
			point = point.Mirrored()
		}

		buf = append(buf, point)
	}

	return buf
}
