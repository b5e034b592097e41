package gm

import (
	"fmt"
	"math"
)

// Vec3 is a vector in world space. Planar simulations leave Z at zero.
type Vec3 struct {
	X, Y, Z float64
}

var Vec3Zero = Vec3{}

func Vec3Of(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(other Vec3) Vec3 {
	v.X += other.X
	v.Y += other.Y
	v.Z += other.Z
	return v
}

func (v Vec3) Sub(other Vec3) Vec3 {
	v.X -= other.X
	v.Y -= other.Y
	v.Z -= other.Z
	return v
}

func (v Vec3) Mul(scalar float64) Vec3 {
	v.X *= scalar
	v.Y *= scalar
	v.Z *= scalar
	return v
}

// Neg returns the vector pointing in the opposite direction.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns a unit length copy of v. The zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}

	return v.Mul(1 / length)
}

// DistanceTo returns the euclidean distance between both points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Length()
}

// XY drops the Z component.
func (v Vec3) XY() (x, y float64) {
	return v.X, v.Y
}

func (v Vec3) String() string {
	return fmt.Sprintf("vec3(x=%v, y=%v, z=%v)", v.X, v.Y, v.Z)
}
