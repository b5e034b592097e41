package gm

import "math"

// Rad is an angle in radian. Rotations around the Z axis use it directly.
type Rad float64

func DegToRad(deg float64) Rad {
	return Rad(deg * math.Pi / 180)
}

func (r Rad) Degrees() float64 {
	return float64(r) * 180 / math.Pi
}

func (r Rad) Radians() float64 {
	return float64(r)
}

// Normalized wraps the angle into the range [-π, π).
func (r Rad) Normalized() Rad {
	angle := math.Mod(float64(r)+math.Pi, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}

	return Rad(angle - math.Pi)
}

// DifferenceTo returns the shortest signed rotation from other to r.
func (r Rad) DifferenceTo(other Rad) Rad {
	return (r - other).Normalized()
}

// Clamp limits the angle to the closed range [lo, hi].
func (r Rad) Clamp(lo, hi Rad) Rad {
	return max(lo, min(hi, r))
}
