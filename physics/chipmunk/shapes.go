package chipmunk

import (
	"fmt"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/rigid/physics"
)

func makeShape(body *cp.Body, shape physics.Shape) (*cp.Shape, error) {
	switch shape.Kind {
	case physics.ShapeCircle:
		if shape.Radius <= 0 {
			return nil, fmt.Errorf("chipmunk: circle radius must be positive, got %v", shape.Radius)
		}

		return cp.NewCircle(body, shape.Radius, cp.Vector{}), nil

	case physics.ShapeBox:
		w, h := 2*shape.HalfExtents.X, 2*shape.HalfExtents.Y
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("chipmunk: box extents must be positive, got %v", shape.HalfExtents)
		}

		return cp.NewBox(body, w, h, 0), nil

	default:
		return nil, fmt.Errorf("chipmunk: unsupported shape kind %d", shape.Kind)
	}
}

func momentOf(mass float64, shape physics.Shape) float64 {
	switch shape.Kind {
	case physics.ShapeCircle:
		return cp.MomentForCircle(mass, 0, shape.Radius, cp.Vector{})
	default:
		return cp.MomentForBox(mass, 2*shape.HalfExtents.X, 2*shape.HalfExtents.Y)
	}
}
