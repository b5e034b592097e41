package chipmunk

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp/v2"
)

// DebugDraw draws all shapes, constraints and contacts of the space onto
// the image. worldToScreen maps simulation coordinates to pixels.
func (s *Space) DebugDraw(image *ebiten.Image, worldToScreen ebiten.GeoM) {
	cp.DrawSpace(s.space, debugImage{Image: image, Transform: worldToScreen})
}

type debugImage struct {
	Image     *ebiten.Image
	Transform ebiten.GeoM
}

func (d debugImage) apply(v cp.Vector) (float32, float32) {
	x, y := d.Transform.Apply(v.X, v.Y)
	return float32(x), float32(y)
}

// scale converts a length in world units to pixels.
func (d debugImage) scale(length float64) float32 {
	x0, y0 := d.Transform.Apply(0, 0)
	x1, y1 := d.Transform.Apply(length, 0)
	return float32(math.Hypot(x1-x0, y1-y0))
}

func (d debugImage) draw(p vector.Path, width float32, outline cp.FColor, fill cp.FColor) {
	dpo := &vector.DrawPathOptions{}
	dpo.ColorScale.Scale(fill.R*fill.A, fill.G*fill.A, fill.B*fill.A, fill.A)
	vector.FillPath(d.Image, &p, &vector.FillOptions{}, dpo)

	*dpo = vector.DrawPathOptions{}
	dpo.ColorScale.Scale(outline.R*outline.A, outline.G*outline.A, outline.B*outline.A, outline.A)
	vector.StrokePath(d.Image, &p, &vector.StrokeOptions{Width: width}, dpo)
}

func (d debugImage) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	x, y := d.apply(pos)

	// a spoke shows the rotation of the body
	sx, sy := d.apply(pos.Add(cp.ForAngle(angle).Mult(radius)))

	var p vector.Path
	p.Arc(x, y, d.scale(radius), 0, math.Pi*2, vector.Clockwise)
	p.MoveTo(x, y)
	p.LineTo(sx, sy)

	d.draw(p, 1, outline, fill)
}

func (d debugImage) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.DrawFatSegment(a, b, 0, fill, cp.FColor{}, data)
}

func (d debugImage) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	ax, ay := d.apply(a)
	bx, by := d.apply(b)

	var p vector.Path
	p.MoveTo(ax, ay)
	p.LineTo(bx, by)

	d.draw(p, max(1, 2*d.scale(radius)), outline, cp.FColor{})
}

func (d debugImage) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count == 0 {
		return
	}

	var p vector.Path
	p.MoveTo(d.apply(verts[0]))
	for _, vert := range verts[1:count] {
		p.LineTo(d.apply(vert))
	}

	p.Close()

	d.draw(p, max(1, 2*d.scale(radius)), outline, fill)
}

func (d debugImage) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.apply(pos)

	var p vector.Path
	p.Arc(x, y, float32(size/2), 0, math.Pi*2, vector.Clockwise)
	d.draw(p, 1, fill, fill)
}

func (d debugImage) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS | cp.DRAW_COLLISION_POINTS
}

func (d debugImage) OutlineColor() cp.FColor {
	return cp.FColor{R: 1, G: 1, B: 1, A: 1}
}

func (d debugImage) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch {
	case shape.Sensor():
		return cp.FColor{B: 1, A: 0.25}

	case shape.Body().GetType() == cp.BODY_STATIC:
		return cp.FColor{R: 0.5, G: 0.5, B: 0.5, A: 1}

	default:
		return cp.FColor{G: 1, A: 1}
	}
}

func (d debugImage) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.75, A: 1}
}

func (d debugImage) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, A: 1}
}

func (d debugImage) Data() interface{} {
	return nil
}
