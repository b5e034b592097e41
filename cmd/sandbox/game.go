package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/oliverbestmann/rigid/gm"
	"github.com/oliverbestmann/rigid/physics"
	"github.com/oliverbestmann/rigid/physics/chipmunk"
	"github.com/oliverbestmann/rigid/scene"
)

const pixelsPerMeter = 40

// length of the ray cast down from the mouse cursor
const rayLength = 50

var background = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff}

type game struct {
	scene  *scene.Scene
	engine *physics.Engine
	space  *chipmunk.Space

	configChanges <-chan string

	paused bool

	worldToScreen ebiten.GeoM
	cursor        gm.Vec3
	hit           *physics.RaycastResult
}

func (g *game) Update() error {
	g.reloadConfig()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	if !g.paused {
		// the engine warns once if the simulation is missing, keep the loop running
		if err := g.engine.Advance(1.0 / float64(ebiten.TPS())); err != nil {
			slog.Debug("Physics frame skipped", slog.Any("err", err))
		}
	}

	g.pick()

	return nil
}

func (g *game) reloadConfig() {
	for {
		select {
		case path, ok := <-g.configChanges:
			if !ok {
				g.configChanges = nil
				return
			}

			config, err := physics.LoadConfig(path)
			if err == nil {
				err = g.engine.ApplyConfig(config)
			}

			if err != nil {
				slog.Warn("Failed to reload physics config", slog.String("path", path), slog.Any("err", err))
				continue
			}

			slog.Info("Physics config reloaded",
				slog.String("path", path),
				slog.String("gravity", config.Gravity.String()),
			)

		default:
			return
		}
	}
}

// pick casts a ray down from the cursor. A left click despawns the entity
// that was hit, a right click makes it dynamic.
func (g *game) pick() {
	screenToWorld := g.worldToScreen
	screenToWorld.Invert()

	x, y := ebiten.CursorPosition()
	wx, wy := screenToWorld.Apply(float64(x), float64(y))
	g.cursor = gm.Vec3{X: wx, Y: wy}

	g.hit = nil
	g.engine.RaycastFirstFunc(g.cursor, g.cursor.Add(gm.Vec3{Y: -rayLength}), func(result physics.RaycastResult) {
		g.hit = &result
	})

	if g.hit == nil {
		return
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.scene.Despawn(g.hit.Entity)
		g.hit = nil

	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		if err := g.engine.SetBodyKind(g.hit.Entity, physics.KindDynamic); err != nil {
			slog.Warn("Failed to change body kind", slog.Any("entity", g.hit.Entity), slog.Any("err", err))
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	if g.space != nil {
		g.space.DebugDraw(screen, g.worldToScreen)
	}

	if g.hit != nil {
		g.drawRay(screen, g.cursor, g.hit.Point)
	}

	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *game) drawRay(screen *ebiten.Image, from, to gm.Vec3) {
	x0, y0 := g.worldToScreen.Apply(from.X, from.Y)
	x1, y1 := g.worldToScreen.Apply(to.X, to.Y)

	var p vector.Path
	p.MoveTo(float32(x0), float32(y0))
	p.LineTo(float32(x1), float32(y1))

	dpo := &vector.DrawPathOptions{}
	dpo.ColorScale.Scale(1, 1, 0, 1)
	vector.StrokePath(screen, &p, &vector.StrokeOptions{Width: 1}, dpo)
}

func (g *game) hud() string {
	stats := g.engine.Stats()

	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "TPS %.1f  frame %d", ebiten.ActualTPS(), g.engine.Frame())
	if g.paused {
		b.WriteString("  [paused]")
	}

	_, _ = fmt.Fprintf(&b, "\nsubsteps %d  manifolds %d  skipped %d  pairs %d\n",
		stats.SubSteps, stats.Manifolds, stats.SkippedManifolds, g.engine.TrackedPairOwners())

	for _, flag := range physics.EntityEventFlags {
		_, _ = fmt.Fprintf(&b, "%s %d  ", flag, stats.Events[flag])
	}

	b.WriteString("\n")

	for idx, timings := range stats.Phases {
		_, _ = fmt.Fprintf(&b, "%s %s  ", physics.Phase(idx), timings.MovingAverage)
	}

	if g.hit != nil {
		name := g.hit.Entity.String()
		if entity, ok := g.scene.Get(g.hit.Entity); ok {
			name = entity.Name
		}

		_, _ = fmt.Fprintf(&b, "\n\nhit %s at %s, flags %s", name, g.hit.Point, g.engine.Flags(g.hit.Entity))
	}

	b.WriteString("\n\nspace: pause  left click: despawn  right click: make dynamic")

	return b.String()
}

func (g *game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	// y points up in the simulation
	g.worldToScreen.Reset()
	g.worldToScreen.Scale(pixelsPerMeter, -pixelsPerMeter)
	g.worldToScreen.Translate(float64(outsideWidth)/2, float64(outsideHeight)*0.85)

	return outsideWidth, outsideHeight
}
