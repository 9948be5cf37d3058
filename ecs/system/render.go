package system

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

var (
	backgroundColor = color.NRGBA{R: 0x16, G: 0x14, B: 0x1f, A: 0xff}
	groundColor     = color.NRGBA{R: 0x3a, G: 0x33, B: 0x4a, A: 0xff}
	warningColor    = color.NRGBA{R: 0xff, G: 0x3b, B: 0x30, A: 0x30}
	telegraphColor  = color.NRGBA{R: 0xff, G: 0xf1, B: 0x7e, A: 0xff}
)

// RenderSystem draws everything with procedural vector shapes. Entities are
// sorted by shape layer; camera shake offsets the whole scene.
type RenderSystem struct {
	face ebtext.Face

	fillImg *ebiten.Image
	fillVs  []ebiten.Vertex
	fillIs  []uint16

	shake *CameraShakeSystem
}

func NewRenderSystem(shake *CameraShakeSystem) *RenderSystem {
	fillImg := ebiten.NewImage(1, 1)
	fillImg.Fill(color.White)
	return &RenderSystem{
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
		fillImg: fillImg,
		shake:   shake,
	}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil {
		return
	}

	offX, offY := 0.0, 0.0
	if r.shake != nil {
		offX, offY = r.shake.Offset()
	}

	screen.Fill(backgroundColor)
	vector.FillRect(screen, float32(offX), float32(common.GroundY+offY), common.BaseWidth, common.BaseHeight-common.GroundY, groundColor, false)

	r.drawLaneWarnings(w, screen, offX, offY)
	r.drawShapes(w, screen, offX, offY)
	r.drawHealth(w, screen)
	r.drawFloatingText(w, screen)
}

func (r *RenderSystem) drawLaneWarnings(w *ecs.World, screen *ebiten.Image, offX, offY float64) {
	ecs.ForEach(w, component.LaneWarningComponent.Kind(), func(_ ecs.Entity, warn *component.LaneWarning) {
		// Pulse the column alpha as the warning ages out.
		c := warningColor
		if warn.Frames%20 < 10 {
			c.A += 0x28
		}
		x := warn.X - 28 + offX
		vector.FillRect(screen, float32(x), float32(offY), 56, float32(common.GroundY), c, false)
		vector.StrokeLine(screen, float32(warn.X+offX), float32(offY), float32(warn.X+offX), float32(common.GroundY+offY), 1, colornames.Orangered, false)
	})
}

func (r *RenderSystem) drawShapes(w *ecs.World, screen *ebiten.Image, offX, offY float64) {
	type drawable struct {
		e     ecs.Entity
		t     *component.Transform
		shape *component.Shape
	}
	var items []drawable
	ecs.ForEach2(w, component.ShapeComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, shape *component.Shape, t *component.Transform) {
			if shape.Hidden {
				return
			}
			items = append(items, drawable{e: e, t: t, shape: shape})
		})
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].shape.Layer != items[j].shape.Layer {
			return items[i].shape.Layer < items[j].shape.Layer
		}
		return uint64(items[i].e) < uint64(items[j].e)
	})

	for _, it := range items {
		c := it.shape.Color
		if boss, ok := ecs.Get(w, it.e, component.BossComponent.Kind()); ok && boss.Telegraph {
			c = telegraphColor
		}
		x := it.t.X + offX
		y := it.t.Y + offY

		switch it.shape.Kind {
		case component.ShapeCircle:
			vector.FillCircle(screen, float32(x), float32(y), float32(it.shape.W/2), c, true)
		case component.ShapeSpike:
			r.fillTriangle(screen,
				x-it.shape.W/2, y-it.shape.H/2,
				x+it.shape.W/2, y-it.shape.H/2,
				x, y+it.shape.H/2,
				c)
		default:
			vector.FillRect(screen, float32(x-it.shape.W/2), float32(y-it.shape.H/2), float32(it.shape.W), float32(it.shape.H), c, false)
		}
	}
}

func (r *RenderSystem) fillTriangle(screen *ebiten.Image, x1, y1, x2, y2, x3, y3 float64, c color.NRGBA) {
	path := vector.Path{}
	path.MoveTo(float32(x1), float32(y1))
	path.LineTo(float32(x2), float32(y2))
	path.LineTo(float32(x3), float32(y3))
	path.Close()

	r.fillVs, r.fillIs = path.AppendVerticesAndIndicesForFilling(r.fillVs[:0], r.fillIs[:0])
	for i := range r.fillVs {
		r.fillVs[i].ColorR = float32(c.R) / 255
		r.fillVs[i].ColorG = float32(c.G) / 255
		r.fillVs[i].ColorB = float32(c.B) / 255
		r.fillVs[i].ColorA = float32(c.A) / 255
	}
	screen.DrawTriangles(r.fillVs, r.fillIs, r.fillImg, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

func (r *RenderSystem) drawHealth(w *ecs.World, screen *ebiten.Image) {
	e, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	h, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok {
		return
	}
	for i := 0; i < h.Max; i++ {
		c := colornames.Crimson
		if i >= h.Current {
			c = colornames.Dimgray
		}
		vector.FillRect(screen, float32(20+i*28), 20, 20, 20, c, false)
	}
}

func (r *RenderSystem) drawFloatingText(w *ecs.World, screen *ebiten.Image) {
	row := 0
	ecs.ForEach(w, component.FloatingTextComponent.Kind(), func(_ ecs.Entity, ft *component.FloatingText) {
		op := &ebtext.DrawOptions{}
		tw, _ := ebtext.Measure(ft.Message, r.face, 0)
		op.GeoM.Scale(2, 2)
		op.GeoM.Translate(common.BaseWidth/2-tw, 120+float64(row)*30)
		op.ColorScale.ScaleWithColor(color.White)
		ebtext.Draw(screen, ft.Message, r.face, op)
		row++
	})
}

// DrawDebug prints the live scheduler and arena state for the -debug flag.
func (r *RenderSystem) DrawDebug(screen *ebiten.Image, lines []string) {
	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(8, float64(common.BaseHeight-14*(len(lines)-i)))
		op.ColorScale.ScaleWithColor(colornames.Lightgreen)
		ebtext.Draw(screen, line, r.face, op)
	}
}
