package main

import (
	"image/color"
	"math"

	"github.com/akmonengine/starscroll"
	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/camera"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	background = color.RGBA{0x05, 0x07, 0x1a, 0xff}
	starColor  = color.RGBA{0xf7, 0xeb, 0xda, 0xff}
	nodeColors = map[string]color.RGBA{
		"cube": {0xff, 0x63, 0x47, 0xff},
		"moon": {0xc8, 0xc8, 0xc8, 0xff},
	}
	modelColor = color.RGBA{0x8e, 0xc0, 0xff, 0xff}
)

type projectedNode struct {
	name   string
	center mgl64.Vec3
	axis   mgl64.Vec3
	radius float64
}

// pointRenderer keeps the last frame handed by the stage and draws it as
// projected discs when ebiten asks for a redraw.
type pointRenderer struct {
	cam    camera.Camera
	nodes  []projectedNode
	stars  []mgl64.Vec3
	width  int
	height int
}

func (r *pointRenderer) Render(view starscroll.View, cam *camera.Camera) {
	r.cam = *cam
	r.stars = view.Stars.Stars
	r.nodes = r.nodes[:0]
	for _, node := range view.Nodes {
		r.nodes = append(r.nodes, project(node))
	}
}

func (r *pointRenderer) Resize(width, height int) {
	r.width, r.height = width, height
}

func project(node *actor.Node) projectedNode {
	return projectedNode{
		name:   node.Name,
		center: node.Transform.Position,
		axis:   node.Transform.Apply(mgl64.Vec3{node.Radius / max(node.Transform.Scale.X(), 1e-6), 0, 0}),
		radius: node.Radius,
	}
}

func (r *pointRenderer) draw(screen *ebiten.Image) {
	screen.Fill(background)
	if r.width == 0 || r.height == 0 {
		return
	}

	for _, star := range r.stars {
		x, y, depth, ok := r.cam.Project(star, r.width, r.height)
		if !ok {
			continue
		}
		size := float32(math.Max(0.5, 40/depth))
		vector.DrawFilledCircle(screen, float32(x), float32(y), size, starColor, true)
	}

	focal := float64(r.height) / 2 / math.Tan(mgl64.DegToRad(r.cam.Fovy)/2)
	for _, node := range r.nodes {
		x, y, depth, ok := r.cam.Project(node.center, r.width, r.height)
		if !ok {
			continue
		}
		clr, found := nodeColors[node.name]
		if !found {
			clr = modelColor
		}
		radius := float32(node.radius * focal / depth)
		vector.DrawFilledCircle(screen, float32(x), float32(y), radius, clr, true)

		if ax, ay, _, ok := r.cam.Project(node.axis, r.width, r.height); ok {
			vector.StrokeLine(screen, float32(x), float32(y), float32(ax), float32(ay), 2, background, true)
		}
	}
}
