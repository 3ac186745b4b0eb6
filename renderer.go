package starscroll

import (
	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/camera"
)

// View is the scene state handed to the renderer for one frame
type View struct {
	Nodes []*actor.Node
	Stars actor.Starfield
}

// Renderer displays frames. Render must not retain view past the call.
type Renderer interface {
	Render(view View, cam *camera.Camera)
	Resize(width, height int)
}

type nopRenderer struct{}

func (nopRenderer) Render(View, *camera.Camera) {}
func (nopRenderer) Resize(int, int)             {}

// Size is a viewport size in pixels
type Size struct {
	Width  int
	Height int
}
