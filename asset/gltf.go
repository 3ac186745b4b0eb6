package asset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/akmonengine/starscroll/clip"
	"github.com/qmuntal/gltf"
)

// GLTFLoader reads .gltf and .glb files from disk
type GLTFLoader struct {
	// Root is prepended to relative URLs
	Root string
}

func (l GLTFLoader) Load(ctx context.Context, url string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := url
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Asset{
		URL:   url,
		Name:  strings.TrimSuffix(filepath.Base(url), filepath.Ext(url)),
		Nodes: len(doc.Nodes),
		Clips: Clips(doc),
	}, nil
}

// Clips lists the animations of doc. A clip lasts until the last keyframe
// of its longest sampler.
func Clips(doc *gltf.Document) []clip.Clip {
	clips := make([]clip.Clip, 0, len(doc.Animations))
	for _, animation := range doc.Animations {
		var duration float64
		for _, sampler := range animation.Samplers {
			if int(sampler.Input) >= len(doc.Accessors) {
				continue
			}
			accessor := doc.Accessors[sampler.Input]
			if len(accessor.Max) > 0 {
				duration = max(duration, float64(accessor.Max[0]))
			}
		}
		clips = append(clips, clip.Clip{Name: animation.Name, Duration: duration})
	}

	return clips
}
