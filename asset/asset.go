// Package asset loads 3D models and publishes them into actor slots.
package asset

import (
	"context"
	"fmt"

	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/clip"
)

// Asset is the decoded content of a model file the stage cares about
type Asset struct {
	URL   string
	Name  string
	Nodes int
	Clips []clip.Clip
}

// Loader decodes a model from its URL. Load is called once per asset, never retried.
type Loader interface {
	Load(ctx context.Context, url string) (*Asset, error)
}

// LoadError reports a model that failed to load
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("asset: load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// BuildFunc turns a loaded asset into the node published in the slot
type BuildFunc func(asset *Asset) *actor.Node

// Request loads url in its own goroutine and publishes the result into slot.
// The returned channel is closed once the slot is resolved or failed.
func Request(ctx context.Context, loader Loader, url string, slot *actor.Slot, build BuildFunc) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		a, err := loader.Load(ctx, url)
		if err == nil && a == nil {
			err = fmt.Errorf("loader returned no asset")
		}
		if err != nil {
			slot.Fail(&LoadError{URL: url, Err: err})
			return
		}

		slot.Resolve(build(a))
	}()

	return done
}
