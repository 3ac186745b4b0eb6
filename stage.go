package starscroll

import (
	"context"
	"sync"

	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/asset"
	"github.com/akmonengine/starscroll/camera"
	"github.com/akmonengine/starscroll/clip"
	"github.com/akmonengine/starscroll/scroll"
	"github.com/go-gl/mathgl/mgl64"
)

// Stage owns the scene state shared by the scroll handler and the frame loop.
// Both must be called from the same goroutine.
type Stage struct {
	Config Config
	Camera *camera.Camera

	// Nodes created at startup
	Nodes []*actor.Node
	// Slots of the models loaded asynchronously, in config order
	Slots []*actor.Slot
	Stars actor.Starfield

	// Step is the animation phase, advanced by Config.Speed every frame
	Step float64

	Renderer Renderer
	Clock    Clock
	Events   Events

	mapping scroll.Mapping
	// target is written by Scroll only
	target   mgl64.Vec3
	distance float64
	settled  bool
	frames   uint64

	active []*actor.Node
}

// NewStage builds the cube, the moon, the starfield and one pending slot per model.
// A nil renderer discards frames, a nil clock is a wall clock.
func NewStage(config Config, renderer Renderer, clock Clock) (*Stage, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	s := &Stage{
		Config:   config,
		Camera:   camera.New(config.Camera.Position, config.Camera.Fovy, 1, config.Camera.Near, config.Camera.Far),
		Renderer: renderer,
		Clock:    clock,
		Events:   NewEvents(),
		mapping:  config.Mapping(),
	}
	s.target = s.Camera.Position

	spread := config.Stars.Spread
	s.Stars = actor.NewStarfield(config.Stars.Count, actor.Cube(spread), config.Stars.Seed)

	cube := actor.NewNode("cube", config.Cube.Position, config.Cube.Radius)
	cube.Animator = config.Cube.Spin.Animator()
	s.AddNode(cube)

	moon := actor.NewNode("moon", config.Moon.Position, config.Moon.Radius)
	moon.Animator = config.Moon.Spin.Animator()
	s.AddNode(moon)

	for _, model := range config.Models {
		s.AddSlot(actor.NewSlot(model.Name))
	}

	return s, nil
}

// AddNode adds a node to the scene
func (s *Stage) AddNode(node *actor.Node) {
	s.Nodes = append(s.Nodes, node)
}

// RemoveNode removes a node from the scene
func (s *Stage) RemoveNode(node *actor.Node) {
	k := -1
	for i, n := range s.Nodes {
		if n == node {
			k = i
			break
		}
	}

	if k != -1 {
		s.Nodes = append(s.Nodes[:k], s.Nodes[k+1:]...)
	}
}

// AddSlot adds a placeholder for a node still loading
func (s *Stage) AddSlot(slot *actor.Slot) {
	s.Slots = append(s.Slots, slot)
}

// RemoveSlot removes a placeholder and whatever it resolved to
func (s *Stage) RemoveSlot(slot *actor.Slot) {
	k := -1
	for i, sl := range s.Slots {
		if sl == slot {
			k = i
			break
		}
	}

	if k != -1 {
		s.Slots = append(s.Slots[:k], s.Slots[k+1:]...)
	}
	s.Events.forget(slot)
}

// Slot returns the slot of the named model
func (s *Stage) Slot(name string) *actor.Slot {
	for _, slot := range s.Slots {
		if slot.Name == name {
			return slot
		}
	}

	return nil
}

// Node returns the startup node with the given name
func (s *Stage) Node(name string) *actor.Node {
	for _, node := range s.Nodes {
		if node.Name == name {
			return node
		}
	}

	return nil
}

// Target returns the position the camera eases toward
func (s *Stage) Target() mgl64.Vec3 {
	return s.target
}

// Distance returns the camera distance to its target measured at the last frame
func (s *Stage) Distance() float64 {
	return s.distance
}

// Frames returns the number of frames ticked so far
func (s *Stage) Frames() uint64 {
	return s.frames
}

// Scroll recomputes the camera target from a scroll sample.
// It is the only writer of the target and never moves the camera itself.
func (s *Stage) Scroll(m scroll.Metrics) {
	target, err := s.mapping.Sample(m)
	if err != nil {
		Logger().Debug("degenerate scroll metrics", "top", m.Top, "scrollHeight", m.ScrollHeight, "viewportHeight", m.ViewportHeight)
		s.Events.emit(ScrollDegenerateEvent{Metrics: m})
	}
	s.target = target
}

// Resize updates the camera aspect and the renderer to a new viewport
func (s *Stage) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Camera.SetViewport(width, height)
	s.Renderer.Resize(width, height)
}

// Tick produces one frame
func (s *Stage) Tick() {
	target := s.Target()

	// Phase 1: ease the camera, measuring the distance left before the move
	s.distance = s.Camera.DistanceTo(target)
	s.Camera.Ease(target, s.Config.Alpha)
	s.trackSettle(target)

	// Phase 2: advance the oscillator phase
	s.Step += s.Config.Speed

	// Phase 3: procedural animation, skipping models still loading
	s.Events.processSlots(s.Slots)
	active := s.activeNodes()
	phase := actor.Phase{Step: s.Step, Distance: s.distance}
	task(s.Config.Workers, active, func(node *actor.Node) {
		if node.Animator != nil {
			node.Animator.Animate(&node.Transform, phase)
		}
	})

	// Phase 4: animation clips
	delta := s.Clock.Delta()
	task(s.Config.Workers, active, func(node *actor.Node) {
		if node.Clips != nil {
			node.Clips.Advance(delta)
		}
	})

	// Phase 5: render
	s.Renderer.Render(View{Nodes: active, Stars: s.Stars}, s.Camera)

	s.frames++
	s.Events.flush()
}

func (s *Stage) trackSettle(target mgl64.Vec3) {
	if s.distance < s.Config.SettleEpsilon {
		if !s.settled {
			s.settled = true
			s.Events.emit(CameraSettledEvent{Position: s.Camera.Position, Target: target})
			Logger().Info("camera settled", "position", s.Camera.Position)
		}
	} else if s.settled {
		s.settled = false
		s.Events.emit(CameraMovingEvent{Position: s.Camera.Position, Target: target})
	}
}

func (s *Stage) activeNodes() []*actor.Node {
	s.active = append(s.active[:0], s.Nodes...)
	for _, slot := range s.Slots {
		if node, ok := slot.Node(); ok && node != nil {
			s.active = append(s.active, node)
		}
	}

	return s.active
}

// LoadModels requests every configured model once, across calls. Each result is published into
// the model's slot; the returned channel is closed when all requests are done.
func (s *Stage) LoadModels(ctx context.Context, loader asset.Loader) <-chan struct{} {
	var wg sync.WaitGroup
	for _, model := range s.Config.Models {
		slot := s.Slot(model.Name)
		if slot == nil || !slot.Begin() {
			continue
		}

		wg.Add(1)
		done := asset.Request(ctx, loader, model.URL, slot, model.build)
		go func() {
			defer wg.Done()
			<-done
		}()
	}

	all := make(chan struct{})
	go func() {
		wg.Wait()
		close(all)
	}()

	return all
}

// build turns a loaded asset into the node placed as configured
func (m ModelConfig) build(a *asset.Asset) *actor.Node {
	node := actor.NewNode(m.Name, m.Position, m.Radius)
	node.Transform.Rotation = m.Rotation
	if m.Scale != (mgl64.Vec3{}) {
		node.Transform.Scale = m.Scale
	}
	node.Animator = m.Motion.Animator()

	if len(m.Clips) > 0 {
		player := clip.NewPlayer(a.Clips)
		for _, c := range m.Clips {
			loop := clip.LoopRepeat
			if c.Once {
				loop = clip.LoopOnce
			}
			if player.Play(c.Index, loop, c.TimeScale) == nil {
				Logger().Warn("missing animation clip", "model", m.Name, "index", c.Index, "clips", len(a.Clips))
			}
		}
		node.Clips = player
	}

	return node
}
