package starscroll

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/asset"
	"github.com/akmonengine/starscroll/camera"
	"github.com/akmonengine/starscroll/clip"
	"github.com/akmonengine/starscroll/scroll"
	"github.com/go-gl/mathgl/mgl64"
)

type recordingRenderer struct {
	frames  int
	last    View
	camera  mgl64.Vec3
	resizes []Size
}

func (r *recordingRenderer) Render(view View, cam *camera.Camera) {
	r.frames++
	r.last = View{Nodes: append([]*actor.Node(nil), view.Nodes...), Stars: view.Stars}
	r.camera = cam.Position
}

func (r *recordingRenderer) Resize(width, height int) {
	r.resizes = append(r.resizes, Size{Width: width, Height: height})
}

func testConfig() Config {
	config := DefaultConfig()
	config.Stars.Count = 10
	return config
}

func newTestStage(t *testing.T, config Config) (*Stage, *recordingRenderer) {
	t.Helper()

	renderer := &recordingRenderer{}
	stage, err := NewStage(config, renderer, FixedClock(1.0/60))
	if err != nil {
		t.Fatalf("NewStage() error = %v", err)
	}
	return stage, renderer
}

// page is a 3000px page in a 1000px viewport
func page(offset float64) scroll.Metrics {
	return scroll.At(offset, 3000, 1000)
}

// =============================================================================
// NewStage Tests
// =============================================================================

func TestNewStage(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())

	if stage.Node("cube") == nil || stage.Node("moon") == nil {
		t.Fatal("cube and moon should be created at startup")
	}
	if len(stage.Slots) != 3 {
		t.Fatalf("len(Slots) = %d, want 3", len(stage.Slots))
	}
	for _, slot := range stage.Slots {
		if slot.State() != actor.SlotPending {
			t.Errorf("slot %s state = %v, want pending", slot.Name, slot.State())
		}
	}
	if len(stage.Stars.Stars) != 10 {
		t.Errorf("len(Stars) = %d, want 10", len(stage.Stars.Stars))
	}
	if stage.Camera.Position != (mgl64.Vec3{-3, 0, 30}) {
		t.Errorf("Camera.Position = %v, want [-3 0 30]", stage.Camera.Position)
	}
	if stage.Target() != stage.Camera.Position {
		t.Errorf("Target() = %v before any scroll, want the camera position", stage.Target())
	}
}

func TestNewStage_InvalidConfig(t *testing.T) {
	config := testConfig()
	config.Alpha = 0

	if _, err := NewStage(config, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewStage() error = %v, want ErrInvalidConfig", err)
	}
}

func TestNewStage_Defaults(t *testing.T) {
	stage, err := NewStage(testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewStage() error = %v", err)
	}

	// nil renderer and clock must be usable
	stage.Tick()
	stage.Resize(800, 600)
}

// =============================================================================
// Scroll Handler Tests
// =============================================================================

func TestStage_ScrollRoundTrip(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())

	stage.Scroll(page(0))
	if stage.Target() != stage.mapping.Rest() {
		t.Errorf("Target() at the top = %v, want rest %v", stage.Target(), stage.mapping.Rest())
	}

	stage.Scroll(page(2000))
	moonX := stage.Config.Moon.Position.X()
	if stage.Target().X() != moonX-stage.Config.Scroll.Offset {
		t.Errorf("Target().X at the bottom = %v, want %v", stage.Target().X(), moonX-stage.Config.Scroll.Offset)
	}
}

func TestStage_ScrollDoesNotMoveCamera(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	before := stage.Camera.Position

	stage.Scroll(page(1500))

	if stage.Camera.Position != before {
		t.Errorf("Camera.Position = %v after Scroll, want %v", stage.Camera.Position, before)
	}
}

func TestStage_ScrollDegenerate(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	capture := &eventCapture{}
	stage.Events.Subscribe(SCROLL_DEGENERATE, capture.capture)

	stage.Scroll(scroll.At(0, 600, 1000))

	target := stage.Target()
	for i := range target {
		if math.IsNaN(target[i]) || math.IsInf(target[i], 0) {
			t.Fatalf("Target() = %v, want finite", target)
		}
	}
	if target.X() != stage.Config.Scroll.Rest.X() {
		t.Errorf("Target().X = %v, want %v", target.X(), stage.Config.Scroll.Rest.X())
	}

	stage.Tick()
	if !capture.hasEventType(SCROLL_DEGENERATE) {
		t.Error("expected a SCROLL_DEGENERATE event")
	}

	for range 10 {
		stage.Tick()
	}
	for i, v := range stage.Camera.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Camera.Position[%d] = %v, want finite", i, v)
		}
	}
}

// =============================================================================
// Frame Loop Tests
// =============================================================================

func TestStage_SingleWriter(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	stage.Scroll(page(0))

	events := []float64{-1, -1, 300, -1, 900, -1, -1, 0, -1}
	for _, offset := range events {
		before := stage.Target()
		if offset < 0 {
			stage.Tick()
			if stage.Target() != before {
				t.Fatalf("Tick() changed the target from %v to %v", before, stage.Target())
			}
			continue
		}

		stage.Scroll(page(offset))
		want, _ := stage.mapping.Sample(page(offset))
		if stage.Target() != want {
			t.Fatalf("Target() = %v after Scroll(%v), want %v", stage.Target(), offset, want)
		}
	}
}

func TestStage_Convergence(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	stage.Scroll(page(800))
	target := stage.Target()

	previous := stage.Camera.DistanceTo(target)
	for i := range 200 {
		stage.Tick()
		d := stage.Camera.DistanceTo(target)
		if d >= previous && previous > 0 {
			t.Fatalf("tick %d: distance %v did not decrease from %v", i, d, previous)
		}
		previous = d
	}

	if previous > 1e-5 {
		t.Errorf("distance after 200 ticks = %v, want close to 0", previous)
	}
}

func TestStage_TickOrder(t *testing.T) {
	stage, renderer := newTestStage(t, testConfig())
	stage.Scroll(page(0))
	start := stage.Camera.Position
	target := stage.Target()

	stage.Tick()

	if want := start.Sub(target).Len(); math.Abs(stage.Distance()-want) > 1e-12 {
		t.Errorf("Distance() = %v, want the distance before easing %v", stage.Distance(), want)
	}
	if stage.Step != stage.Config.Speed {
		t.Errorf("Step = %v, want %v", stage.Step, stage.Config.Speed)
	}
	if renderer.frames != 1 {
		t.Errorf("renderer frames = %d, want 1", renderer.frames)
	}
	if renderer.camera != stage.Camera.Position {
		t.Errorf("rendered camera = %v, want the eased position %v", renderer.camera, stage.Camera.Position)
	}

	cube := stage.Node("cube")
	spin := actor.Spin{Rate: stage.Config.Cube.Spin.Rate, DistanceRate: stage.Config.Cube.Spin.DistanceRate}
	want := spin.Delta(actor.Phase{Distance: stage.Distance()})
	if cube.Transform.Rotation != want {
		t.Errorf("cube rotation = %v, want %v", cube.Transform.Rotation, want)
	}
}

func TestStage_StepStrictlyIncreasing(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())

	previous := stage.Step
	for range 100 {
		stage.Tick()
		if stage.Step <= previous {
			t.Fatalf("Step = %v, want > %v", stage.Step, previous)
		}
		previous = stage.Step
	}
	if stage.Frames() != 100 {
		t.Errorf("Frames() = %d, want 100", stage.Frames())
	}
}

func TestStage_EndToEnd(t *testing.T) {
	const alpha = 0.08

	config := testConfig()
	config.Alpha = alpha
	stage, _ := newTestStage(t, config)

	stage.Scroll(scroll.At(0, 2250, 1000))
	for range 200 {
		stage.Tick()
	}

	// t = -500 with a 1250px scrollable extent is 40% of the page
	stage.Scroll(scroll.At(500, 2250, 1000))
	target := stage.Target()

	if target.Z() != -500*config.Scroll.Cz {
		t.Errorf("target.Z = %v, want %v", target.Z(), -500*config.Scroll.Cz)
	}
	wantX := scroll.Lerp(config.Scroll.Rest.X(), config.Moon.Position.X()-8, 0.4)
	if math.Abs(target.X()-wantX) > 1e-12 {
		t.Errorf("target.X = %v, want %v", target.X(), wantX)
	}

	initial := stage.Camera.DistanceTo(target)
	for range 50 {
		stage.Tick()
	}
	remaining := stage.Camera.DistanceTo(target)

	// geometric convergence: (1-alpha)^50 of the initial distance is left
	ratio := remaining / initial
	if want := math.Pow(1-alpha, 50); math.Abs(ratio-want) > 1e-6 {
		t.Errorf("remaining ratio = %v, want %v", ratio, want)
	}
	if ratio > 0.02 {
		t.Errorf("remaining ratio = %v, want under 2%%", ratio)
	}
}

// =============================================================================
// Partial load Tests
// =============================================================================

func TestStage_PartialLoad(t *testing.T) {
	stage, renderer := newTestStage(t, testConfig())
	airplane := stage.Slot("airplane")

	for range 5 {
		stage.Tick()
	}
	if len(renderer.last.Nodes) != 2 {
		t.Fatalf("rendered %d nodes while models load, want 2", len(renderer.last.Nodes))
	}
	if stage.Node("cube").Transform.Rotation == (mgl64.Vec3{}) {
		t.Error("cube should animate while models load")
	}

	node := actor.NewNode("airplane", mgl64.Vec3{-20, 0, 18}, 1)
	node.Animator = stage.Config.Models[0].Motion.Animator()
	airplane.Resolve(node)

	stage.Tick()

	if len(renderer.last.Nodes) != 3 {
		t.Errorf("rendered %d nodes, want 3 once the airplane is ready", len(renderer.last.Nodes))
	}
	flight := stage.Config.Models[0].Motion.Animator().(actor.Flight)
	position, _ := flight.Offset(stage.Step)
	if node.Transform.Position != position {
		t.Errorf("airplane position = %v, want %v", node.Transform.Position, position)
	}
}

func TestStage_FailedLoadKeepsLooping(t *testing.T) {
	stage, renderer := newTestStage(t, testConfig())
	stage.Slot("cat").Fail(errors.New("404"))

	for range 3 {
		stage.Tick()
	}

	if renderer.frames != 3 {
		t.Errorf("renderer frames = %d, want 3", renderer.frames)
	}
	if len(renderer.last.Nodes) != 2 {
		t.Errorf("rendered %d nodes, want 2", len(renderer.last.Nodes))
	}
}

func TestStage_ClipsAdvance(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())

	node := actor.NewNode("cat", mgl64.Vec3{}, 1)
	node.Clips = clip.NewPlayer([]clip.Clip{{Name: "walk", Duration: 10}})
	action := node.Clips.Play(0, clip.LoopRepeat, 1)
	stage.Slot("cat").Resolve(node)

	for range 60 {
		stage.Tick()
	}

	if math.Abs(action.Time()-1) > 1e-9 {
		t.Errorf("clip time = %v after 60 frames at 60fps, want 1", action.Time())
	}
}

func TestStage_Workers(t *testing.T) {
	config := testConfig()
	config.Workers = 4
	parallel, _ := newTestStage(t, config)
	serial, _ := newTestStage(t, testConfig())

	for _, s := range []*Stage{parallel, serial} {
		s.Scroll(page(700))
		for _, slot := range s.Slots {
			node := actor.NewNode(slot.Name, mgl64.Vec3{}, 1)
			for _, model := range s.Config.Models {
				if model.Name == slot.Name {
					node.Animator = model.Motion.Animator()
				}
			}
			slot.Resolve(node)
		}
		for range 30 {
			s.Tick()
		}
	}

	for i, node := range parallel.activeNodes() {
		other := serial.activeNodes()[i]
		if node.Transform != other.Transform {
			t.Errorf("%s: %v with workers, %v without", node.Name, node.Transform, other.Transform)
		}
	}
}

// =============================================================================
// Scene graph Tests
// =============================================================================

func TestStage_AddRemoveNode(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	extra := actor.NewNode("torus", mgl64.Vec3{}, 10)

	stage.AddNode(extra)
	if stage.Node("torus") != extra {
		t.Fatal("Node(torus) should return the added node")
	}

	stage.RemoveNode(extra)
	if stage.Node("torus") != nil {
		t.Error("Node(torus) should be nil after RemoveNode")
	}
	if len(stage.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(stage.Nodes))
	}

	// removing an unknown node is a no-op
	stage.RemoveNode(extra)
	if len(stage.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(stage.Nodes))
	}
}

func TestStage_RemoveSlot(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	slot := stage.Slot("cerdito")

	stage.RemoveSlot(slot)

	if stage.Slot("cerdito") != nil {
		t.Error("Slot(cerdito) should be nil after RemoveSlot")
	}
	if len(stage.Slots) != 2 {
		t.Errorf("len(Slots) = %d, want 2", len(stage.Slots))
	}
}

func TestStage_Resize(t *testing.T) {
	stage, renderer := newTestStage(t, testConfig())

	stage.Resize(1600, 900)
	stage.Resize(0, 900)

	if math.Abs(stage.Camera.Aspect-16.0/9.0) > 1e-12 {
		t.Errorf("Camera.Aspect = %v, want 16/9", stage.Camera.Aspect)
	}
	if len(renderer.resizes) != 1 || renderer.resizes[0] != (Size{1600, 900}) {
		t.Errorf("renderer resizes = %v, want [{1600 900}]", renderer.resizes)
	}
}

// =============================================================================
// LoadModels Tests
// =============================================================================

type stubLoader struct {
	assets map[string]*asset.Asset
}

func (l stubLoader) Load(ctx context.Context, url string) (*asset.Asset, error) {
	if a, ok := l.assets[url]; ok {
		return a, nil
	}
	return nil, errors.New("no such model")
}

func TestStage_LoadModels(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	failed := &eventCapture{}
	ready := &eventCapture{}
	stage.Events.Subscribe(ASSET_FAILED, failed.capture)
	stage.Events.Subscribe(ASSET_READY, ready.capture)

	clips := make([]clip.Clip, 3)
	for i := range clips {
		clips[i] = clip.Clip{Name: "clip", Duration: 1}
	}
	loader := stubLoader{assets: map[string]*asset.Asset{
		"assets/airplane.glb": {Name: "airplane", Clips: clips},
		"assets/cerdito.glb":  {Name: "cerdito"},
	}}

	select {
	case <-stage.LoadModels(context.Background(), loader):
	case <-time.After(5 * time.Second):
		t.Fatal("LoadModels did not complete")
	}

	airplane, ok := stage.Slot("airplane").Node()
	if !ok {
		t.Fatal("airplane should be ready")
	}
	if airplane.Transform.Scale != (mgl64.Vec3{0.1, 0.1, 0.1}) {
		t.Errorf("airplane scale = %v, want [0.1 0.1 0.1]", airplane.Transform.Scale)
	}
	if _, isFlight := airplane.Animator.(actor.Flight); !isFlight {
		t.Errorf("airplane animator = %T, want actor.Flight", airplane.Animator)
	}
	if airplane.Clips == nil || len(airplane.Clips.Actions()) != 2 {
		t.Fatalf("airplane should play 2 clips")
	}
	if airplane.Clips.Actions()[0].TimeScale != 5 {
		t.Errorf("propeller time scale = %v, want 5", airplane.Clips.Actions()[0].TimeScale)
	}

	cerdito, ok := stage.Slot("cerdito").Node()
	if !ok || cerdito.Clips != nil {
		t.Errorf("cerdito should be ready without clips")
	}

	cat := stage.Slot("cat")
	if cat.State() != actor.SlotFailed {
		t.Fatalf("cat state = %v, want failed", cat.State())
	}
	var loadErr *asset.LoadError
	if !errors.As(cat.Err(), &loadErr) || loadErr.URL != "assets/cat.glb" {
		t.Errorf("cat error = %v, want a LoadError for assets/cat.glb", cat.Err())
	}

	stage.Tick()
	stage.Tick()

	if ready.count() != 2 {
		t.Errorf("ASSET_READY events = %d, want 2", ready.count())
	}
	if failed.count() != 1 {
		t.Errorf("ASSET_FAILED events = %d, want 1", failed.count())
	}

	// slots already settled are not requested again
	select {
	case <-stage.LoadModels(context.Background(), loader):
	case <-time.After(5 * time.Second):
		t.Fatal("second LoadModels did not complete")
	}
}

func pageShorterThanViewport() scroll.Metrics {
	return scroll.At(0, 500, 1000)
}

type gatedLoader struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (l *gatedLoader) Load(ctx context.Context, url string) (*asset.Asset, error) {
	l.calls.Add(1)
	<-l.gate
	return &asset.Asset{URL: url, Name: url}, nil
}

func TestStage_LoadModelsRequestsOnce(t *testing.T) {
	stage, _ := newTestStage(t, testConfig())
	loader := &gatedLoader{gate: make(chan struct{})}

	first := stage.LoadModels(context.Background(), loader)
	second := stage.LoadModels(context.Background(), loader)

	// the second call has nothing left to request
	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("second LoadModels should not wait on the first requests")
	}

	close(loader.gate)
	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("LoadModels did not complete")
	}

	if got, want := int(loader.calls.Load()), len(stage.Config.Models); got != want {
		t.Errorf("loader called %d times, want %d", got, want)
	}
	for _, slot := range stage.Slots {
		if slot.State() != actor.SlotReady {
			t.Errorf("slot %s state = %v, want ready", slot.Name, slot.State())
		}
	}
}
