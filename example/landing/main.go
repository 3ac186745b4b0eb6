package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"github.com/akmonengine/starscroll"
	"github.com/akmonengine/starscroll/asset"
	"github.com/akmonengine/starscroll/scroll"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	// pageHeight is the height of the virtual page being scrolled
	pageHeight = 6000
	wheelStep  = 60
)

// frameScheduler runs the frames requested during the previous ebiten update
type frameScheduler struct {
	pending []func()
}

func (s *frameScheduler) RequestFrame(fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *frameScheduler) run() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

type game struct {
	stage     *starscroll.Stage
	loop      *starscroll.Loop
	scheduler *frameScheduler
	renderer  *pointRenderer
	metrics   scroll.Metrics
	notices   []string
	started   bool
	width     int
	height    int
}

func newGame(stage *starscroll.Stage, renderer *pointRenderer) *game {
	scheduler := &frameScheduler{}
	g := &game{
		stage:     stage,
		loop:      starscroll.NewLoop(stage, scheduler),
		scheduler: scheduler,
		renderer:  renderer,
		metrics:   scroll.At(0, pageHeight, windowHeight),
	}

	stage.Events.Subscribe(starscroll.ASSET_FAILED, func(event starscroll.Event) {
		e := event.(starscroll.AssetFailedEvent)
		g.notices = append(g.notices, fmt.Sprintf("Error loading %s model: %v", e.Slot.Name, e.Err))
	})

	return g
}

func (g *game) Update() error {
	if !g.started {
		g.started = true
		if err := g.loop.Start(g.metrics); err != nil {
			return err
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.metrics = g.metrics.Scrolled(-dy * wheelStep)
		g.stage.Scroll(g.metrics)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.loop.State() == starscroll.LoopRunning {
			g.loop.Stop()
		} else if err := g.loop.Start(g.metrics); err != nil {
			return err
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.scheduler.run()

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.draw(screen)

	y := 20
	for _, notice := range g.notices {
		text.Draw(screen, notice, basicfont.Face7x13, 10, y, color.RGBA{0xff, 0x63, 0x47, 0xff})
		y += 16
	}
	if g.loop.State() == starscroll.LoopStopped {
		text.Draw(screen, "paused", basicfont.Face7x13, 10, g.height-10, color.White)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.stage.Resize(outsideWidth, outsideHeight)
		g.metrics = scroll.At(g.metrics.ScrollTop, pageHeight, float64(outsideHeight)).Scrolled(0)
		g.stage.Scroll(g.metrics)
	}

	return outsideWidth, outsideHeight
}

// runHeadless ticks the stage from a ticker while scrolling the page down
// at a constant pace, then logs where the camera ended up.
func runHeadless(stage *starscroll.Stage, duration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	metrics := scroll.At(0, pageHeight, windowHeight)
	scrolls := make(chan scroll.Metrics)
	go func() {
		step := time.NewTicker(100 * time.Millisecond)
		defer step.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-step.C:
				metrics = metrics.Scrolled(wheelStep)
				select {
				case scrolls <- metrics:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	loop := starscroll.NewLoop(stage, nil)
	err := loop.Run(ctx, scroll.At(0, pageHeight, windowHeight), ticker.C, scrolls, nil)
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	starscroll.Logger().Info("headless run done",
		"frames", stage.Frames(),
		"camera", stage.Camera.Position,
		"target", stage.Target(),
	)

	return err
}

func main() {
	configPath := flag.String("config", "", "JSON scene config, defaults to the landing page scene")
	assets := flag.String("assets", ".", "directory model URLs are relative to")
	headless := flag.Duration("headless", 0, "run without a window for the given duration")
	verbose := flag.Bool("v", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	starscroll.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	config := starscroll.DefaultConfig()
	if *configPath != "" {
		var err error
		if config, err = starscroll.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	renderer := &pointRenderer{}
	stage, err := starscroll.NewStage(config, renderer, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	stage.Resize(windowWidth, windowHeight)
	stage.LoadModels(context.Background(), asset.GLTFLoader{Root: *assets})

	if *headless > 0 {
		if err := runHeadless(stage, *headless); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ebiten.SetWindowTitle("starscroll")
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(newGame(stage, renderer)); err != nil && !errors.Is(err, ebiten.Termination) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
