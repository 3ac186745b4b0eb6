package starscroll

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/scroll"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidConfig is wrapped by every Validate error
var ErrInvalidConfig = errors.New("starscroll: invalid config")

const (
	MotionNone   = ""
	MotionFlight = "flight"
	MotionWaddle = "waddle"
	MotionBob    = "bob"
)

type CameraConfig struct {
	// Position is where the camera starts, before easing toward the first target
	Position mgl64.Vec3
	Fovy     float64
	Near     float64
	Far      float64
}

type ScrollConfig struct {
	Cz float64
	Cy float64
	// Rest is the target at the top of the page
	Rest mgl64.Vec3
	// Offset is the standoff from the moon the camera drifts to at the bottom of the page
	Offset float64
}

type StarsConfig struct {
	Count  int
	Spread float64
	Seed   uint64
}

type SpinConfig struct {
	Rate         mgl64.Vec3
	DistanceRate mgl64.Vec3
}

// PrimitiveConfig describes an object created at startup
type PrimitiveConfig struct {
	Position mgl64.Vec3
	Radius   float64
	Spin     SpinConfig
}

type ClipConfig struct {
	Index     int
	TimeScale float64
	Once      bool
}

type MotionConfig struct {
	Kind       string
	Origin     mgl64.Vec3
	Amplitude  mgl64.Vec3
	RollRate   float64
	YawRate    float64
	PhaseShift float64
}

// ModelConfig describes an asynchronously loaded model
type ModelConfig struct {
	Name     string
	URL      string
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
	Radius   float64
	Clips    []ClipConfig
	Motion   MotionConfig
}

// Config holds every per-scene constant
type Config struct {
	Camera CameraConfig
	Scroll ScrollConfig
	// Alpha is the fraction of the remaining distance closed per frame, in (0,1]
	Alpha float64
	// Speed is the phase increment per frame
	Speed float64
	// SettleEpsilon is the distance under which the camera counts as arrived
	SettleEpsilon float64
	Workers       int

	Stars  StarsConfig
	Cube   PrimitiveConfig
	Moon   PrimitiveConfig
	Models []ModelConfig
}

// DefaultConfig returns the landing page scene
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			Position: mgl64.Vec3{-3, 0, 30},
			Fovy:     75,
			Near:     0.1,
			Far:      1000,
		},
		Scroll: ScrollConfig{
			Cz:     -0.01,
			Cy:     -0.0002,
			Rest:   mgl64.Vec3{-3, 0, 0},
			Offset: 8,
		},
		Alpha:         0.08,
		Speed:         0.05,
		SettleEpsilon: 0.01,
		Workers:       1,
		Stars:         StarsConfig{Count: 200, Spread: 100, Seed: 1},
		Cube: PrimitiveConfig{
			Position: mgl64.Vec3{2, 0, -5},
			Radius:   1.5,
			Spin: SpinConfig{
				Rate:         mgl64.Vec3{0, 0.003, 0.003},
				DistanceRate: mgl64.Vec3{0, 0.01, 0.01},
			},
		},
		Moon: PrimitiveConfig{
			Position: mgl64.Vec3{-10, 0, 35},
			Radius:   3,
			Spin: SpinConfig{
				Rate:         mgl64.Vec3{0, 0.005, 0},
				DistanceRate: mgl64.Vec3{0, 0.075, 0},
			},
		},
		Models: []ModelConfig{
			{
				Name:     "airplane",
				URL:      "assets/airplane.glb",
				Position: mgl64.Vec3{-20, 0, 18},
				Rotation: mgl64.Vec3{-math.Pi / 12, -math.Pi / 1.8, 0},
				Scale:    mgl64.Vec3{0.1, 0.1, 0.1},
				Radius:   1,
				Clips: []ClipConfig{
					{Index: 2, TimeScale: 5},
					{Index: 1, TimeScale: 1},
				},
				Motion: MotionConfig{
					Kind:       MotionFlight,
					Origin:     mgl64.Vec3{-20, 0, 18},
					Amplitude:  mgl64.Vec3{1, 0.5, 0},
					RollRate:   -0.01,
					YawRate:    -0.004,
					PhaseShift: math.Pi / 4,
				},
			},
			{
				Name:     "cat",
				URL:      "assets/cat.glb",
				Position: mgl64.Vec3{-24, -3, 25},
				Rotation: mgl64.Vec3{0, math.Pi / 3, 0},
				Scale:    mgl64.Vec3{1, 1, 1},
				Radius:   0.5,
				Clips:    []ClipConfig{{Index: 11, TimeScale: 1}},
				Motion: MotionConfig{
					Kind:      MotionBob,
					Origin:    mgl64.Vec3{-24, -3, 25},
					Amplitude: mgl64.Vec3{0.05, 0.08, 0},
				},
			},
			{
				Name:     "cerdito",
				URL:      "assets/cerdito.glb",
				Position: mgl64.Vec3{0, -3, 12},
				Rotation: mgl64.Vec3{0, math.Pi / 1.01, 0},
				Scale:    mgl64.Vec3{1, 1, 1},
				Radius:   0.8,
				Motion: MotionConfig{
					Kind:      MotionWaddle,
					Origin:    mgl64.Vec3{-3, 0, 12},
					Amplitude: mgl64.Vec3{1, 0.8, 0},
					RollRate:  -0.01,
				},
			},
		},
	}
}

// LoadConfig reads a JSON file over the default config.
// Fields absent from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("starscroll: parse %s: %w", path, err)
	}

	return config, config.Validate()
}

// Validate checks the constants the frame loop relies on
func (c Config) Validate() error {
	if !(c.Alpha > 0 && c.Alpha <= 1) {
		return fmt.Errorf("%w: alpha %v not in (0,1]", ErrInvalidConfig, c.Alpha)
	}
	if !(c.Speed > 0) {
		return fmt.Errorf("%w: speed %v must be positive", ErrInvalidConfig, c.Speed)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	}
	if c.Stars.Count < 0 {
		return fmt.Errorf("%w: star count %d is negative", ErrInvalidConfig, c.Stars.Count)
	}
	if !(c.Camera.Fovy > 0 && c.Camera.Fovy < 180) {
		return fmt.Errorf("%w: field of view %v not in (0,180)", ErrInvalidConfig, c.Camera.Fovy)
	}
	if !(c.Stars.Spread >= 0) {
		return fmt.Errorf("%w: star spread %v is negative", ErrInvalidConfig, c.Stars.Spread)
	}
	if !(c.SettleEpsilon >= 0) {
		return fmt.Errorf("%w: settle epsilon %v is negative", ErrInvalidConfig, c.SettleEpsilon)
	}
	if !(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near) {
		return fmt.Errorf("%w: depth range [%v,%v]", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}

	names := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if model.Name == "" {
			return fmt.Errorf("%w: model %q has no name", ErrInvalidConfig, model.URL)
		}
		if names[model.Name] {
			return fmt.Errorf("%w: duplicate model %q", ErrInvalidConfig, model.Name)
		}
		names[model.Name] = true

		switch model.Motion.Kind {
		case MotionNone, MotionFlight, MotionWaddle, MotionBob:
		default:
			return fmt.Errorf("%w: model %q has unknown motion %q", ErrInvalidConfig, model.Name, model.Motion.Kind)
		}
	}

	return nil
}

// Mapping returns the scroll mapping anchored on the moon
func (c Config) Mapping() scroll.Mapping {
	return scroll.Mapping{
		Cz:      c.Scroll.Cz,
		Cy:      c.Scroll.Cy,
		X0:      c.Scroll.Rest.X(),
		Y0:      c.Scroll.Rest.Y(),
		Z0:      c.Scroll.Rest.Z(),
		AnchorX: c.Moon.Position.X(),
		Offset:  c.Scroll.Offset,
	}
}

// Animator builds the procedural animation of a model, nil for static models
func (m MotionConfig) Animator() actor.Animator {
	switch m.Kind {
	case MotionFlight:
		return actor.Flight{
			Origin:     m.Origin,
			Amplitude:  m.Amplitude,
			RollRate:   m.RollRate,
			YawRate:    m.YawRate,
			PhaseShift: m.PhaseShift,
		}
	case MotionWaddle:
		return actor.Waddle{Origin: m.Origin, Amplitude: m.Amplitude, RollRate: m.RollRate}
	case MotionBob:
		return actor.Bob{Origin: m.Origin, Amplitude: m.Amplitude}
	default:
		return nil
	}
}

func (s SpinConfig) Animator() actor.Animator {
	return actor.Spin{Rate: s.Rate, DistanceRate: s.DistanceRate}
}
