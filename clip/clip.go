// Package clip plays the keyframe animation clips bound to a loaded model.
package clip

import "math"

// LoopMode controls what an action does when it reaches the end of its clip
type LoopMode uint8

const (
	LoopRepeat LoopMode = iota
	LoopOnce
)

// Clip is a named keyframe animation of a given duration, in seconds
type Clip struct {
	Name     string
	Duration float64
}

// Action is a playing instance of a Clip
type Action struct {
	Clip      Clip
	Loop      LoopMode
	TimeScale float64

	time    float64
	playing bool
}

// Time returns the local time of the action within its clip
func (a *Action) Time() float64 {
	return a.time
}

// IsPlaying reports whether the action still advances
func (a *Action) IsPlaying() bool {
	return a.playing
}

func (a *Action) advance(dt float64) {
	if !a.playing {
		return
	}

	a.time += dt * a.TimeScale
	if a.Clip.Duration <= 0 {
		a.time = 0
		return
	}

	switch a.Loop {
	case LoopRepeat:
		a.time = math.Mod(a.time, a.Clip.Duration)
		if a.time < 0 {
			a.time += a.Clip.Duration
		}
	case LoopOnce:
		if a.time >= a.Clip.Duration {
			a.time = a.Clip.Duration
			a.playing = false
		} else if a.time < 0 {
			a.time = 0
			a.playing = false
		}
	}
}

// Player mixes the actions of one model
type Player struct {
	Clips   []Clip
	actions []*Action
}

// NewPlayer creates a player for the clips available on a model
func NewPlayer(clips []Clip) *Player {
	return &Player{Clips: clips}
}

// Play starts the clip at index with the given loop mode and time scale.
// It returns nil when the model has no such clip.
func (p *Player) Play(index int, loop LoopMode, timeScale float64) *Action {
	if index < 0 || index >= len(p.Clips) {
		return nil
	}

	action := &Action{
		Clip:      p.Clips[index],
		Loop:      loop,
		TimeScale: timeScale,
		playing:   true,
	}
	p.actions = append(p.actions, action)

	return action
}

// Actions returns the actions started on this player
func (p *Player) Actions() []*Action {
	return p.actions
}

// Advance moves every playing action forward by dt seconds
func (p *Player) Advance(dt float64) {
	for _, action := range p.actions {
		action.advance(dt)
	}
}
