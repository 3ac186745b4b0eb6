package starscroll

import (
	"context"
	"errors"
	"time"

	"github.com/akmonengine/starscroll/scroll"
)

// ErrLoopRunning is returned when starting a loop that already runs
var ErrLoopRunning = errors.New("starscroll: loop already running")

type LoopState uint8

const (
	LoopStopped LoopState = iota
	LoopRunning
)

func (s LoopState) String() string {
	if s == LoopRunning {
		return "running"
	}
	return "stopped"
}

// Scheduler calls fn once, at the next display refresh
type Scheduler interface {
	RequestFrame(fn func())
}

// Loop drives a stage from a scheduler, one tick per requested frame
type Loop struct {
	Stage     *Stage
	Scheduler Scheduler

	state LoopState
	// generation invalidates frames requested before a Stop
	generation uint64
}

func NewLoop(stage *Stage, scheduler Scheduler) *Loop {
	return &Loop{Stage: stage, Scheduler: scheduler}
}

// State returns whether the loop is running
func (l *Loop) State() LoopState {
	return l.state
}

// Start applies the initial scroll sample, so the first frame has a target,
// and requests the first frame.
func (l *Loop) Start(initial scroll.Metrics) error {
	if l.state == LoopRunning {
		return ErrLoopRunning
	}

	l.state = LoopRunning
	l.generation++
	l.Stage.Scroll(initial)
	Logger().Debug("loop started", "generation", l.generation)

	l.request()

	return nil
}

// Stop prevents the pending frame, if any, from ticking
func (l *Loop) Stop() {
	if l.state == LoopStopped {
		return
	}
	l.state = LoopStopped
	l.generation++
	Logger().Debug("loop stopped", "frames", l.Stage.Frames())
}

func (l *Loop) request() {
	generation := l.generation
	l.Scheduler.RequestFrame(func() {
		if l.state != LoopRunning || l.generation != generation {
			return
		}
		l.Stage.Tick()
		if l.state == LoopRunning && l.generation == generation {
			l.request()
		}
	})
}

// Run drives the stage from channels on the calling goroutine, which serializes
// frames, scroll samples and resizes. A nil channel never fires.
// Run returns nil after Stop, or the context error on cancellation.
func (l *Loop) Run(ctx context.Context, initial scroll.Metrics, frames <-chan time.Time, scrolls <-chan scroll.Metrics, resizes <-chan Size) error {
	if l.state == LoopRunning {
		return ErrLoopRunning
	}

	l.state = LoopRunning
	l.generation++
	generation := l.generation
	l.Stage.Scroll(initial)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case m := <-scrolls:
			l.Stage.Scroll(m)
		case size := <-resizes:
			l.Stage.Resize(size.Width, size.Height)
		case <-frames:
			if l.state != LoopRunning || l.generation != generation {
				return nil
			}
			l.Stage.Tick()
		}

		if l.state != LoopRunning || l.generation != generation {
			return nil
		}
	}
}

// ManualScheduler queues frame requests until Advance runs them
type ManualScheduler struct {
	pending []func()
}

func (m *ManualScheduler) RequestFrame(fn func()) {
	m.pending = append(m.pending, fn)
}

// Pending returns the number of queued frames
func (m *ManualScheduler) Pending() int {
	return len(m.pending)
}

// Advance runs up to n queued frames, including frames requested by
// the frames it runs, and returns how many ran.
func (m *ManualScheduler) Advance(n int) int {
	ran := 0
	for ran < n && len(m.pending) > 0 {
		fn := m.pending[0]
		m.pending = m.pending[1:]
		fn()
		ran++
	}

	return ran
}
