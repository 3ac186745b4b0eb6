package actor

import (
	"sync"

	"github.com/akmonengine/starscroll/clip"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a renderable scene object: a primitive mesh or a loaded model.
// The stage only reads and writes its Transform.
type Node struct {
	Name      string
	Transform Transform
	// Radius is the bounding radius used by renderers to size the object on screen.
	Radius float64
	// Animator drives the node each frame; nil for static objects.
	Animator Animator
	// Clips is nil for nodes without animation clips.
	Clips *clip.Player
}

// NewNode creates a node at the given position with an identity rotation and unit scale
func NewNode(name string, position mgl64.Vec3, radius float64) *Node {
	transform := NewTransform()
	transform.Position = position

	return &Node{
		Name:      name,
		Transform: transform,
		Radius:    radius,
	}
}

// SlotState is the load state of an asynchronously created node
type SlotState uint8

const (
	SlotPending SlotState = iota
	SlotReady
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotReady:
		return "ready"
	case SlotFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is a placeholder for a node whose asset is still loading.
// It is written once by the loading goroutine and polled by the frame loop.
type Slot struct {
	Name string

	mu        sync.Mutex
	state     SlotState
	requested bool
	node      *Node
	err       error
}

// NewSlot creates a pending slot
func NewSlot(name string) *Slot {
	return &Slot{Name: name}
}

// Begin claims the slot for a load request. It returns true only for the first
// caller on a pending slot, so each asset is requested at most once.
func (s *Slot) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.requested || s.state != SlotPending {
		return false
	}
	s.requested = true

	return true
}

// Resolve publishes the loaded node. Only the first Resolve or Fail call wins.
func (s *Slot) Resolve(node *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SlotPending {
		return false
	}
	s.state = SlotReady
	s.node = node

	return true
}

// Fail records the load error. Only the first Resolve or Fail call wins.
func (s *Slot) Fail(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SlotPending {
		return false
	}
	s.state = SlotFailed
	s.err = err

	return true
}

// State returns the current load state
func (s *Slot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Node returns the published node, and false while the slot is not ready
func (s *Slot) Node() (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.node, s.state == SlotReady
}

// Err returns the load error of a failed slot
func (s *Slot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
