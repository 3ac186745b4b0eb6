package starscroll

import (
	"github.com/akmonengine/starscroll/actor"
	"github.com/akmonengine/starscroll/scroll"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	ASSET_READY EventType = iota
	ASSET_FAILED
	CAMERA_SETTLED
	CAMERA_MOVING
	SCROLL_DEGENERATE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// AssetReadyEvent is sent once when a loading slot publishes its node
type AssetReadyEvent struct {
	Slot *actor.Slot
	Node *actor.Node
}

func (e AssetReadyEvent) Type() EventType { return ASSET_READY }

// AssetFailedEvent is sent once when a loading slot fails
type AssetFailedEvent struct {
	Slot *actor.Slot
	Err  error
}

func (e AssetFailedEvent) Type() EventType { return ASSET_FAILED }

// CameraSettledEvent is sent when the camera comes within the settle distance of its target
type CameraSettledEvent struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

func (e CameraSettledEvent) Type() EventType { return CAMERA_SETTLED }

// CameraMovingEvent is sent when a new target pulls a settled camera away
type CameraMovingEvent struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

func (e CameraMovingEvent) Type() EventType { return CAMERA_MOVING }

// ScrollDegenerateEvent is sent when a scroll sample had to be clamped
type ScrollDegenerateEvent struct {
	Metrics scroll.Metrics
}

func (e ScrollDegenerateEvent) Type() EventType { return SCROLL_DEGENERATE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Slots whose outcome was already reported
	reported map[*actor.Slot]bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
		reported:  make(map[*actor.Slot]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// processSlots reports each slot once, when it leaves the pending state
func (e *Events) processSlots(slots []*actor.Slot) {
	if e.reported == nil {
		e.reported = make(map[*actor.Slot]bool)
	}

	for _, slot := range slots {
		if e.reported[slot] {
			continue
		}

		switch slot.State() {
		case actor.SlotReady:
			node, _ := slot.Node()
			e.emit(AssetReadyEvent{Slot: slot, Node: node})
			e.reported[slot] = true
			Logger().Info("asset ready", "name", slot.Name)
		case actor.SlotFailed:
			e.emit(AssetFailedEvent{Slot: slot, Err: slot.Err()})
			e.reported[slot] = true
			Logger().Warn("asset failed", "name", slot.Name, "err", slot.Err())
		}
	}
}

// forget drops the bookkeeping of a removed slot
func (e *Events) forget(slot *actor.Slot) {
	delete(e.reported, slot)
}

// flush sends all buffered events and clears the buffer
// Events emitted by listeners during the flush are kept for the next one.
func (e *Events) flush() {
	pending := e.buffer
	e.buffer = nil

	for _, event := range pending {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
}
