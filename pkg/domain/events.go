package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter        EventType = "node_enter"
	EventNodeLeave        EventType = "node_leave"
	EventCapabilityCall   EventType = "capability_call"
	EventCapabilityReturn EventType = "capability_return"
	EventCheckpoint       EventType = "checkpoint"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ThreadID  string    `json:"thread_id"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID NodeID `json:"node_id"`
	Signal Signal `json:"signal,omitempty"`
}

// CapabilityEvent represents a capability dispatch.
type CapabilityEvent struct {
	EventBase
	Call     CapabilityCall `json:"call"`
	Output   string         `json:"output,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
	Skipped  bool           `json:"skipped,omitempty"`
}

// CheckpointEvent is emitted after a checkpoint is committed.
type CheckpointEvent struct {
	EventBase
	Key      CheckpointKey `json:"key"`
	Step     int           `json:"step"`
	Next     NodeID        `json:"next,omitempty"`
	Messages int           `json:"messages"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter        func(context.Context, *NodeEvent)
	OnNodeLeave        func(context.Context, *NodeEvent)
	OnCapabilityCall   func(context.Context, *CapabilityEvent)
	OnCapabilityReturn func(context.Context, *CapabilityEvent)
	OnCheckpoint       func(context.Context, *CheckpointEvent)
}

// Merge combines hooks so that both are called, h first.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:        chain(h.OnNodeEnter, o.OnNodeEnter),
		OnNodeLeave:        chain(h.OnNodeLeave, o.OnNodeLeave),
		OnCapabilityCall:   chain(h.OnCapabilityCall, o.OnCapabilityCall),
		OnCapabilityReturn: chain(h.OnCapabilityReturn, o.OnCapabilityReturn),
		OnCheckpoint:       chain(h.OnCheckpoint, o.OnCheckpoint),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
