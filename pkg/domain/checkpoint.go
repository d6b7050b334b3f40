package domain

import "time"

// Checkpoint is the persisted snapshot of a session.
type Checkpoint struct {
	Key       CheckpointKey `json:"key"`
	Messages  Log           `json:"messages"`
	Next      NodeID        `json:"next,omitempty"`
	Pending   *Pending      `json:"pending,omitempty"`
	Step      int           `json:"step"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Sealed holds the encrypted form of the checkpoint when a store is
	// wrapped by an encryption layer. Messages and Pending are then empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewCheckpoint returns an empty checkpoint for key.
func NewCheckpoint(key CheckpointKey) *Checkpoint {
	return &Checkpoint{Key: key}
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = c.Messages.Clone()
	if c.Pending != nil {
		p := *c.Pending
		out.Pending = &p
	}
	return &out
}

// Awaiting reports whether the checkpoint is suspended on a human decision.
func (c *Checkpoint) Awaiting() bool {
	return c != nil && c.Pending != nil
}
