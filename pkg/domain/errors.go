package domain

import "errors"

// ErrCheckpointNotFound is returned when no checkpoint exists for a key.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// ErrAwaitingDecision is returned by a reviewer that cannot answer synchronously,
// and by the engine when a new turn is started on a suspended session.
var ErrAwaitingDecision = errors.New("session is awaiting a human decision")

// ErrNoPendingDecision is returned when resuming a session that is not suspended.
var ErrNoPendingDecision = errors.New("no pending decision")

// ErrLogRewritten is returned when a save would drop or alter earlier messages.
var ErrLogRewritten = errors.New("message log is append-only")

// ErrInvalidSession is returned for incomplete or malformed session configs.
var ErrInvalidSession = errors.New("invalid session config")

// ErrStepLimit is returned when a turn exceeds the configured step budget.
var ErrStepLimit = errors.New("step limit reached")
