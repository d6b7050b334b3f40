package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultNamespace    = "article_checkpoints"
	DefaultCheckpointID = "article_1"
)

// SessionConfig identifies a conversation. Two sessions with different
// thread ids never observe each other's messages.
type SessionConfig struct {
	ThreadID     string `json:"thread_id" yaml:"thread_id"`
	Namespace    string `json:"checkpoint_ns" yaml:"checkpoint_ns"`
	CheckpointID string `json:"checkpoint_id" yaml:"checkpoint_id"`
}

// NewSessionConfig returns a config with a fresh random thread id and the default
// namespace and checkpoint id.
func NewSessionConfig() SessionConfig {
	return SessionConfig{
		ThreadID:     uuid.NewString(),
		Namespace:    DefaultNamespace,
		CheckpointID: DefaultCheckpointID,
	}
}

// WithDefaults fills an empty namespace or checkpoint id.
func (c SessionConfig) WithDefaults() SessionConfig {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.CheckpointID == "" {
		c.CheckpointID = DefaultCheckpointID
	}
	return c
}

// Validate checks that every component is present and free of the key separator.
func (c SessionConfig) Validate() error {
	for label, v := range map[string]string{
		"thread_id":     c.ThreadID,
		"checkpoint_ns": c.Namespace,
		"checkpoint_id": c.CheckpointID,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidSession, label)
		}
		if strings.ContainsAny(v, "/\\") {
			return fmt.Errorf("%w: %s contains a path separator", ErrInvalidSession, label)
		}
	}
	return nil
}

// Key returns the checkpoint key for the config.
func (c SessionConfig) Key() CheckpointKey {
	return CheckpointKey{ThreadID: c.ThreadID, Namespace: c.Namespace, CheckpointID: c.CheckpointID}
}

// CheckpointKey is the persistence key of a checkpoint.
type CheckpointKey struct {
	ThreadID     string `json:"thread_id"`
	Namespace    string `json:"checkpoint_ns"`
	CheckpointID string `json:"checkpoint_id"`
}

// String renders the key as thread/namespace/checkpoint.
func (k CheckpointKey) String() string {
	return k.ThreadID + "/" + k.Namespace + "/" + k.CheckpointID
}

// Config converts the key back into a session config.
func (k CheckpointKey) Config() SessionConfig {
	return SessionConfig{ThreadID: k.ThreadID, Namespace: k.Namespace, CheckpointID: k.CheckpointID}
}

// ParseCheckpointKey parses the String form of a key.
func ParseCheckpointKey(s string) (CheckpointKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return CheckpointKey{}, fmt.Errorf("%w: malformed key %q", ErrInvalidSession, s)
	}
	k := CheckpointKey{ThreadID: parts[0], Namespace: parts[1], CheckpointID: parts[2]}
	if err := k.Config().Validate(); err != nil {
		return CheckpointKey{}, err
	}
	return k, nil
}
