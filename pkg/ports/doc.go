/*
Package ports defines the driven ports (interfaces) for the cinegraph engine.

These interfaces decouple the orchestration loop from external implementations,
allowing the engine to work with various checkpoint backends, model providers
and human-review surfaces.

# Key Interfaces

  - CheckpointStore: persists and loads session checkpoints.
  - DistributedLocker: distributed locking for concurrent access to a checkpoint key.
  - DecisionModel: picks the next capability call from the conversation log.
  - Completer: plain text completion used by model-backed capabilities.
  - Reviewer: hands a generated artifact to a human and returns their decision.
*/
package ports
