/*
Package domain contains the core models of the cinegraph orchestration engine.

It defines the conversation log, the capability contracts, the graph node
identifiers and the checkpoint snapshot persisted between turns. The package
is pure and free of I/O so that every adapter (stores, model clients,
transports) can depend on it without pulling in anything else.

# Key Entities

  - Message: one entry of the append-only conversation log (human, assistant or capability result).
  - CapabilityCall: a request emitted by the decision model to run a named capability.
  - Tool: the contract (name, description, parameters) advertised to the model.
  - SessionConfig: the (thread, namespace, checkpoint) triple that identifies a conversation.
  - Checkpoint: the persisted snapshot of a session, including any pending human decision.
  - Decision: the typed payload a human returns when the engine awaits review.
*/
package domain
