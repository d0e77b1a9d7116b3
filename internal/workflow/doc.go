// Package workflow implements the client-side workflow lifecycle state
// machine.
//
// The model is a pure transition function over an immutable State value
// and a finite set of typed events:
//
//	PENDING_APPROVAL → APPROVED → RUNNING → COMPLETED
//	PENDING_APPROVAL → REJECTED (terminal)
//
// A workflow may start running only once every collaborator has explicitly
// approved it; the creator gets no implicit approval. Apply performs no
// I/O, so the full transition table is testable without a network.
//
// The orchestrator owns the authoritative record; this state is the
// client's mirror, advanced by the same actions it sends upstream and by
// poll-observed completion.
package workflow
