package workflow

import (
	"fmt"
	"time"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// Event is a typed workflow lifecycle event. Apply is the only way events
// change state.
type Event interface {
	isEvent()
}

// Created establishes the workflow with its collaborator set. The creator
// must be a member of Collaborators and is not auto-approved; approval is
// an explicit act for every party.
type Created struct {
	ID            string
	Creator       string
	Collaborators []string
	At            time.Time
}

// Approved records an explicit approval by ClientID. Approving twice is a
// no-op, not an error.
type Approved struct {
	ClientID string
}

// Rejected records a rejection by ClientID. Rejection is terminal.
type Rejected struct {
	ClientID string
}

// RunStarted records that execution was triggered. Only permitted once
// every collaborator has approved.
type RunStarted struct {
	Requester string
}

// RunCompleted records that the executor finished the run.
type RunCompleted struct{}

func (Created) isEvent()      {}
func (Approved) isEvent()     {}
func (Rejected) isEvent()     {}
func (RunStarted) isEvent()   {}
func (RunCompleted) isEvent() {}

// New initializes a workflow state from a Created event.
func New(ev Created) (State, error) {
	return Apply(State{}, ev)
}

// Apply computes the state that follows from applying ev to s. It performs
// no I/O and never mutates s.
func Apply(s State, ev Event) (State, error) {
	switch ev := ev.(type) {
	case Created:
		return applyCreated(ev)
	case Approved:
		return applyApproved(s, ev)
	case Rejected:
		return applyRejected(s, ev)
	case RunStarted:
		return applyRunStarted(s, ev)
	case RunCompleted:
		return applyRunCompleted(s)
	default:
		return s, fmt.Errorf("%w: unknown event %T", cerrors.ErrInvalidTransition, ev)
	}
}

func applyCreated(ev Created) (State, error) {
	if ev.ID == "" {
		return State{}, fmt.Errorf("%w: workflow id is empty", cerrors.ErrInvalidTransition)
	}
	if len(ev.Collaborators) == 0 {
		return State{}, fmt.Errorf("%w: workflow has no collaborators", cerrors.ErrInvalidTransition)
	}

	approvals := make(map[string]bool, len(ev.Collaborators))
	for _, clientID := range ev.Collaborators {
		approvals[clientID] = false
	}
	if _, ok := approvals[ev.Creator]; !ok {
		return State{}, fmt.Errorf("%w: creator %s is not in the collaborator set",
			cerrors.ErrUnknownCollaborator, ev.Creator)
	}

	createdAt := ev.At
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return State{
		ID:            ev.ID,
		Creator:       ev.Creator,
		Collaborators: append([]string(nil), ev.Collaborators...),
		Status:        StatusPendingApproval,
		CreatedAt:     createdAt,
		Approvals:     approvals,
	}, nil
}

func applyApproved(s State, ev Approved) (State, error) {
	if err := checkActionable(s); err != nil {
		return s, err
	}
	if !s.IsCollaborator(ev.ClientID) {
		return s, fmt.Errorf("%w: %s", cerrors.ErrUnknownCollaborator, ev.ClientID)
	}

	next := s.clone()
	next.Approvals[ev.ClientID] = true
	if next.Status == StatusPendingApproval && next.AllApproved() {
		next.Status = StatusApproved
	}
	return next, nil
}

func applyRejected(s State, ev Rejected) (State, error) {
	if err := checkActionable(s); err != nil {
		return s, err
	}
	if !s.IsCollaborator(ev.ClientID) {
		return s, fmt.Errorf("%w: %s", cerrors.ErrUnknownCollaborator, ev.ClientID)
	}
	if s.Status != StatusPendingApproval {
		return s, fmt.Errorf("%w: cannot reject a workflow in status %s",
			cerrors.ErrInvalidTransition, s.Status)
	}

	next := s.clone()
	next.Status = StatusRejected
	return next, nil
}

func applyRunStarted(s State, ev RunStarted) (State, error) {
	if err := checkActionable(s); err != nil {
		return s, err
	}
	if !s.IsCollaborator(ev.Requester) {
		return s, fmt.Errorf("%w: %s", cerrors.ErrUnknownCollaborator, ev.Requester)
	}
	if s.Status != StatusApproved {
		if s.Status == StatusPendingApproval {
			return s, fmt.Errorf("%w: waiting on %v", cerrors.ErrApprovalNotComplete, s.Pending())
		}
		return s, fmt.Errorf("%w: cannot run a workflow in status %s",
			cerrors.ErrInvalidTransition, s.Status)
	}

	next := s.clone()
	next.Status = StatusRunning
	return next, nil
}

func applyRunCompleted(s State) (State, error) {
	if s.Status != StatusRunning {
		return s, fmt.Errorf("%w: cannot complete a workflow in status %s",
			cerrors.ErrInvalidTransition, s.Status)
	}

	next := s.clone()
	next.Status = StatusCompleted
	return next, nil
}

func checkActionable(s State) error {
	if s.ID == "" {
		return cerrors.ErrWorkflowNotFound
	}
	if s.Status == StatusRejected {
		return cerrors.ErrWorkflowRejected
	}
	if s.Status == StatusCompleted {
		return fmt.Errorf("%w: workflow has already completed", cerrors.ErrInvalidTransition)
	}
	return nil
}
