package workflow

import (
	"sort"
	"time"
)

// Status is the lifecycle status of a workflow. Transitions are monotonic
// except for rejection, which is terminal.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusRunning         Status = "RUNNING"
	StatusCompleted       Status = "COMPLETED"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// State is the full client-side view of one workflow: the workflow record
// plus the per-collaborator approval set. State values are immutable;
// Apply returns a fresh value.
type State struct {
	ID            string
	Creator       string
	Collaborators []string
	Status        Status
	CreatedAt     time.Time

	// Approvals maps collaborator id to whether they have approved. Every
	// collaborator (creator included) has an entry from creation onward.
	Approvals map[string]bool
}

// IsCollaborator reports whether clientID is part of the workflow.
func (s State) IsCollaborator(clientID string) bool {
	_, ok := s.Approvals[clientID]
	return ok
}

// AllApproved reports whether every collaborator has approved.
func (s State) AllApproved() bool {
	if len(s.Approvals) == 0 {
		return false
	}
	for _, approved := range s.Approvals {
		if !approved {
			return false
		}
	}
	return true
}

// Pending returns the collaborators who have not approved yet, sorted.
func (s State) Pending() []string {
	var pending []string
	for clientID, approved := range s.Approvals {
		if !approved {
			pending = append(pending, clientID)
		}
	}
	sort.Strings(pending)
	return pending
}

func (s State) clone() State {
	next := s
	next.Collaborators = append([]string(nil), s.Collaborators...)
	next.Approvals = make(map[string]bool, len(s.Approvals))
	for clientID, approved := range s.Approvals {
		next.Approvals[clientID] = approved
	}
	return next
}
