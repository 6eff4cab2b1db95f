package result

import (
	"fmt"
	"time"
)

// Events
const (
	EventCreate   = "create"
	EventSubmit   = "submit"
	EventResubmit = "resubmit"
	EventRevise   = "revise"
	EventApprove  = "approve"
	EventReject   = "reject"
	EventSend     = "send"

	// not status changes, but subject to the status of a result
	EventUpdate = "update"
	EventDelete = "delete"
)

// transitions is the result state machine: {from: {event: to}}.
// sent has no way out.
var transitions = map[string]map[string]string{
	StatusDraft: {
		EventSubmit: StatusSubmitted,
	},
	StatusSubmitted: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
	},
	StatusRejected: {
		EventResubmit: StatusSubmitted,
		EventRevise:   StatusDraft,
	},
	StatusApproved: {
		EventSend: StatusSent,
	},
}

// InvalidTransitionError is returned when an event is not allowed in the current status of a result.
type InvalidTransitionError struct {
	From  string
	Event string
}

func (err *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s result", err.Event, err.From)
}

// Next returns the status reached by applying event on from.
func Next(from, event string) (string, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return "", &InvalidTransitionError{From: from, Event: event}
}

// Can reports whether event may be applied on a result.
// Authors may only edit or delete while the result is theirs to fix.
func (r Result) Can(event string) error {
	switch event {
	case EventUpdate:
		if r.Status == StatusDraft || r.Status == StatusRejected {
			return nil
		}
	case EventDelete:
		if r.Status == StatusDraft {
			return nil
		}
	default:
		_, err := Next(r.Status, event)
		return err
	}
	return &InvalidTransitionError{From: r.Status, Event: event}
}

// apply moves r to the status reached by event and records it in the history.
// r is left unchanged on error.
func (r *Result) apply(event, by string, at time.Time, note string) error {
	to, err := Next(r.Status, event)
	if err != nil {
		return err
	}
	r.History = append(r.History, Entry{From: r.Status, To: to, Event: event, By: by, At: at, Note: note})
	r.Status = to
	r.UpdatedAt = at

	switch event {
	case EventSubmit, EventResubmit:
		r.SubmittedAt = &at
	case EventApprove:
		r.ReviewedAt = &at
		r.ReviewedBy = by
		r.RejectionReason = ""
	case EventReject:
		r.ReviewedAt = &at
		r.ReviewedBy = by
		r.RejectionReason = note
	case EventSend:
		r.SentToParentAt = &at
	}
	return nil
}
