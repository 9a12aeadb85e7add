package main

import (
	"fmt"
	"time"
)

// CallRole identifies which side of the call this device is on.
type CallRole string

const (
	RoleCaller CallRole = "caller"
	RoleCallee CallRole = "callee"
)

// CallState represents states of an active call session. The zero value is
// StateIdle, which is equivalent to "no session".
type CallState int

const (
	StateIdle CallState = iota
	StateRinging
	StateCalling
	StateConnected
	StateTerminating
)

func (s CallState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRinging:
		return "ringing"
	case StateCalling:
		return "calling"
	case StateConnected:
		return "connected"
	case StateTerminating:
		return "terminating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal result of a call session.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeMissed    Outcome = "missed"
	OutcomeNoAnswer  Outcome = "no_answer"
	OutcomeDeclined  Outcome = "declined"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// CallSession holds state for a single call between this device and one peer.
type CallSession struct {
	ID          string
	PeerID      string
	PeerName    string
	Role        CallRole
	State       CallState
	StartedAt   time.Time
	ConnectedAt time.Time
	Duration    time.Duration
	Outcome     Outcome

	// logged flips to true the moment the session has been handed to the
	// recorder, whichever terminal path got there first.
	logged bool
}

// transcriptLine renders the human-readable line appended to the chat
// transcript for a finished session.
func (s *CallSession) transcriptLine() string {
	switch s.Outcome {
	case OutcomeCompleted:
		return fmt.Sprintf("Call Ended (%s)", formatCallDuration(s.Duration))
	case OutcomeMissed:
		return "Missed Call"
	case OutcomeNoAnswer:
		return "No Answer"
	case OutcomeDeclined:
		return "Call Declined"
	case OutcomeCancelled:
		return "Call Cancelled"
	default:
		return "Voice Call"
	}
}

// formatCallDuration renders durations the way they appear in the chat
// transcript, e.g. "1m 12s" or "45s".
func formatCallDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
