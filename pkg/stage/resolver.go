// Package stage derives the agent-stage indicator: what the live voice
// pipeline is doing right now. The stage is never set directly; it is a
// function of call lifecycle events and the most recent lead status.
package stage

import (
	"strings"

	"github.com/sophiie/orbit/pkg/leads"
)

// Stage is the cross-channel agent activity indicator.
type Stage string

const (
	Idle          Stage = "idle"
	Receptionist  Stage = "receptionist"
	Estimating    Stage = "estimating"
	TradieCopilot Stage = "tradie_copilot"
	Completed     Stage = "completed"
)

// internalCallerPrefix marks LiveKit identities belonging to the
// tradie's own account. Customer callers present a phone number instead.
const internalCallerPrefix = "user-"

// Resolver tracks the inputs the stage depends on. While a call is
// active the call-derived stage wins; lead statuses arriving mid-call
// are still recorded so the stage snaps to the right value the moment
// the call ends.
//
// Resolver is not safe for concurrent use; the coordinator serializes
// all event application.
type Resolver struct {
	stage        Stage
	callActive   bool
	latestStatus string
}

// NewResolver returns a resolver in the idle stage.
func NewResolver() *Resolver {
	return &Resolver{stage: Idle}
}

// Stage returns the current derived stage.
func (r *Resolver) Stage() Stage {
	return r.stage
}

// CallActive reports whether a call-started event has been seen without
// a matching call-ended.
func (r *Resolver) CallActive() bool {
	return r.callActive
}

// OnCallStarted applies a call_status started event. An internal caller
// means the tradie is on the line with the copilot; anyone else is a
// customer being handled by the receptionist.
func (r *Resolver) OnCallStarted(caller string) Stage {
	r.callActive = true
	if strings.HasPrefix(caller, internalCallerPrefix) {
		r.stage = TradieCopilot
	} else {
		r.stage = Receptionist
	}
	return r.stage
}

// OnCallEnded applies a call_status ended event. The stage re-derives
// from the latest lead status seen rather than resetting to idle, so a
// lead that progressed during the call is reflected immediately.
func (r *Resolver) OnCallEnded() Stage {
	r.callActive = false
	r.stage = stageForStatus(r.latestStatus)
	return r.stage
}

// OnLeadStatus records a lead lifecycle status. The derived stage only
// changes when no call is active; during a call the recorded status
// waits for OnCallEnded.
func (r *Resolver) OnLeadStatus(rawStatus string) Stage {
	r.latestStatus = rawStatus
	if !r.callActive {
		r.stage = stageForStatus(rawStatus)
	}
	return r.stage
}

func stageForStatus(rawStatus string) Stage {
	switch rawStatus {
	case leads.RawNew, leads.RawDetailsCollected, leads.RawMediaPending, leads.RawPricing:
		return Estimating
	case leads.RawTradieReview:
		return TradieCopilot
	case leads.RawConfirmed, leads.RawBooked:
		return Completed
	default:
		return Idle
	}
}
