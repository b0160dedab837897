// Package protocol defines the JSON frames exchanged with the Orbit
// authority over the session and leads WebSocket channels. Every frame
// carries a "type" discriminator; ParseFrame decodes the envelope and
// returns the concrete frame type.
package protocol

import (
	"time"

	"github.com/sophiie/orbit/pkg/leads"
	"github.com/sophiie/orbit/pkg/workspace"
)

// Inbound frame types.
const (
	TypeStatus       = "status"
	TypeIntentParsed = "intent_parsed"
	TypePatch        = "patch"
	TypeNewLead      = "new_lead"
	TypeLeadUpdate   = "lead_update"
	TypeLeadDecided  = "lead_decided"
	TypeCallStatus   = "call_status"
	TypeConnected    = "connected"
	TypePong         = "pong"
)

// Outbound frame types.
const (
	TypeSyncRequest = "sync_request"
	TypeUtterance   = "utterance"
	TypeAction      = "action"
	TypeDecide      = "decide"
	TypePing        = "ping"
)

// ServerStatus values carried by status frames.
const (
	ServerStatusSynced   = "synced"
	ServerStatusThinking = "thinking"
)

// Call lifecycle values carried by call_status frames.
const (
	CallStarted = "started"
	CallEnded   = "ended"
)

// Frame is implemented by every inbound frame.
type Frame interface {
	FrameType() string
}

// StatusFrame reports the authority's processing state for the session.
type StatusFrame struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (f *StatusFrame) FrameType() string { return TypeStatus }

// Intent is one parsed intention extracted from an utterance. The
// client only displays these; the authority applies them and sends the
// resulting patch separately.
type Intent struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Title  string `json:"title,omitempty"`
}

// IntentParsedFrame echoes what the authority understood from the last
// utterance.
type IntentParsedFrame struct {
	Type    string   `json:"type"`
	Intents []Intent `json:"intents"`
}

func (f *IntentParsedFrame) FrameType() string { return TypeIntentParsed }

// PatchFrame carries an ordered batch of workspace operations.
type PatchFrame struct {
	Type       string                `json:"type"`
	Operations []workspace.Operation `json:"operations"`
}

func (f *PatchFrame) FrameType() string { return TypePatch }

// NewLeadFrame announces a freshly created enquiry.
type NewLeadFrame struct {
	Type string       `json:"type"`
	Lead leads.Record `json:"lead"`
}

func (f *NewLeadFrame) FrameType() string { return TypeNewLead }

// LeadUpdateFrame carries a partial update to an existing enquiry. The
// record always has at least id and status.
type LeadUpdateFrame struct {
	Type string       `json:"type"`
	Lead leads.Record `json:"lead"`
}

func (f *LeadUpdateFrame) FrameType() string { return TypeLeadUpdate }

// LeadDecidedFrame announces that a tradie decided on a lead, possibly
// from another device.
type LeadDecidedFrame struct {
	Type      string `json:"type"`
	LeadID    string `json:"lead_id"`
	Decision  string `json:"decision"`
	DecidedBy string `json:"decided_by"`
}

func (f *LeadDecidedFrame) FrameType() string { return TypeLeadDecided }

// CallStatusFrame reports voice pipeline call lifecycle transitions.
// Caller is a phone number for customer calls or a "user-" identity for
// the tradie's own copilot line.
type CallStatusFrame struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Caller string `json:"caller,omitempty"`
	LeadID string `json:"lead_id,omitempty"`
}

func (f *CallStatusFrame) FrameType() string { return TypeCallStatus }

// ConnectedFrame is the greeting the leads channel sends after the
// socket is accepted.
type ConnectedFrame struct {
	Type              string `json:"type"`
	TradieID          string `json:"tradie_id"`
	ActiveConnections int    `json:"active_connections"`
}

func (f *ConnectedFrame) FrameType() string { return TypeConnected }

// PongFrame answers a keep-alive ping.
type PongFrame struct {
	Type string `json:"type"`
}

func (f *PongFrame) FrameType() string { return TypePong }

// SyncRequest asks the session channel for a full workspace snapshot,
// delivered as a patch of add operations.
type SyncRequest struct {
	Type string `json:"type"`
}

// NewSyncRequest builds a sync_request frame.
func NewSyncRequest() SyncRequest {
	return SyncRequest{Type: TypeSyncRequest}
}

// Utterance sources.
const (
	SourceVoice = "voice"
	SourceText  = "text"
	SourceChip  = "chip"
)

// Utterance is a user input forwarded to the authority's AI pipeline.
type Utterance struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// NewUtterance builds an utterance frame stamped with the current time.
func NewUtterance(text, source string) Utterance {
	return Utterance{
		Type:      TypeUtterance,
		Text:      text,
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Action is a direct user action on a workspace component, applied by
// the authority without AI involvement.
type Action struct {
	Type        string                 `json:"type"`
	Action      string                 `json:"action"`
	ComponentID string                 `json:"componentId"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// NewAction builds an action frame.
func NewAction(action, componentID string, payload map[string]interface{}) Action {
	return Action{
		Type:        TypeAction,
		Action:      action,
		ComponentID: componentID,
		Payload:     payload,
	}
}

// Decide is the tradie's approve/reject verdict on a lead, sent on the
// leads channel.
type Decide struct {
	Type     string `json:"type"`
	LeadID   string `json:"lead_id"`
	Decision string `json:"decision"`
}

// NewDecide builds a decide frame.
func NewDecide(leadID, decision string) Decide {
	return Decide{Type: TypeDecide, LeadID: leadID, Decision: decision}
}

// Ping is the leads channel keep-alive.
type Ping struct {
	Type string `json:"type"`
}

// NewPing builds a ping frame.
func NewPing() Ping {
	return Ping{Type: TypePing}
}
