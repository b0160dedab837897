// Package notify derives the notification feed from the lead list.
// Notifications are never stored independently: the feed is recomputed
// from the current leads plus a local read-id set, so it always matches
// the lead list one-to-one.
package notify

import (
	"github.com/sophiie/orbit/pkg/leads"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

// Notification is one derived feed entry. ID is stable across lead
// updates ("notif-" + lead id) so read state keyed on it survives
// status changes.
type Notification struct {
	ID     string       `json:"id"`
	LeadID string       `json:"leadId"`
	Kind   Kind         `json:"kind"`
	Title  string       `json:"title"`
	Body   string       `json:"body,omitempty"`
	Status leads.CoarseStatus `json:"status"`
	Read   bool         `json:"read"`
}

// ReadSet is the read-id set, the only locally-authoritative state in
// the sync core. Keys are notification ids.
type ReadSet map[string]struct{}

// NewReadSet returns an empty read set.
func NewReadSet() ReadSet {
	return make(ReadSet)
}

// Has reports whether the notification id has been marked read.
func (s ReadSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Mark records a notification id as read.
func (s ReadSet) Mark(id string) {
	s[id] = struct{}{}
}

// NotificationID returns the stable notification id for a lead.
func NotificationID(leadID string) string {
	return "notif-" + leadID
}

// Derive synthesizes one notification per lead, in lead-list order.
// Calling it twice with the same inputs yields structurally equal
// output.
func Derive(list []leads.Lead, read ReadSet) []Notification {
	out := make([]Notification, len(list))
	for i, lead := range list {
		id := NotificationID(lead.ID)
		out[i] = Notification{
			ID:     id,
			LeadID: lead.ID,
			Kind:   kindFor(lead.Status),
			Title:  titleFor(lead),
			Body:   lead.Summary,
			Status: lead.Status,
			Read:   read.Has(id),
		}
	}
	return out
}

// MarkAll inserts every notification id derived from the current lead
// list into the read set.
func MarkAll(list []leads.Lead, read ReadSet) {
	for _, lead := range list {
		read.Mark(NotificationID(lead.ID))
	}
}

func kindFor(status leads.CoarseStatus) Kind {
	switch status {
	case leads.StatusResponded:
		return KindSuccess
	case leads.StatusClosed:
		return KindWarning
	default:
		return KindInfo
	}
}

func titleFor(lead leads.Lead) string {
	name := lead.Name
	if name == "" {
		name = "Enquiry"
	}
	switch lead.Status {
	case leads.StatusResponded:
		return "Quote accepted: " + name
	case leads.StatusClosed:
		return "Enquiry closed: " + name
	case leads.StatusPending:
		return "In progress: " + name
	default:
		return "New enquiry: " + name
	}
}
