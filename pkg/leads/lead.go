package leads

import (
	"strings"
	"time"
)

// Record is the raw lead payload as broadcast by the authority on the
// leads channel and returned by its REST list endpoint. Updates are
// partial: absent fields stay zero-valued and are skipped when merging.
type Record struct {
	ID            string   `json:"id"`
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	Address       string   `json:"address"`
	Suburb        string   `json:"suburb"`
	Urgency       string   `json:"urgency"`
	Status        string   `json:"status"`
	JobType       string   `json:"jobType"`
	Description   string   `json:"description"`
	QuoteTotal    *float64 `json:"quoteTotal"`
	DistanceKm    *float64 `json:"distanceKm"`
	Decision      string   `json:"decision"`
	CreatedAt     string   `json:"createdAt"`
}

// Lead is the client-side view of an enquiry. Status is derived from
// RawStatus via Coarse and kept alongside it so consumers never need
// the raw lifecycle vocabulary.
type Lead struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	Subject       string       `json:"subject"`
	Summary       string       `json:"summary"`
	RawStatus     string       `json:"rawStatus"`
	Status        CoarseStatus `json:"status"`
	Urgency       string       `json:"urgency"`
	ReceivedAt    string       `json:"receivedAt"`
	RawCreatedAt  string       `json:"rawCreatedAt,omitempty"`
	DistanceKm    float64      `json:"distanceKm,omitempty"`
	TotalEstimate float64      `json:"totalEstimate,omitempty"`
	Location      string       `json:"location,omitempty"`
	Decision      string       `json:"decision,omitempty"`
}

// FromRecord normalizes a raw backend record into a Lead.
func FromRecord(rec Record) Lead {
	lead := Lead{
		ID:           rec.ID,
		Name:         rec.CustomerName,
		Phone:        rec.CustomerPhone,
		Subject:      rec.JobType,
		Summary:      rec.Description,
		RawStatus:    rec.Status,
		Status:       Coarse(rec.Status),
		Urgency:      rec.Urgency,
		RawCreatedAt: rec.CreatedAt,
		ReceivedAt:   displayTime(rec.CreatedAt),
		Location:     location(rec.Address, rec.Suburb),
		Decision:     rec.Decision,
	}
	if rec.DistanceKm != nil {
		lead.DistanceKm = *rec.DistanceKm
	}
	if rec.QuoteTotal != nil {
		lead.TotalEstimate = *rec.QuoteTotal
	}
	return lead
}

// Upsert prepends a freshly-arrived lead to the list. If a lead with
// the same id already exists it is replaced in place instead, which
// keeps redelivered new_lead frames from producing duplicates.
func Upsert(list []Lead, lead Lead) []Lead {
	for i, existing := range list {
		if existing.ID == lead.ID {
			out := make([]Lead, len(list))
			copy(out, list)
			out[i] = lead
			return out
		}
	}
	out := make([]Lead, 0, len(list)+1)
	out = append(out, lead)
	out = append(out, list...)
	return out
}

// ApplyUpdate merges a partial record into the matching lead and
// returns the new list plus the post-merge lead. A record for an
// unknown id is a no-op (found=false): updates can outrun the initial
// hydration across reconnects.
func ApplyUpdate(list []Lead, rec Record) (result []Lead, updated Lead, found bool) {
	for i, existing := range list {
		if existing.ID != rec.ID {
			continue
		}
		out := make([]Lead, len(list))
		copy(out, list)
		out[i] = mergeRecord(existing, rec)
		return out, out[i], true
	}
	return list, Lead{}, false
}

// mergeRecord overlays the non-empty fields of a partial record onto an
// existing lead.
func mergeRecord(lead Lead, rec Record) Lead {
	if rec.Status != "" {
		lead.RawStatus = rec.Status
		lead.Status = Coarse(rec.Status)
	}
	if rec.CustomerName != "" {
		lead.Name = rec.CustomerName
	}
	if rec.CustomerPhone != "" {
		lead.Phone = rec.CustomerPhone
	}
	if rec.JobType != "" {
		lead.Subject = rec.JobType
	}
	if rec.Description != "" {
		lead.Summary = rec.Description
	}
	if rec.Urgency != "" {
		lead.Urgency = rec.Urgency
	}
	if rec.Decision != "" {
		lead.Decision = rec.Decision
	}
	if loc := location(rec.Address, rec.Suburb); loc != "" {
		lead.Location = loc
	}
	if rec.DistanceKm != nil {
		lead.DistanceKm = *rec.DistanceKm
	}
	if rec.QuoteTotal != nil {
		lead.TotalEstimate = *rec.QuoteTotal
	}
	return lead
}

// displayTime formats an RFC 3339 timestamp for the enquiry list. The
// raw value is kept on the lead for sorting; an unparseable value is
// shown as-is.
func displayTime(createdAt string) string {
	if createdAt == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format("2 Jan 15:04")
}

func location(address, suburb string) string {
	parts := make([]string, 0, 2)
	if address != "" {
		parts = append(parts, address)
	}
	if suburb != "" {
		parts = append(parts, suburb)
	}
	return strings.Join(parts, ", ")
}
