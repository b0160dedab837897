package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoarse(t *testing.T) {
	tests := []struct {
		raw      string
		expected CoarseStatus
	}{
		{"details_collected", StatusPending},
		{"media_pending", StatusPending},
		{"pricing", StatusPending},
		{"tradie_review", StatusPending},
		{"confirmed", StatusResponded},
		{"booked", StatusResponded},
		{"rejected", StatusClosed},
		{"cancelled", StatusClosed},
		{"new", StatusNew},
		{"", StatusNew},
		{"unknown_future_status", StatusNew},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, Coarse(tt.raw))
		})
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestFromRecord(t *testing.T) {
	rec := Record{
		ID:            "L1",
		CustomerName:  "Dana Henderson",
		CustomerPhone: "+61400000000",
		Address:       "12 Wattle St",
		Suburb:        "Paddington",
		Urgency:       "today",
		Status:        "pricing",
		JobType:       "leaking tap",
		Description:   "Kitchen mixer dripping constantly",
		QuoteTotal:    floatPtr(240.50),
		DistanceKm:    floatPtr(7.3),
		CreatedAt:     "2026-08-12T09:30:00Z",
	}

	lead := FromRecord(rec)

	assert.Equal(t, "L1", lead.ID)
	assert.Equal(t, "Dana Henderson", lead.Name)
	assert.Equal(t, "leaking tap", lead.Subject)
	assert.Equal(t, "pricing", lead.RawStatus)
	assert.Equal(t, StatusPending, lead.Status)
	assert.Equal(t, "12 Wattle St, Paddington", lead.Location)
	assert.Equal(t, 240.50, lead.TotalEstimate)
	assert.Equal(t, 7.3, lead.DistanceKm)
	assert.Equal(t, "2026-08-12T09:30:00Z", lead.RawCreatedAt)
	assert.Equal(t, "12 Aug 09:30", lead.ReceivedAt)
}

func TestFromRecordUnparseableTimestamp(t *testing.T) {
	lead := FromRecord(Record{ID: "L1", CreatedAt: "yesterday-ish"})
	assert.Equal(t, "yesterday-ish", lead.ReceivedAt)
}

func TestUpsert(t *testing.T) {
	list := []Lead{{ID: "a"}, {ID: "b"}}

	// New leads land at the front.
	result := Upsert(list, Lead{ID: "c", Name: "New"})
	require.Len(t, result, 3)
	assert.Equal(t, "c", result[0].ID)

	// A redelivered lead replaces in place instead of duplicating.
	result = Upsert(result, Lead{ID: "b", Name: "Replaced"})
	require.Len(t, result, 3)
	assert.Equal(t, "b", result[2].ID)
	assert.Equal(t, "Replaced", result[2].Name)

	// The input list is untouched.
	assert.Len(t, list, 2)
}

func TestApplyUpdate(t *testing.T) {
	list := []Lead{
		{ID: "L1", Name: "Dana", RawStatus: "new", Status: StatusNew, TotalEstimate: 100},
		{ID: "L2", Name: "Sam"},
	}

	result, updated, found := ApplyUpdate(list, Record{ID: "L1", Status: "confirmed"})
	require.True(t, found)
	assert.Equal(t, StatusResponded, updated.Status)
	assert.Equal(t, "confirmed", updated.RawStatus)

	// Fields absent from the partial record survive the merge.
	assert.Equal(t, "Dana", updated.Name)
	assert.Equal(t, 100.0, updated.TotalEstimate)

	// L2 and the input list are untouched.
	assert.Equal(t, "Sam", result[1].Name)
	assert.Equal(t, StatusNew, list[0].Status)
}

func TestApplyUpdateUnknownID(t *testing.T) {
	list := []Lead{{ID: "L1"}}
	result, _, found := ApplyUpdate(list, Record{ID: "L9", Status: "booked"})
	assert.False(t, found)
	assert.Equal(t, list, result)
}
