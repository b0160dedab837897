package leads

// CoarseStatus is the four-bucket simplification of the backend's
// fine-grained lead lifecycle statuses.
type CoarseStatus string

const (
	StatusNew       CoarseStatus = "new"
	StatusPending   CoarseStatus = "pending"
	StatusResponded CoarseStatus = "responded"
	StatusClosed    CoarseStatus = "closed"
)

// Raw lifecycle statuses emitted by the authority. New statuses may
// appear server-side at any time; Coarse maps anything unrecognized to
// StatusNew rather than failing.
const (
	RawNew              = "new"
	RawDetailsCollected = "details_collected"
	RawMediaPending     = "media_pending"
	RawPricing          = "pricing"
	RawTradieReview     = "tradie_review"
	RawConfirmed        = "confirmed"
	RawBooked           = "booked"
	RawRejected         = "rejected"
	RawCancelled        = "cancelled"
)

// Coarse maps a raw lifecycle status to its UI bucket.
func Coarse(raw string) CoarseStatus {
	switch raw {
	case RawDetailsCollected, RawMediaPending, RawPricing, RawTradieReview:
		return StatusPending
	case RawConfirmed, RawBooked:
		return StatusResponded
	case RawRejected, RawCancelled:
		return StatusClosed
	default:
		return StatusNew
	}
}
