package production

import (
	"time"

	"github.com/andrescamacho/imperium/internal/domain/queue"
)

// EntryView is the projection of a queue entry returned to callers
type EntryView struct {
	ID            string     `json:"id"`
	Track         string     `json:"track"`
	Location      string     `json:"locationCoord"`
	ItemKey       string     `json:"itemKey"`
	TargetLevel   int        `json:"targetLevel"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletesAt   *time.Time `json:"completesAt"`
	ETASeconds    *int64     `json:"etaSeconds"`
	ChargedAmount int64      `json:"chargedAmount"`
	Deferred      bool       `json:"deferred"`
}

// ToEntryView projects an entry as seen at now
func ToEntryView(e *queue.Entry, now time.Time) *EntryView {
	view := &EntryView{
		ID:            e.ID(),
		Track:         e.Track().String(),
		Location:      e.Location().String(),
		ItemKey:       e.ItemKey(),
		TargetLevel:   e.TargetLevel(),
		Status:        e.Status().String(),
		StartedAt:     e.StartedAt(),
		CompletesAt:   e.CompletesAt(),
		ChargedAmount: e.ChargedAmount(),
		Deferred:      e.IsPending() && !e.IsActive(),
	}
	if e.IsActive() {
		seconds := int64(e.Remaining(now) / time.Second)
		view.ETASeconds = &seconds
	}
	return view
}

// CancelResult reports a successful cancellation
type CancelResult struct {
	CancelledID    string `json:"cancelledId"`
	RefundedAmount int64  `json:"refundedAmount"`
}
