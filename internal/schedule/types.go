package schedule

import (
	"time"

	"github.com/crtc/courtbook/internal/api/apiutil"
	"github.com/crtc/courtbook/internal/clubtime"
)

// ReservationType distinguishes self-service bookings from the elevated
// league and club-event types.
type ReservationType string

const (
	TypeRegular ReservationType = "REGULAR"
	TypeLeague  ReservationType = "LEAGUE"
	TypeClub    ReservationType = "CLUB"
)

const (
	minRepeatWeeks = 1
	maxRepeatWeeks = 26
)

// Cell is a (slot, court) pair, the atomic unit of booking within a date.
type Cell struct {
	Slot  int
	Court int
}

// Request is a booking submission after transport decoding. For REGULAR
// requests Slots and Courts each hold exactly one entry; for LEAGUE and CLUB
// the requested cells are the cross-product of Slots and Courts.
type Request struct {
	Type         ReservationType
	Date         time.Time
	Slots        []int
	Courts       []int
	Players      []string
	Name         string
	LeagueID     string
	RepeatWeekly bool
	RepeatWeeks  int
}

// Cells returns the concrete slot×court cross-product of the request.
func (r Request) Cells() []Cell {
	cells := make([]Cell, 0, len(r.Slots)*len(r.Courts))
	for _, slot := range r.Slots {
		for _, court := range r.Courts {
			cells = append(cells, Cell{Slot: slot, Court: court})
		}
	}
	return cells
}

// ValidateShape checks structural validity of the request: slot and court
// indices on the grid, cell-set arity per type, recurrence bounds. Rule
// violations that depend on state (occupancy, roles, windows) belong to the
// validator, not here.
func (r Request) ValidateShape() error {
	switch r.Type {
	case TypeRegular, TypeLeague, TypeClub:
	default:
		return apiutil.FieldError{Field: "type", Reason: "must be REGULAR, LEAGUE, or CLUB"}
	}

	if len(r.Slots) == 0 {
		return apiutil.FieldError{Field: "slots", Reason: "must include at least one slot"}
	}
	if len(r.Courts) == 0 {
		return apiutil.FieldError{Field: "courts", Reason: "must include at least one court"}
	}
	if r.Type == TypeRegular && (len(r.Slots) != 1 || len(r.Courts) != 1) {
		return apiutil.FieldError{Field: "slots", Reason: "regular reservations book exactly one slot and court"}
	}

	for _, slot := range r.Slots {
		if !clubtime.ValidSlot(slot) {
			return apiutil.FieldError{Field: "slots", Reason: "must contain slot indices between 1 and 9"}
		}
	}
	for _, court := range r.Courts {
		if !clubtime.ValidCourt(court) {
			return apiutil.FieldError{Field: "courts", Reason: "must contain court numbers between 1 and 4"}
		}
	}

	if r.RepeatWeekly {
		if r.Type == TypeRegular {
			return apiutil.FieldError{Field: "repeatWeekly", Reason: "is not available for regular reservations"}
		}
		if r.RepeatWeeks < minRepeatWeeks || r.RepeatWeeks > maxRepeatWeeks {
			return apiutil.FieldError{Field: "repeatWeeks", Reason: "must be between 1 and 26"}
		}
	}

	return nil
}

// dates expands the request into the calendar days it books, one week apart
// for recurring submissions.
func (r Request) dates() []time.Time {
	if !r.RepeatWeekly {
		return []time.Time{r.Date}
	}
	dates := make([]time.Time, 0, r.RepeatWeeks)
	for i := 0; i < r.RepeatWeeks; i++ {
		dates = append(dates, r.Date.AddDate(0, 0, i*7))
	}
	return dates
}

// DateOutcome reports what happened to one date of a (possibly recurring)
// submission.
type DateOutcome struct {
	Date          string
	ReservationID string
	Rejection     *Rejection
}

// BatchResult reports a create submission across all of its dates. There is
// no cross-date rollback: Count dates were written even if others failed.
type BatchResult struct {
	Count    int
	GroupID  string
	Outcomes []DateOutcome
}

// FirstRejection returns the first per-date rejection, or nil if every date
// succeeded.
func (r BatchResult) FirstRejection() *Rejection {
	for _, outcome := range r.Outcomes {
		if outcome.Rejection != nil {
			return outcome.Rejection
		}
	}
	return nil
}
