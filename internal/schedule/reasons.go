// Package schedule implements the reservation scheduling core: booking
// eligibility, conflict detection, reservation writes, and availability views.
package schedule

// ReasonCode identifies why a booking request was rejected. Rejections are
// structured results returned to the caller, never errors; only store or
// transport failures surface as errors.
type ReasonCode string

const (
	ReasonOutOfWindow         ReasonCode = "OUT_OF_WINDOW"
	ReasonCellOccupied        ReasonCode = "CELL_OCCUPIED"
	ReasonDuplicateDaily      ReasonCode = "DUPLICATE_DAILY_BOOKING"
	ReasonIneligibleRole      ReasonCode = "INELIGIBLE_ROLE"
	ReasonInactiveParticipant ReasonCode = "INACTIVE_PARTICIPANT"
	ReasonUnauthorizedAction  ReasonCode = "UNAUTHORIZED_ACTION"
)

var reasonMessages = map[ReasonCode]string{
	ReasonOutOfWindow:         "The requested date is outside your booking window.",
	ReasonCellOccupied:        "One or more of the requested court times is already booked.",
	ReasonDuplicateDaily:      "You already have a reservation on this day.",
	ReasonIneligibleRole:      "Your role does not permit this booking type.",
	ReasonInactiveParticipant: "All players must be active members.",
	ReasonUnauthorizedAction:  "You are not allowed to change this reservation.",
}

// Rejection is a structured validation failure.
type Rejection struct {
	Code    ReasonCode
	Message string
}

func reject(code ReasonCode) *Rejection {
	return &Rejection{Code: code, Message: reasonMessages[code]}
}

func rejectWith(code ReasonCode, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}
