package clubtime

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar days, always club-local.
	DateLayout = "2006-01-02"

	// Booking window: opens at 22:00 local, 7 days before the target date.
	windowDaysAhead = 6
	windowOpenHour  = 22
	extendedDaysOut = 7
)

// Location is the club's time zone. The club operates on Eastern time
// regardless of where the server or the caller happens to be.
var Location *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("clubtime: load club time zone: %v", err))
	}
	Location = loc
}

// Today returns the current calendar day in the club's time zone,
// truncated to midnight local.
func Today(clock Clock) time.Time {
	now := clock.Now().In(Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location)
}

// Window returns the inclusive [min, max] range of bookable dates for a
// non-privileged member at the given instant. The minimum is always today;
// the maximum is today+6, extended to today+7 once local time reaches 22:00.
func Window(now time.Time) (min, max time.Time) {
	local := now.In(Location)
	min = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location)
	daysAhead := windowDaysAhead
	if local.Hour() >= windowOpenHour {
		daysAhead = extendedDaysOut
	}
	max = min.AddDate(0, 0, daysAhead)
	return min, max
}

// WindowCheck is the result of a booking-window validation.
type WindowCheck struct {
	Valid  bool
	Reason string
}

// CheckWindow reports whether date is bookable at the given instant.
// skip disables the upper bound (league/club bookings by privileged roles)
// but never the lower bound: past dates are rejected for everyone.
// A date exactly equal to the upper bound is valid.
func CheckWindow(date time.Time, now time.Time, skip bool) WindowCheck {
	min, max := Window(now)
	if date.Before(min) {
		return WindowCheck{Reason: "date is in the past"}
	}
	if !skip && date.After(max) {
		opens := date.AddDate(0, 0, -extendedDaysOut)
		return WindowCheck{Reason: fmt.Sprintf(
			"booking window not yet open: opens %s at 10:00 PM ET",
			opens.Format(DateLayout))}
	}
	return WindowCheck{Valid: true}
}

// ParseDate parses a YYYY-MM-DD string as a club-local calendar day.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", value)
	}
	return parsed, nil
}

// FormatDate renders a calendar day in wire format.
func FormatDate(date time.Time) string {
	return date.In(Location).Format(DateLayout)
}
