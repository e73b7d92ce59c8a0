package clubtime

import (
	"testing"
	"time"
)

func localTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, Location)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name    string
		now     string
		wantMin string
		wantMax string
	}{
		{
			name:    "morning keeps six days ahead",
			now:     "2026-03-02 09:00",
			wantMin: "2026-03-02",
			wantMax: "2026-03-08",
		},
		{
			name:    "just before ten pm keeps six days",
			now:     "2026-03-02 21:59",
			wantMin: "2026-03-02",
			wantMax: "2026-03-08",
		},
		{
			name:    "at ten pm extends to seven days",
			now:     "2026-03-02 22:00",
			wantMin: "2026-03-02",
			wantMax: "2026-03-09",
		},
		{
			name:    "late night stays extended",
			now:     "2026-03-02 23:30",
			wantMin: "2026-03-02",
			wantMax: "2026-03-09",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			min, max := Window(localTime(t, tc.now))
			if got := FormatDate(min); got != tc.wantMin {
				t.Errorf("min = %s, want %s", got, tc.wantMin)
			}
			if got := FormatDate(max); got != tc.wantMax {
				t.Errorf("max = %s, want %s", got, tc.wantMax)
			}
		})
	}
}

func TestCheckWindow(t *testing.T) {
	now := "2026-03-02 12:00"

	tests := []struct {
		name      string
		date      string
		skip      bool
		wantValid bool
	}{
		{name: "today is bookable", date: "2026-03-02", wantValid: true},
		{name: "upper bound inclusive", date: "2026-03-08", wantValid: true},
		{name: "one past upper bound rejected", date: "2026-03-09", wantValid: false},
		{name: "far future rejected", date: "2026-06-01", wantValid: false},
		{name: "yesterday rejected", date: "2026-03-01", wantValid: false},
		{name: "skip bypasses upper bound", date: "2026-06-01", skip: true, wantValid: true},
		{name: "skip never bypasses lower bound", date: "2026-03-01", skip: true, wantValid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, err := ParseDate(tc.date)
			if err != nil {
				t.Fatalf("parse date: %v", err)
			}
			check := CheckWindow(date, localTime(t, now), tc.skip)
			if check.Valid != tc.wantValid {
				t.Errorf("valid = %v, want %v (reason %q)", check.Valid, tc.wantValid, check.Reason)
			}
			if !check.Valid && check.Reason == "" {
				t.Error("invalid result missing reason")
			}
		})
	}
}

func TestCheckWindowExtendedEvening(t *testing.T) {
	// At 22:00 the next window day opens.
	date, _ := ParseDate("2026-03-09")

	before := CheckWindow(date, localTime(t, "2026-03-02 21:00"), false)
	if before.Valid {
		t.Error("day seven should be closed before 22:00")
	}
	after := CheckWindow(date, localTime(t, "2026-03-02 22:00"), false)
	if !after.Valid {
		t.Errorf("day seven should open at 22:00, got %q", after.Reason)
	}
}

func TestTodayUsesClubTimeZone(t *testing.T) {
	// 2026-03-03 01:00 UTC is still 2026-03-02 evening in the club's zone.
	utc := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	today := Today(FixedClock{Time: utc})
	if got := FormatDate(today); got != "2026-03-02" {
		t.Errorf("today = %s, want 2026-03-02", got)
	}
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, value := range []string{"", "03/02/2026", "2026-3-2", "2026-13-40", "tomorrow"} {
		if _, err := ParseDate(value); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", value)
		}
	}
}
