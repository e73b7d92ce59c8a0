package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/testutil"
)

// Tests run against a fixed midday instant so window math is stable.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, clubtime.Location)

func setupScheduleTest(t *testing.T) (*db.DB, *Service) {
	t.Helper()
	database := testutil.NewTestDB(t)
	svc := NewService(database, clubtime.FixedClock{Time: testNow})
	return database, svc
}

func testDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := clubtime.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return date
}

func mustCreate(t *testing.T, svc *Service, member *authz.AuthMember, req Request) BatchResult {
	t.Helper()
	result, err := svc.Create(context.Background(), member, req)
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if rejection := result.FirstRejection(); rejection != nil {
		t.Fatalf("unexpected rejection: %s (%s)", rejection.Code, rejection.Message)
	}
	return result
}

func regularRequest(date time.Time, slot, court int) Request {
	return Request{
		Type:   TypeRegular,
		Date:   date,
		Slots:  []int{slot},
		Courts: []int{court},
	}
}

func TestCreateRegularRoundTrip(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, member, regularRequest(date, 3, 2))
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}
	if result.GroupID != "" {
		t.Errorf("single-cell booking should not carry a group id")
	}

	grid, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	slot := grid.Slots[2]
	if slot.SlotIndex != 3 {
		t.Fatalf("slot index = %d", slot.SlotIndex)
	}
	summary, ok := slot.ReservationsByCourt[2]
	if !ok {
		t.Fatal("booked cell missing from availability")
	}
	if summary.MemberID != member.ID || summary.Type != string(TypeRegular) {
		t.Errorf("cell summary = %+v", summary)
	}
	if slot.AvailableCourts != clubtime.CourtCount-1 {
		t.Errorf("available courts = %d", slot.AvailableCourts)
	}
	if slot.IsFull {
		t.Error("slot with free courts reported full")
	}
}

func TestCreateRegularCellOccupied(t *testing.T) {
	database, svc := setupScheduleTest(t)
	first := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	second := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	mustCreate(t, svc, first, regularRequest(date, 5, 1))

	result, err := svc.Create(context.Background(), second, regularRequest(date, 5, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	rejection := result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonCellOccupied {
		t.Fatalf("rejection = %+v, want CELL_OCCUPIED", rejection)
	}

	// The adjacent court is still free.
	mustCreate(t, svc, second, regularRequest(date, 5, 2))
}

func TestCreateRegularDuplicateDaily(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	mustCreate(t, svc, member, regularRequest(date, 1, 1))

	result, err := svc.Create(context.Background(), member, regularRequest(date, 2, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection := result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonDuplicateDaily {
		t.Fatalf("rejection = %+v, want DUPLICATE_DAILY_BOOKING", rejection)
	}

	// A second booking on another day is fine.
	mustCreate(t, svc, member, regularRequest(testDate(t, "2026-03-04"), 2, 2))
}

func TestCreateRegularDuplicateIgnoresCancelled(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, member, regularRequest(date, 1, 1))
	if _, err := svc.Cancel(context.Background(), member, result.Outcomes[0].ReservationID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	mustCreate(t, svc, member, regularRequest(date, 1, 1))
}

func TestCreateRegularWindow(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	// Day six from the fixed instant is the inclusive upper bound.
	mustCreate(t, svc, member, regularRequest(testDate(t, "2026-03-08"), 1, 1))

	result, err := svc.Create(context.Background(), member, regularRequest(testDate(t, "2026-03-09"), 1, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection := result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonOutOfWindow {
		t.Fatalf("rejection = %+v, want OUT_OF_WINDOW", rejection)
	}

	past, err := svc.Create(context.Background(), member, regularRequest(testDate(t, "2026-03-01"), 1, 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection = past.FirstRejection()
	if rejection == nil || rejection.Code != ReasonOutOfWindow {
		t.Fatalf("rejection = %+v, want OUT_OF_WINDOW for past date", rejection)
	}
}

func TestWindowExtendsInTheEvening(t *testing.T) {
	database := testutil.NewTestDB(t)
	evening := time.Date(2026, 3, 2, 22, 30, 0, 0, clubtime.Location)
	svc := NewService(database, clubtime.FixedClock{Time: evening})
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	mustCreate(t, svc, member, regularRequest(testDate(t, "2026-03-09"), 1, 1))
}

func TestRoleEligibility(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	tests := []struct {
		name   string
		caller *authz.AuthMember
		rtype  ReservationType
	}{
		{name: "member cannot book league", caller: member, rtype: TypeLeague},
		{name: "member cannot book club", caller: member, rtype: TypeClub},
		{name: "admin cannot book league", caller: admin, rtype: TypeLeague},
	}

	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Create(context.Background(), tc.caller, Request{
				Type:   tc.rtype,
				Date:   date,
				Slots:  []int{1},
				Courts: []int{i + 1},
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			rejection := result.FirstRejection()
			if rejection == nil || rejection.Code != ReasonIneligibleRole {
				t.Fatalf("rejection = %+v, want INELIGIBLE_ROLE", rejection)
			}
		})
	}
}

func TestLeagueBookingRequiresAssignment(t *testing.T) {
	database, svc := setupScheduleTest(t)
	coordinator := testutil.SeedMember(t, database, authz.RoleLeagueCoordinator, authz.StatusActive)
	other := testutil.SeedMember(t, database, authz.RoleLeagueCoordinator, authz.StatusActive)
	leagueID := testutil.SeedLeague(t, database, "Monday Night", coordinator.ID)

	// League bookings skip the window's upper bound.
	farOut := testDate(t, "2026-05-01")
	mustCreate(t, svc, coordinator, Request{
		Type:     TypeLeague,
		Date:     farOut,
		Slots:    []int{7},
		Courts:   []int{1, 2},
		LeagueID: leagueID,
		Name:     "Monday Night",
	})

	result, err := svc.Create(context.Background(), other, Request{
		Type:     TypeLeague,
		Date:     farOut,
		Slots:    []int{8},
		Courts:   []int{1},
		LeagueID: leagueID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection := result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonIneligibleRole {
		t.Fatalf("rejection = %+v, want INELIGIBLE_ROLE for unassigned coordinator", rejection)
	}

	missing, err := svc.Create(context.Background(), coordinator, Request{
		Type:   TypeLeague,
		Date:   farOut,
		Slots:  []int{9},
		Courts: []int{1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection = missing.FirstRejection()
	if rejection == nil || rejection.Code != ReasonIneligibleRole {
		t.Fatalf("rejection = %+v, want INELIGIBLE_ROLE without a league", rejection)
	}
}

func TestClubMultiCellBooking(t *testing.T) {
	database, svc := setupScheduleTest(t)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	// Beyond the member window: club events skip the upper bound.
	date := testDate(t, "2026-04-15")

	result := mustCreate(t, svc, admin, Request{
		Type:   TypeClub,
		Date:   date,
		Slots:  []int{2, 3},
		Courts: []int{1, 2},
		Name:   "Spring Social",
	})
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}
	if result.GroupID == "" {
		t.Error("multi-cell booking missing group id")
	}

	grid, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	occupied := 0
	for _, slot := range grid.Slots {
		occupied += len(slot.ReservationsByCourt)
	}
	if occupied != 4 {
		t.Errorf("occupied cells = %d, want 4", occupied)
	}

	// A single occupied cell rejects an overlapping multi-cell request whole.
	overlap, err := svc.Create(context.Background(), admin, Request{
		Type:   TypeClub,
		Date:   date,
		Slots:  []int{3, 4},
		Courts: []int{2, 3},
		Name:   "Overlap",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection := overlap.FirstRejection()
	if rejection == nil || rejection.Code != ReasonCellOccupied {
		t.Fatalf("rejection = %+v, want CELL_OCCUPIED", rejection)
	}
	after, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	occupied = 0
	for _, slot := range after.Slots {
		occupied += len(slot.ReservationsByCourt)
	}
	if occupied != 4 {
		t.Errorf("occupied cells after rejected overlap = %d, want 4", occupied)
	}
}

func TestRecurringBestEffort(t *testing.T) {
	database, svc := setupScheduleTest(t)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)

	// Occupy the third week's cell before the recurring request arrives.
	blocked := testDate(t, "2026-03-17")
	mustCreate(t, svc, admin, Request{
		Type:   TypeClub,
		Date:   blocked,
		Slots:  []int{6},
		Courts: []int{1},
		Name:   "Board Meeting",
	})

	result, err := svc.Create(context.Background(), admin, Request{
		Type:         TypeClub,
		Date:         testDate(t, "2026-03-03"),
		Slots:        []int{6},
		Courts:       []int{1},
		Name:         "Tuesday Clinic",
		RepeatWeekly: true,
		RepeatWeeks:  4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(result.Outcomes))
	}
	if result.GroupID == "" {
		t.Error("recurring booking missing group id")
	}
	for i, outcome := range result.Outcomes {
		if i == 2 {
			if outcome.Rejection == nil || outcome.Rejection.Code != ReasonCellOccupied {
				t.Errorf("week 3 outcome = %+v, want CELL_OCCUPIED", outcome.Rejection)
			}
			continue
		}
		if outcome.Rejection != nil {
			t.Errorf("week %d rejected: %+v", i+1, outcome.Rejection)
		}
		reservation, err := database.Queries.GetReservation(context.Background(), outcome.ReservationID)
		if err != nil {
			t.Fatalf("load reservation: %v", err)
		}
		if reservation.GroupID.String != result.GroupID {
			t.Errorf("week %d group id = %q, want %q", i+1, reservation.GroupID.String, result.GroupID)
		}
	}
}

func TestCreateInactiveParticipant(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	pending := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusPending)
	date := testDate(t, "2026-03-03")

	req := regularRequest(date, 1, 1)
	req.Players = []string{pending.ID}
	result, err := svc.Create(context.Background(), member, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection := result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonInactiveParticipant {
		t.Fatalf("rejection = %+v, want INACTIVE_PARTICIPANT", rejection)
	}

	// Unknown player ids count as inactive.
	req.Players = []string{"no-such-member"}
	result, err = svc.Create(context.Background(), member, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection = result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonInactiveParticipant {
		t.Fatalf("rejection = %+v, want INACTIVE_PARTICIPANT for unknown id", rejection)
	}

	inactiveCaller := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusInactive)
	result, err = svc.Create(context.Background(), inactiveCaller, regularRequest(date, 2, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejection = result.FirstRejection()
	if rejection == nil || rejection.Code != ReasonInactiveParticipant {
		t.Fatalf("rejection = %+v, want INACTIVE_PARTICIPANT for inactive caller", rejection)
	}
}

func TestCancelFreesCellAndIsIdempotent(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, member, regularRequest(date, 4, 4))
	reservationID := result.Outcomes[0].ReservationID

	rejection, err := svc.Cancel(context.Background(), member, reservationID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if rejection != nil {
		t.Fatalf("cancel rejected: %+v", rejection)
	}

	grid, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(grid.Slots[3].ReservationsByCourt) != 0 {
		t.Error("cancelled cell still occupied")
	}

	// Second cancel is a no-op success.
	rejection, err = svc.Cancel(context.Background(), member, reservationID)
	if err != nil || rejection != nil {
		t.Fatalf("repeat cancel: rejection=%+v err=%v", rejection, err)
	}

	// The freed cell is immediately bookable by someone else.
	other := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	mustCreate(t, svc, other, regularRequest(date, 4, 4))
}

func TestCancelAuthority(t *testing.T) {
	database, svc := setupScheduleTest(t)
	owner := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	player := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	stranger := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	req := regularRequest(date, 1, 1)
	req.Players = []string{player.ID}
	result := mustCreate(t, svc, owner, req)
	reservationID := result.Outcomes[0].ReservationID

	rejection, err := svc.Cancel(context.Background(), stranger, reservationID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if rejection == nil || rejection.Code != ReasonUnauthorizedAction {
		t.Fatalf("rejection = %+v, want UNAUTHORIZED_ACTION", rejection)
	}

	// A listed player may cancel a regular reservation.
	rejection, err = svc.Cancel(context.Background(), player, reservationID)
	if err != nil || rejection != nil {
		t.Fatalf("player cancel: rejection=%+v err=%v", rejection, err)
	}

	// Admins can cancel anything, including club events they do not own.
	clubResult := mustCreate(t, svc, admin, Request{
		Type:   TypeClub,
		Date:   date,
		Slots:  []int{9},
		Courts: []int{4},
		Name:   "Social",
	})
	otherAdmin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	rejection, err = svc.Cancel(context.Background(), otherAdmin, clubResult.Outcomes[0].ReservationID)
	if err != nil || rejection != nil {
		t.Fatalf("admin cancel: rejection=%+v err=%v", rejection, err)
	}

	if _, err := svc.Cancel(context.Background(), owner, "no-such-id"); err != ErrNotFound {
		t.Fatalf("missing reservation err = %v, want ErrNotFound", err)
	}
}

func TestEditReservation(t *testing.T) {
	database, svc := setupScheduleTest(t)
	owner := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	other := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, owner, regularRequest(date, 2, 2))
	reservationID := result.Outcomes[0].ReservationID

	// Re-submitting the current cell does not conflict with itself.
	rejection, err := svc.Edit(context.Background(), owner, reservationID, EditRequest{
		Date: date, Slot: 2, Court: 2,
	})
	if err != nil || rejection != nil {
		t.Fatalf("same-cell edit: rejection=%+v err=%v", rejection, err)
	}

	// Move to a free cell on another bookable day.
	newDate := testDate(t, "2026-03-05")
	rejection, err = svc.Edit(context.Background(), owner, reservationID, EditRequest{
		Date: newDate, Slot: 7, Court: 3,
	})
	if err != nil || rejection != nil {
		t.Fatalf("move edit: rejection=%+v err=%v", rejection, err)
	}

	oldGrid, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(oldGrid.Slots[1].ReservationsByCourt) != 0 {
		t.Error("old cell still occupied after move")
	}
	newGrid, err := svc.Availability(context.Background(), newDate)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if _, ok := newGrid.Slots[6].ReservationsByCourt[3]; !ok {
		t.Error("new cell not occupied after move")
	}

	// Moving onto someone else's cell conflicts.
	mustCreate(t, svc, other, regularRequest(newDate, 8, 1))
	rejection, err = svc.Edit(context.Background(), owner, reservationID, EditRequest{
		Date: newDate, Slot: 8, Court: 1,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if rejection == nil || rejection.Code != ReasonCellOccupied {
		t.Fatalf("rejection = %+v, want CELL_OCCUPIED", rejection)
	}

	// Only the owner or a listed player may edit.
	rejection, err = svc.Edit(context.Background(), other, reservationID, EditRequest{
		Date: newDate, Slot: 9, Court: 4,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if rejection == nil || rejection.Code != ReasonUnauthorizedAction {
		t.Fatalf("rejection = %+v, want UNAUTHORIZED_ACTION", rejection)
	}
}

func TestEditAppliesOwnerWindow(t *testing.T) {
	database, svc := setupScheduleTest(t)
	owner := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, owner, regularRequest(date, 1, 1))
	reservationID := result.Outcomes[0].ReservationID

	// Even an admin cannot move a member's booking past the member window.
	rejection, err := svc.Edit(context.Background(), admin, reservationID, EditRequest{
		Date: testDate(t, "2026-04-01"), Slot: 1, Court: 1,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if rejection == nil || rejection.Code != ReasonOutOfWindow {
		t.Fatalf("rejection = %+v, want OUT_OF_WINDOW", rejection)
	}
}

func TestEditRejectsNonRegular(t *testing.T) {
	database, svc := setupScheduleTest(t)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	date := testDate(t, "2026-03-03")

	result := mustCreate(t, svc, admin, Request{
		Type:   TypeClub,
		Date:   date,
		Slots:  []int{1},
		Courts: []int{1},
		Name:   "Social",
	})

	rejection, err := svc.Edit(context.Background(), admin, result.Outcomes[0].ReservationID, EditRequest{
		Date: date, Slot: 2, Court: 2,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if rejection == nil || rejection.Code != ReasonUnauthorizedAction {
		t.Fatalf("rejection = %+v, want UNAUTHORIZED_ACTION", rejection)
	}
}

func TestRangeAvailability(t *testing.T) {
	database, svc := setupScheduleTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	mustCreate(t, svc, member, regularRequest(testDate(t, "2026-03-03"), 1, 1))

	days, err := svc.RangeAvailability(context.Background(),
		testDate(t, "2026-03-02"), testDate(t, "2026-03-04"))
	if err != nil {
		t.Fatalf("range availability: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	want := map[string]int{"2026-03-02": 0, "2026-03-03": 1, "2026-03-04": 0}
	for _, day := range days {
		if day.BookedSlots != want[day.Date] {
			t.Errorf("%s booked = %d, want %d", day.Date, day.BookedSlots, want[day.Date])
		}
		if day.TotalSlots != clubtime.SlotCount*clubtime.CourtCount {
			t.Errorf("%s total = %d", day.Date, day.TotalSlots)
		}
	}
}

func TestUpcoming(t *testing.T) {
	database, svc := setupScheduleTest(t)
	owner := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	player := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	date := testDate(t, "2026-03-04")

	req := regularRequest(date, 3, 3)
	req.Players = []string{player.ID}
	result := mustCreate(t, svc, owner, req)
	reservationID := result.Outcomes[0].ReservationID

	for _, caller := range []*authz.AuthMember{owner, player} {
		upcoming, err := svc.Upcoming(context.Background(), caller)
		if err != nil {
			t.Fatalf("upcoming: %v", err)
		}
		if len(upcoming) != 1 {
			t.Fatalf("upcoming = %d, want 1", len(upcoming))
		}
		view := upcoming[0]
		if view.ID != reservationID || view.Date != "2026-03-04" {
			t.Errorf("view = %+v", view)
		}
		if !view.CanManage {
			t.Error("regular reservation should be manageable by owner and players")
		}
		if len(view.PlayerIDs) != 2 || view.PlayerIDs[0] != owner.ID {
			t.Errorf("players = %v", view.PlayerIDs)
		}
	}

	// Cancelled reservations drop out of the view.
	if _, err := svc.Cancel(context.Background(), owner, reservationID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	upcoming, err := svc.Upcoming(context.Background(), owner)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 0 {
		t.Errorf("upcoming after cancel = %d, want 0", len(upcoming))
	}
}

func TestValidateShape(t *testing.T) {
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, clubtime.Location)

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name: "regular one cell",
			req:  Request{Type: TypeRegular, Date: date, Slots: []int{1}, Courts: []int{1}},
		},
		{
			name:    "unknown type",
			req:     Request{Type: "OPEN_PLAY", Date: date, Slots: []int{1}, Courts: []int{1}},
			wantErr: true,
		},
		{
			name:    "regular multi cell",
			req:     Request{Type: TypeRegular, Date: date, Slots: []int{1, 2}, Courts: []int{1}},
			wantErr: true,
		},
		{
			name:    "slot out of range",
			req:     Request{Type: TypeClub, Date: date, Slots: []int{10}, Courts: []int{1}},
			wantErr: true,
		},
		{
			name:    "court out of range",
			req:     Request{Type: TypeClub, Date: date, Slots: []int{1}, Courts: []int{5}},
			wantErr: true,
		},
		{
			name:    "no slots",
			req:     Request{Type: TypeClub, Date: date, Courts: []int{1}},
			wantErr: true,
		},
		{
			name:    "regular cannot repeat",
			req:     Request{Type: TypeRegular, Date: date, Slots: []int{1}, Courts: []int{1}, RepeatWeekly: true, RepeatWeeks: 2},
			wantErr: true,
		},
		{
			name:    "repeat weeks over cap",
			req:     Request{Type: TypeClub, Date: date, Slots: []int{1}, Courts: []int{1}, RepeatWeekly: true, RepeatWeeks: 27},
			wantErr: true,
		},
		{
			name: "repeat weeks at cap",
			req:  Request{Type: TypeClub, Date: date, Slots: []int{1}, Courts: []int{1}, RepeatWeekly: true, RepeatWeeks: 26},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.ValidateShape()
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
