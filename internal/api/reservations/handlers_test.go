package reservations

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/schedule"
	"github.com/crtc/courtbook/internal/testutil"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, clubtime.Location)

func setupReservationTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	svc = nil
	initOnce = sync.Once{}
	InitHandlers(schedule.NewService(database, clubtime.FixedClock{Time: testNow}))

	t.Cleanup(func() {
		svc = nil
		initOnce = sync.Once{}
	})
	return database
}

func withMember(req *http.Request, member *authz.AuthMember) *http.Request {
	return req.WithContext(authz.ContextWithMember(req.Context(), member))
}

func postReservation(t *testing.T, member *authz.AuthMember, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req = withMember(req, member)
	recorder := httptest.NewRecorder()
	HandleReservationCreate(recorder, req)
	return recorder
}

func TestHandleReservationCreate(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	recorder := postReservation(t, member,
		`{"type": "REGULAR", "date": "2026-03-03", "slot": 3, "court": 2, "players": []}`)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	var response createResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.Count != 1 {
		t.Errorf("response = %+v", response)
	}
	if response.ReasonCode != "" {
		t.Errorf("unexpected reason code %s", response.ReasonCode)
	}
}

func TestHandleReservationCreateUnauthenticated(t *testing.T) {
	setupReservationTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations",
		strings.NewReader(`{"type": "REGULAR", "date": "2026-03-03", "slot": 1, "court": 1, "players": []}`))
	recorder := httptest.NewRecorder()
	HandleReservationCreate(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestHandleReservationCreateBadRequest(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	tests := []struct {
		name string
		body string
	}{
		{name: "bad json", body: `{`},
		{name: "unknown field", body: `{"type": "REGULAR", "date": "2026-03-03", "slot": 1, "court": 1, "players": [], "extra": true}`},
		{name: "bad date", body: `{"type": "REGULAR", "date": "03/03/2026", "slot": 1, "court": 1, "players": []}`},
		{name: "bad type", body: `{"type": "OPEN_PLAY", "date": "2026-03-03", "slot": 1, "court": 1, "players": []}`},
		{name: "slot out of range", body: `{"type": "REGULAR", "date": "2026-03-03", "slot": 12, "court": 1, "players": []}`},
		{name: "missing slot", body: `{"type": "REGULAR", "date": "2026-03-03", "court": 1, "players": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := postReservation(t, member, tc.body)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestHandleReservationCreateConflict(t *testing.T) {
	database := setupReservationTest(t)
	first := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	second := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	if recorder := postReservation(t, first,
		`{"type": "REGULAR", "date": "2026-03-03", "slot": 5, "court": 1, "players": []}`); recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status = %d", recorder.Code)
	}

	recorder := postReservation(t, second,
		`{"type": "REGULAR", "date": "2026-03-03", "slot": 5, "court": 1, "players": []}`)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	var response createResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Success || response.ReasonCode != schedule.ReasonCellOccupied {
		t.Errorf("response = %+v", response)
	}
}

func TestHandleReservationCreateIneligible(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	recorder := postReservation(t, member,
		`{"type": "CLUB", "date": "2026-03-03", "slots": [1, 2], "courts": [1, 2], "players": []}`)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	var response createResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ReasonCode != schedule.ReasonIneligibleRole {
		t.Errorf("reason = %s, want INELIGIBLE_ROLE", response.ReasonCode)
	}
}

func TestHandleReservationCreateRecurringPartial(t *testing.T) {
	database := setupReservationTest(t)
	admin := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)
	other := testutil.SeedMember(t, database, authz.RoleAdmin, authz.StatusActive)

	// Occupy week three before the recurring request.
	if recorder := postReservation(t, other,
		`{"type": "CLUB", "date": "2026-03-17", "slots": [6], "courts": [1], "players": [], "name": "Blocked"}`); recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status = %d", recorder.Code)
	}

	recorder := postReservation(t, admin,
		`{"type": "CLUB", "date": "2026-03-03", "slots": [6], "courts": [1], "players": [], "name": "Clinic", "repeatWeekly": true, "repeatWeeks": 4}`)
	// Partial success still creates, with the first failure reported.
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	var response createResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Count != 3 || response.GroupID == "" {
		t.Errorf("response = %+v", response)
	}
	if response.ReasonCode != schedule.ReasonCellOccupied {
		t.Errorf("reason = %s, want CELL_OCCUPIED", response.ReasonCode)
	}
}

func TestHandleReservationDelete(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)
	stranger := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	result, err := svc.Create(context.Background(), member, schedule.Request{
		Type:   schedule.TypeRegular,
		Date:   time.Date(2026, 3, 3, 0, 0, 0, 0, clubtime.Location),
		Slots:  []int{4},
		Courts: []int{4},
	})
	if err != nil || result.Count != 1 {
		t.Fatalf("seed reservation: count=%d err=%v", result.Count, err)
	}
	reservationID := result.Outcomes[0].ReservationID

	deleteReq := func(caller *authz.AuthMember, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/"+id, nil)
		req.SetPathValue("id", id)
		req = withMember(req, caller)
		recorder := httptest.NewRecorder()
		HandleReservationDelete(recorder, req)
		return recorder
	}

	if recorder := deleteReq(stranger, reservationID); recorder.Code != http.StatusForbidden {
		t.Fatalf("stranger delete status = %d", recorder.Code)
	}
	if recorder := deleteReq(member, reservationID); recorder.Code != http.StatusOK {
		t.Fatalf("owner delete status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	if recorder := deleteReq(member, "no-such-id"); recorder.Code != http.StatusNotFound {
		t.Fatalf("missing delete status = %d", recorder.Code)
	}
}

func TestHandleReservationUpdate(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	result, err := svc.Create(context.Background(), member, schedule.Request{
		Type:   schedule.TypeRegular,
		Date:   time.Date(2026, 3, 3, 0, 0, 0, 0, clubtime.Location),
		Slots:  []int{2},
		Courts: []int{2},
	})
	if err != nil || result.Count != 1 {
		t.Fatalf("seed reservation: count=%d err=%v", result.Count, err)
	}
	reservationID := result.Outcomes[0].ReservationID

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/"+reservationID,
		strings.NewReader(`{"date": "2026-03-05", "slot": 7, "court": 3, "players": []}`))
	req.SetPathValue("id", reservationID)
	req = withMember(req, member)
	recorder := httptest.NewRecorder()
	HandleReservationUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	reservation, err := database.Queries.GetReservation(context.Background(), reservationID)
	if err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if reservation.Date != "2026-03-05" {
		t.Errorf("date = %s", reservation.Date)
	}
}

func TestHandleUpcomingList(t *testing.T) {
	database := setupReservationTest(t)
	member := testutil.SeedMember(t, database, authz.RoleMember, authz.StatusActive)

	if recorder := postReservation(t, member,
		`{"type": "REGULAR", "date": "2026-03-04", "slot": 1, "court": 1, "players": []}`); recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status = %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/upcoming", nil)
	req = withMember(req, member)
	recorder := httptest.NewRecorder()
	HandleUpcomingList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var upcoming []schedule.UpcomingReservation
	if err := json.Unmarshal(recorder.Body.Bytes(), &upcoming); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Date != "2026-03-04" {
		t.Errorf("upcoming = %+v", upcoming)
	}
}
