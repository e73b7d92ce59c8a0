// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/apiutil"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/schedule"
)

var (
	svc      *schedule.Service
	initOnce sync.Once
)

const reservationQueryTimeout = 10 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(service *schedule.Service) {
	if service == nil {
		return
	}
	initOnce.Do(func() {
		svc = service
	})
}

type createRequest struct {
	Type         string   `json:"type"`
	Date         string   `json:"date"`
	Slot         int      `json:"slot,omitempty"`
	Court        int      `json:"court,omitempty"`
	Slots        []int    `json:"slots,omitempty"`
	Courts       []int    `json:"courts,omitempty"`
	Players      []string `json:"players"`
	Name         string   `json:"name,omitempty"`
	LeagueID     string   `json:"league_id,omitempty"`
	RepeatWeekly bool     `json:"repeatWeekly,omitempty"`
	RepeatWeeks  int      `json:"repeatWeeks,omitempty"`
}

type createResponse struct {
	Success    bool                `json:"success"`
	Count      int                 `json:"count"`
	GroupID    string              `json:"group_id,omitempty"`
	ReasonCode schedule.ReasonCode `json:"reasonCode,omitempty"`
	Message    string              `json:"message,omitempty"`
}

type mutateResponse struct {
	Success    bool                `json:"success"`
	ReasonCode schedule.ReasonCode `json:"reasonCode,omitempty"`
	Message    string              `json:"message,omitempty"`
}

// POST /api/v1/reservations
func HandleReservationCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Reservation service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	var body createRequest
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, err := buildRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	result, err := svc.Create(ctx, member, req)
	if err != nil {
		logger.Error().Err(err).Str("member_id", member.ID).Msg("Failed to create reservation")
		http.Error(w, "Failed to create reservation", http.StatusInternalServerError)
		return
	}

	response := createResponse{
		Success: result.Count > 0,
		Count:   result.Count,
		GroupID: result.GroupID,
	}
	status := http.StatusCreated
	if rejection := result.FirstRejection(); rejection != nil {
		response.ReasonCode = rejection.Code
		response.Message = rejection.Message
		if result.Count == 0 {
			status = statusForReason(rejection.Code)
		}
	}

	logger.Info().
		Str("member_id", member.ID).
		Str("type", string(req.Type)).
		Int("count", result.Count).
		Int("dates", len(result.Outcomes)).
		Msg("Reservation request processed")

	if err := apiutil.WriteJSON(w, status, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation response")
	}
}

// PATCH /api/v1/reservations/{id}
func HandleReservationUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Reservation service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	reservationID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Date    string   `json:"date"`
		Slot    int      `json:"slot"`
		Court   int      `json:"court"`
		Players []string `json:"players"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := clubtime.ParseDate(body.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !clubtime.ValidSlot(body.Slot) || !clubtime.ValidCourt(body.Court) {
		http.Error(w, "slot or court out of range", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	rejection, err := svc.Edit(ctx, member, reservationID, schedule.EditRequest{
		Date:    date,
		Slot:    body.Slot,
		Court:   body.Court,
		Players: body.Players,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			http.Error(w, "Reservation not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("reservation_id", reservationID).Msg("Failed to update reservation")
		http.Error(w, "Failed to update reservation", http.StatusInternalServerError)
		return
	}

	if rejection != nil {
		writeMutateRejection(w, r, rejection)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, mutateResponse{Success: true}); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation response")
	}
}

// DELETE /api/v1/reservations/{id}
func HandleReservationDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Reservation service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	reservationID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	rejection, err := svc.Cancel(ctx, member, reservationID)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			http.Error(w, "Reservation not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("reservation_id", reservationID).Msg("Failed to cancel reservation")
		http.Error(w, "Failed to cancel reservation", http.StatusInternalServerError)
		return
	}

	if rejection != nil {
		writeMutateRejection(w, r, rejection)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, mutateResponse{Success: true}); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation response")
	}
}

// GET /api/v1/reservations/upcoming
func HandleUpcomingList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Reservation service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	upcoming, err := svc.Upcoming(ctx, member)
	if err != nil {
		logger.Error().Err(err).Str("member_id", member.ID).Msg("Failed to list upcoming reservations")
		http.Error(w, "Failed to list reservations", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, upcoming); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation list response")
	}
}

// buildRequest maps the wire payload onto a core booking request. REGULAR
// submissions use singular slot/court fields, LEAGUE/CLUB the plural arrays.
func buildRequest(body createRequest) (schedule.Request, error) {
	date, err := clubtime.ParseDate(body.Date)
	if err != nil {
		return schedule.Request{}, err
	}

	slots := body.Slots
	if len(slots) == 0 && body.Slot != 0 {
		slots = []int{body.Slot}
	}
	courts := body.Courts
	if len(courts) == 0 && body.Court != 0 {
		courts = []int{body.Court}
	}

	req := schedule.Request{
		Type:         schedule.ReservationType(strings.ToUpper(strings.TrimSpace(body.Type))),
		Date:         date,
		Slots:        slots,
		Courts:       courts,
		Players:      body.Players,
		Name:         strings.TrimSpace(body.Name),
		LeagueID:     body.LeagueID,
		RepeatWeekly: body.RepeatWeekly,
		RepeatWeeks:  body.RepeatWeeks,
	}
	if err := req.ValidateShape(); err != nil {
		return schedule.Request{}, err
	}
	return req, nil
}

func writeMutateRejection(w http.ResponseWriter, r *http.Request, rejection *schedule.Rejection) {
	response := mutateResponse{
		ReasonCode: rejection.Code,
		Message:    rejection.Message,
	}
	if err := apiutil.WriteJSON(w, statusForReason(rejection.Code), response); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write rejection response")
	}
}

// statusForReason maps rejection codes onto HTTP statuses: conflicts with
// existing state are 409, authorization failures 403, everything else 422.
func statusForReason(code schedule.ReasonCode) int {
	switch code {
	case schedule.ReasonCellOccupied, schedule.ReasonDuplicateDaily:
		return http.StatusConflict
	case schedule.ReasonUnauthorizedAction:
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}
