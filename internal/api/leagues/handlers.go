// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/apiutil"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/leagues"
)

var (
	svc      *leagues.Service
	queries  *db.Queries
	initOnce sync.Once
)

const leagueQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(service *leagues.Service, q *db.Queries) {
	if service == nil || q == nil {
		return
	}
	initOnce.Do(func() {
		svc = service
		queries = q
	})
}

type leagueSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CoordinatorID   string `json:"coordinator_id,omitempty"`
	CoordinatorName string `json:"coordinator_name,omitempty"`
}

type seasonSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	MaxPlayers int64  `json:"max_players,omitempty"`
}

type enrollmentEntry struct {
	MemberID   string    `json:"member_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Position   int       `json:"position"`
}

type enrollResponse struct {
	Success    bool               `json:"success"`
	Status     string             `json:"status,omitempty"`
	Position   int                `json:"position,omitempty"`
	ReasonCode leagues.ReasonCode `json:"reasonCode,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// GET /api/v1/leagues
func HandleLeaguesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("League handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if member := apiutil.RequireMember(w, r); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	rows, err := queries.ListLeagues(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list leagues")
		http.Error(w, "Failed to list leagues", http.StatusInternalServerError)
		return
	}

	payload := make([]leagueSummary, 0, len(rows))
	for _, row := range rows {
		summary := leagueSummary{
			ID:            row.ID,
			Name:          row.Name,
			CoordinatorID: row.CoordinatorID.String,
		}
		if row.CoordinatorFirstName.Valid {
			summary.CoordinatorName = row.CoordinatorFirstName.String + " " + row.CoordinatorLastName.String
		}
		payload = append(payload, summary)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, payload); err != nil {
		logger.Error().Err(err).Msg("Failed to write league list response")
	}
}

// POST /api/v1/leagues/{id}/enroll
func HandleEnroll(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("League handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	leagueID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	result, rejection, err := svc.Enroll(ctx, member, leagueID)
	if err != nil {
		logger.Error().Err(err).Str("league_id", leagueID).Msg("Failed to enroll member")
		http.Error(w, "Failed to enroll", http.StatusInternalServerError)
		return
	}
	if rejection != nil {
		writeEnrollRejection(w, r, rejection)
		return
	}

	logger.Info().
		Str("league_id", leagueID).
		Str("member_id", member.ID).
		Str("status", result.Status).
		Msg("Member enrolled")

	response := enrollResponse{
		Success:  true,
		Status:   result.Status,
		Position: result.Position,
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write enrollment response")
	}
}

// DELETE /api/v1/leagues/{id}/enroll
func HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("League handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := apiutil.RequireMember(w, r)
	if member == nil {
		return
	}

	leagueID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	rejection, err := svc.Withdraw(ctx, member, leagueID)
	if err != nil {
		logger.Error().Err(err).Str("league_id", leagueID).Msg("Failed to withdraw member")
		http.Error(w, "Failed to withdraw", http.StatusInternalServerError)
		return
	}
	if rejection != nil {
		writeEnrollRejection(w, r, rejection)
		return
	}

	logger.Info().
		Str("league_id", leagueID).
		Str("member_id", member.ID).
		Msg("Member withdrawn")

	if err := apiutil.WriteJSON(w, http.StatusOK, enrollResponse{Success: true}); err != nil {
		logger.Error().Err(err).Msg("Failed to write withdrawal response")
	}
}

// GET /api/v1/leagues/{id}/roster
func HandleRoster(w http.ResponseWriter, r *http.Request) {
	handleEnrollmentView(w, r, "roster", func(ctx context.Context, leagueID string) (db.LeagueSeason, []db.ListEnrollmentsRow, error) {
		return svc.Roster(ctx, leagueID)
	})
}

// GET /api/v1/leagues/{id}/waitlist
func HandleWaitlist(w http.ResponseWriter, r *http.Request) {
	handleEnrollmentView(w, r, "waitlist", func(ctx context.Context, leagueID string) (db.LeagueSeason, []db.ListEnrollmentsRow, error) {
		return svc.Waitlist(ctx, leagueID)
	})
}

func handleEnrollmentView(w http.ResponseWriter, r *http.Request, view string, load func(context.Context, string) (db.LeagueSeason, []db.ListEnrollmentsRow, error)) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("League handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if member := apiutil.RequireMember(w, r); member == nil {
		return
	}

	leagueID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	season, rows, err := load(ctx, leagueID)
	response := struct {
		Season *seasonSummary    `json:"season"`
		Data   []enrollmentEntry `json:"data"`
	}{Data: []enrollmentEntry{}}

	if err != nil {
		if !errors.Is(err, leagues.ErrNoCurrentSeason) {
			logger.Error().Err(err).Str("league_id", leagueID).Str("view", view).Msg("Failed to load enrollments")
			http.Error(w, "Failed to load enrollments", http.StatusInternalServerError)
			return
		}
	} else {
		response.Season = &seasonSummary{
			ID:         season.ID,
			Name:       season.Name,
			Status:     season.Status,
			StartDate:  season.StartDate.String,
			EndDate:    season.EndDate.String,
			MaxPlayers: season.MaxPlayers.Int64,
		}
		for i, row := range rows {
			response.Data = append(response.Data, enrollmentEntry{
				MemberID:   row.MemberID,
				FirstName:  row.FirstName,
				LastName:   row.LastName,
				Email:      row.Email,
				Status:     row.Status,
				EnrolledAt: row.EnrolledAt,
				Position:   i + 1,
			})
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write enrollment response")
	}
}

func writeEnrollRejection(w http.ResponseWriter, r *http.Request, rejection *leagues.Rejection) {
	status := http.StatusUnprocessableEntity
	if rejection.Code == leagues.ReasonAlreadyEnrolled {
		status = http.StatusConflict
	}
	response := enrollResponse{
		ReasonCode: rejection.Code,
		Message:    rejection.Message,
	}
	if err := apiutil.WriteJSON(w, status, response); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write rejection response")
	}
}
