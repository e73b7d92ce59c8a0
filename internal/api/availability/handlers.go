// internal/api/availability/handlers.go
package availability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/apiutil"
	"github.com/crtc/courtbook/internal/schedule"
)

var (
	svc      *schedule.Service
	initOnce sync.Once
)

const (
	availabilityQueryTimeout = 5 * time.Second
	// A range query covers at most one six-week calendar view plus slack.
	maxRangeDays = 92
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(service *schedule.Service) {
	if service == nil {
		return
	}
	initOnce.Do(func() {
		svc = service
	})
}

// GET /api/v1/availability?date=YYYY-MM-DD
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Availability service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if apiutil.RequireMember(w, r) == nil {
		return
	}

	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	grid, err := svc.Availability(ctx, date)
	if err != nil {
		logger.Error().Err(err).Str("date", r.URL.Query().Get("date")).Msg("Failed to load availability")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, grid); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability response")
	}
}

// GET /api/v1/availability/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func HandleAvailabilityRange(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Availability service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if apiutil.RequireMember(w, r) == nil {
		return
	}

	start, err := apiutil.DateFromQuery(r, "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := apiutil.DateFromQuery(r, "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end must not be before start", http.StatusBadRequest)
		return
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		http.Error(w, "date range too large", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	days, err := svc.RangeAvailability(ctx, start, end)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load range availability")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, days); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability response")
	}
}
