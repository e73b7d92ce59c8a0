// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/crtc/courtbook/internal/api"
	"github.com/crtc/courtbook/internal/api/availability"
	leaguesapi "github.com/crtc/courtbook/internal/api/leagues"
	membersapi "github.com/crtc/courtbook/internal/api/members"
	"github.com/crtc/courtbook/internal/api/reservations"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/config"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/leagues"
	"github.com/crtc/courtbook/internal/members"
	"github.com/crtc/courtbook/internal/schedule"
)

func newServer(cfg *config.Config, database *db.DB) *http.Server {
	scheduleSvc := schedule.NewService(database, clubtime.RealClock{})
	leaguesSvc := leagues.NewService(database)
	membersSvc := members.NewService(database)

	availability.InitHandlers(scheduleSvc)
	reservations.InitHandlers(scheduleSvc)
	leaguesapi.InitHandlers(leaguesSvc, database.Queries)
	membersapi.InitHandlers(membersSvc)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithAuth(database.Queries, cfg.App.SharedAPIKey),
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability routes
	mux.HandleFunc("GET /api/v1/availability", availability.HandleAvailability)
	mux.HandleFunc("GET /api/v1/availability/range", availability.HandleAvailabilityRange)

	// Reservation routes
	mux.HandleFunc("POST /api/v1/reservations", reservations.HandleReservationCreate)
	mux.HandleFunc("GET /api/v1/reservations/upcoming", reservations.HandleUpcomingList)
	mux.HandleFunc("PATCH /api/v1/reservations/{id}", reservations.HandleReservationUpdate)
	mux.HandleFunc("DELETE /api/v1/reservations/{id}", reservations.HandleReservationDelete)

	// League routes
	mux.HandleFunc("GET /api/v1/leagues", leaguesapi.HandleLeaguesList)
	mux.HandleFunc("POST /api/v1/leagues/{id}/enroll", leaguesapi.HandleEnroll)
	mux.HandleFunc("DELETE /api/v1/leagues/{id}/enroll", leaguesapi.HandleWithdraw)
	mux.HandleFunc("GET /api/v1/leagues/{id}/roster", leaguesapi.HandleRoster)
	mux.HandleFunc("GET /api/v1/leagues/{id}/waitlist", leaguesapi.HandleWaitlist)

	// Member routes
	mux.HandleFunc("GET /api/v1/members", membersapi.HandleMembersList)
	mux.HandleFunc("POST /api/v1/members", membersapi.HandleMemberCreate)
	mux.HandleFunc("PATCH /api/v1/members/{id}/status", membersapi.HandleMemberStatusUpdate)
}
