// internal/api/members/handlers.go
package members

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/apiutil"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/members"
)

var (
	svc      *members.Service
	initOnce sync.Once
)

const memberQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(service *members.Service) {
	if service == nil {
		return
	}
	initOnce.Do(func() {
		svc = service
	})
}

type memberView struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

func toView(m db.Member) memberView {
	return memberView{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Role:        m.Role,
		Status:      m.Status,
	}
}

// GET /api/v1/members
func HandleMembersList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Member handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if member := apiutil.RequireMember(w, r); member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	active, err := svc.ListActive(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list members")
		http.Error(w, "Failed to list members", http.StatusInternalServerError)
		return
	}

	payload := make([]memberView, 0, len(active))
	for _, m := range active {
		payload = append(payload, toView(m))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, payload); err != nil {
		logger.Error().Err(err).Msg("Failed to write member list response")
	}
}

// POST /api/v1/members
func HandleMemberCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Member handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if admin := apiutil.RequireAdmin(w, r); admin == nil {
		return
	}

	var body struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number,omitempty"`
		Role        string `json:"role,omitempty"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	created, err := svc.Create(ctx, members.CreateParams{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		Role:        body.Role,
	})
	if err != nil {
		var fieldErr apiutil.FieldError
		if errors.As(err, &fieldErr) {
			http.Error(w, fieldErr.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Msg("Failed to create member")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info().Str("member_id", created.ID).Str("role", created.Role).Msg("Member created")

	if err := apiutil.WriteJSON(w, http.StatusCreated, toView(created)); err != nil {
		logger.Error().Err(err).Msg("Failed to write member response")
	}
}

// PATCH /api/v1/members/{id}/status
func HandleMemberStatusUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if svc == nil {
		logger.Error().Msg("Member handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if admin := apiutil.RequireAdmin(w, r); admin == nil {
		return
	}

	memberID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	if err := svc.UpdateStatus(ctx, memberID, body.Status); err != nil {
		if errors.Is(err, members.ErrNotFound) {
			http.Error(w, "Member not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("member_id", memberID).Msg("Failed to update member status")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info().Str("member_id", memberID).Str("status", body.Status).Msg("Member status updated")

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		logger.Error().Err(err).Msg("Failed to write member response")
	}
}
