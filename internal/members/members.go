// Package members manages club member records. Authentication lives
// upstream; this package only maintains the roster the scheduler validates
// against.
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/db"
)

var ErrNotFound = errors.New("member not found")

var validStatuses = map[string]struct{}{
	authz.StatusActive:   {},
	authz.StatusPending:  {},
	authz.StatusInactive: {},
	authz.StatusWaitlist: {},
}

var validRoles = map[string]struct{}{
	authz.RoleMember:            {},
	authz.RoleLeagueCoordinator: {},
	authz.RoleAdmin:             {},
}

type Service struct {
	store *db.DB
}

func NewService(store *db.DB) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Role        string
}

// Create registers a new member in PENDING status; an admin activates the
// account once the application is approved.
func (s *Service) Create(ctx context.Context, params CreateParams) (db.Member, error) {
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.FirstName == "" || params.LastName == "" {
		return db.Member{}, fmt.Errorf("first and last name are required")
	}
	if params.Email == "" {
		return db.Member{}, fmt.Errorf("email is required")
	}

	role := params.Role
	if role == "" {
		role = authz.RoleMember
	}
	if _, ok := validRoles[role]; !ok {
		return db.Member{}, fmt.Errorf("invalid role %q", role)
	}

	phone, err := NormalizePhone(params.PhoneNumber)
	if err != nil {
		return db.Member{}, err
	}

	return s.store.Queries.CreateMember(ctx, db.CreateMemberParams{
		ID:          uuid.New().String(),
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		PhoneNumber: phone,
		Role:        role,
		Status:      authz.StatusPending,
	})
}

// UpdateStatus sets a member's account status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid status %q", status)
	}
	updated, err := s.store.Queries.UpdateMemberStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("update member status: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a member by id.
func (s *Service) Get(ctx context.Context, id string) (db.Member, error) {
	member, err := s.store.Queries.GetMember(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Member{}, ErrNotFound
		}
		return db.Member{}, err
	}
	return member, nil
}

// ListActive returns the active roster, the pool eligible to be listed as
// players on a reservation.
func (s *Service) ListActive(ctx context.Context) ([]db.Member, error) {
	return s.store.Queries.ListMembersByStatus(ctx, authz.StatusActive)
}
