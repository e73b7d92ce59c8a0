// Package leagues maintains league season rosters and waitlists. Enrollment
// order is FIFO by enrollment timestamp, which doubles as waitlist position;
// a withdrawal by an active player promotes the earliest waitlisted member
// in the same transaction.
package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/db"
)

// ReasonCode identifies why an enrollment action was rejected.
type ReasonCode string

const (
	ReasonSeasonNotOpen   ReasonCode = "SEASON_NOT_OPEN"
	ReasonAlreadyEnrolled ReasonCode = "ALREADY_ENROLLED"
	ReasonNotEnrolled     ReasonCode = "NOT_ENROLLED"
	ReasonInactiveMember  ReasonCode = "INACTIVE_PARTICIPANT"
)

// Enrollment statuses.
const (
	StatusActive     = "ACTIVE"
	StatusWaitlisted = "WAITLISTED"
	StatusWithdrawn  = "WITHDRAWN"
)

// Season statuses.
const (
	SeasonDraft          = "DRAFT"
	SeasonEnrollmentOpen = "ENROLLMENT_OPEN"
	SeasonActive         = "ACTIVE"
	SeasonCompleted      = "COMPLETED"
)

type Rejection struct {
	Code    ReasonCode
	Message string
}

// ErrNoCurrentSeason reports that a league has no visible season.
var ErrNoCurrentSeason = errors.New("league has no current season")

type Service struct {
	store *db.DB
}

func NewService(store *db.DB) *Service {
	return &Service{store: store}
}

// EnrollResult reports where the member landed: on the roster or the
// waitlist (with a 1-based queue position).
type EnrollResult struct {
	Status   string
	Position int
}

// rejectionErr aborts the enrollment transaction while carrying a structured
// rejection back to the caller.
type rejectionErr struct {
	rejection *Rejection
}

func (e rejectionErr) Error() string { return string(e.rejection.Code) }

// Enroll adds member to the league's current season, onto the roster if
// capacity allows and the waitlist tail otherwise. The capacity check and
// the insert run in one transaction; a concurrent duplicate enrollment fails
// the live-enrollment uniqueness index and reports ALREADY_ENROLLED.
func (s *Service) Enroll(ctx context.Context, member *authz.AuthMember, leagueID string) (EnrollResult, *Rejection, error) {
	if member.Status != authz.StatusActive {
		return EnrollResult{}, &Rejection{
			Code:    ReasonInactiveMember,
			Message: "Only active members can enroll.",
		}, nil
	}

	season, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		if errors.Is(err, ErrNoCurrentSeason) {
			return EnrollResult{}, &Rejection{
				Code:    ReasonSeasonNotOpen,
				Message: "This league has no open season.",
			}, nil
		}
		return EnrollResult{}, nil, err
	}

	var result EnrollResult
	err = s.store.RunInTx(ctx, func(txdb *db.DB) error {
		if season.Status != SeasonEnrollmentOpen {
			return rejectionErr{&Rejection{
				Code:    ReasonSeasonNotOpen,
				Message: "Enrollment is not open for this season.",
			}}
		}

		_, err := txdb.Queries.GetLiveEnrollment(ctx, season.ID, member.ID)
		if err == nil {
			return rejectionErr{&Rejection{
				Code:    ReasonAlreadyEnrolled,
				Message: "You are already enrolled in this season.",
			}}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check enrollment: %w", err)
		}

		activeCount, err := txdb.Queries.CountEnrollmentsByStatus(ctx, season.ID, StatusActive)
		if err != nil {
			return fmt.Errorf("count roster: %w", err)
		}

		status := StatusActive
		if season.MaxPlayers.Valid && activeCount >= season.MaxPlayers.Int64 {
			status = StatusWaitlisted
		}

		if err := txdb.Queries.CreateEnrollment(ctx, db.CreateEnrollmentParams{
			ID:       uuid.New().String(),
			SeasonID: season.ID,
			MemberID: member.ID,
			Status:   status,
		}); err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}

		result.Status = status
		if status == StatusWaitlisted {
			waitlisted, err := txdb.Queries.CountEnrollmentsByStatus(ctx, season.ID, StatusWaitlisted)
			if err != nil {
				return fmt.Errorf("count waitlist: %w", err)
			}
			result.Position = int(waitlisted)
		}
		return nil
	})
	if err != nil {
		var rerr rejectionErr
		if errors.As(err, &rerr) {
			return EnrollResult{}, rerr.rejection, nil
		}
		if db.IsUniqueConstraint(err) {
			return EnrollResult{}, &Rejection{
				Code:    ReasonAlreadyEnrolled,
				Message: "You are already enrolled in this season.",
			}, nil
		}
		return EnrollResult{}, nil, err
	}
	return result, nil, nil
}

// Withdraw removes member from the current season. If the member held a
// roster spot, the earliest waitlisted enrollment is promoted atomically
// with the withdrawal: exactly one promotion per vacancy.
func (s *Service) Withdraw(ctx context.Context, member *authz.AuthMember, leagueID string) (*Rejection, error) {
	season, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		if errors.Is(err, ErrNoCurrentSeason) {
			return &Rejection{
				Code:    ReasonNotEnrolled,
				Message: "This league has no open season.",
			}, nil
		}
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(txdb *db.DB) error {
		enrollment, err := txdb.Queries.GetLiveEnrollment(ctx, season.ID, member.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return rejectionErr{&Rejection{
					Code:    ReasonNotEnrolled,
					Message: "You are not enrolled in this season.",
				}}
			}
			return fmt.Errorf("load enrollment: %w", err)
		}

		if _, err := txdb.Queries.UpdateEnrollmentStatus(ctx, enrollment.ID, StatusWithdrawn); err != nil {
			return fmt.Errorf("withdraw enrollment: %w", err)
		}

		if enrollment.Status != StatusActive {
			return nil
		}

		next, err := txdb.Queries.EarliestWaitlisted(ctx, season.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("load waitlist head: %w", err)
		}
		if _, err := txdb.Queries.UpdateEnrollmentStatus(ctx, next.ID, StatusActive); err != nil {
			return fmt.Errorf("promote enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		var rerr rejectionErr
		if errors.As(err, &rerr) {
			return rerr.rejection, nil
		}
		return nil, err
	}
	return nil, nil
}

// Roster returns the current season and its live roster in enrollment order.
func (s *Service) Roster(ctx context.Context, leagueID string) (db.LeagueSeason, []db.ListEnrollmentsRow, error) {
	return s.enrollmentView(ctx, leagueID, StatusActive)
}

// Waitlist returns the current season and its waitlist queue in FIFO order.
func (s *Service) Waitlist(ctx context.Context, leagueID string) (db.LeagueSeason, []db.ListEnrollmentsRow, error) {
	return s.enrollmentView(ctx, leagueID, StatusWaitlisted)
}

func (s *Service) enrollmentView(ctx context.Context, leagueID, status string) (db.LeagueSeason, []db.ListEnrollmentsRow, error) {
	season, err := s.currentSeason(ctx, leagueID)
	if err != nil {
		return db.LeagueSeason{}, nil, err
	}
	enrollments, err := s.store.Queries.ListEnrollmentsByStatus(ctx, season.ID, status)
	if err != nil {
		return db.LeagueSeason{}, nil, fmt.Errorf("list enrollments: %w", err)
	}
	return season, enrollments, nil
}

func (s *Service) currentSeason(ctx context.Context, leagueID string) (db.LeagueSeason, error) {
	season, err := s.store.Queries.GetCurrentSeason(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.LeagueSeason{}, ErrNoCurrentSeason
		}
		return db.LeagueSeason{}, fmt.Errorf("load current season: %w", err)
	}
	return season, nil
}
