package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
)

// rejectionErr carries a structured rejection out of a transaction closure
// so the transaction rolls back without the rejection becoming an error to
// the caller.
type rejectionErr struct {
	rejection *Rejection
}

func (e rejectionErr) Error() string { return string(e.rejection.Code) }

// Create validates and persists a booking request. Recurring requests are
// processed date by date with no cross-date atomicity: a failed date is
// recorded in the result and skipped, earlier dates stay written.
func (s *Service) Create(ctx context.Context, member *authz.AuthMember, req Request) (BatchResult, error) {
	now := s.clock.Now()
	req.Players = normalizePlayers(req.Players, ownerForType(req.Type, member.ID))
	dates := req.dates()

	var result BatchResult
	// Rows created from one multi-cell or recurring submission share a group id.
	if len(dates) > 1 || len(req.Slots)*len(req.Courts) > 1 {
		result.GroupID = uuid.New().String()
	}

	for _, date := range dates {
		outcome, err := s.createOne(ctx, member, req, date, now, result.GroupID)
		if err != nil {
			return result, err
		}
		if outcome.Rejection == nil {
			result.Count++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

func (s *Service) createOne(ctx context.Context, member *authz.AuthMember, req Request, date time.Time, now time.Time, groupID string) (DateOutcome, error) {
	dateStr := clubtime.FormatDate(date)

	var reservationID string
	err := s.store.RunInTx(ctx, func(txdb *db.DB) error {
		rejection, err := validateDate(ctx, txdb.Queries, member, req, date, now, "")
		if err != nil {
			return err
		}
		if rejection != nil {
			return rejectionErr{rejection: rejection}
		}

		reservationID = uuid.New().String()
		if err := txdb.Queries.CreateReservation(ctx, db.CreateReservationParams{
			ID:       reservationID,
			MemberID: member.ID,
			Date:     dateStr,
			Name:     req.Name,
			Type:     string(req.Type),
			LeagueID: toNullString(req.LeagueID),
			GroupID:  toNullString(groupID),
		}); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}

		for _, cell := range req.Cells() {
			if err := txdb.Queries.AddReservationCell(ctx, db.AddReservationCellParams{
				ReservationID: reservationID,
				Date:          dateStr,
				Slot:          int64(cell.Slot),
				Court:         int64(cell.Court),
			}); err != nil {
				return fmt.Errorf("insert reservation cell: %w", err)
			}
		}

		for i, playerID := range req.Players {
			if err := txdb.Queries.AddReservationPlayer(ctx, db.AddReservationPlayerParams{
				ReservationID: reservationID,
				MemberID:      playerID,
				Position:      int64(i),
			}); err != nil {
				return fmt.Errorf("insert reservation player: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		var rerr rejectionErr
		if errors.As(err, &rerr) {
			return DateOutcome{Date: dateStr, Rejection: rerr.rejection}, nil
		}
		// A concurrent writer got the cell between our read and commit; the
		// uniqueness index reports it as the same conflict the validator would.
		if db.IsUniqueConstraint(err) {
			return DateOutcome{Date: dateStr, Rejection: reject(ReasonCellOccupied)}, nil
		}
		return DateOutcome{}, err
	}
	return DateOutcome{Date: dateStr, ReservationID: reservationID}, nil
}

// EditRequest carries the new state of a REGULAR reservation.
type EditRequest struct {
	Date    time.Time
	Slot    int
	Court   int
	Players []string
}

// Edit re-validates and applies changes to a REGULAR reservation, treating
// the reservation's own current cell as free so a same-cell edit does not
// spuriously conflict.
func (s *Service) Edit(ctx context.Context, member *authz.AuthMember, reservationID string, edit EditRequest) (*Rejection, error) {
	reservation, players, err := s.loadForManage(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !CanManage(member, reservation, players) {
		return reject(ReasonUnauthorizedAction), nil
	}
	if reservation.Type != string(TypeRegular) {
		return rejectWith(ReasonUnauthorizedAction, "only regular reservations can be edited"), nil
	}
	if reservation.Status != "ACTIVE" {
		return rejectWith(ReasonUnauthorizedAction, "reservation is cancelled"), nil
	}

	req := Request{
		Type:    TypeRegular,
		Date:    edit.Date,
		Slots:   []int{edit.Slot},
		Courts:  []int{edit.Court},
		Players: normalizePlayers(edit.Players, reservation.MemberID),
	}

	// The edit re-runs the full validation as the owner: window rules and the
	// one-per-day rule apply to the reservation's owner, not the admin
	// performing the change.
	owner := member
	if member.ID != reservation.MemberID {
		ownerRow, err := s.store.Queries.GetMember(ctx, reservation.MemberID)
		if err != nil {
			return nil, fmt.Errorf("load reservation owner: %w", err)
		}
		owner = &authz.AuthMember{
			ID:        ownerRow.ID,
			FirstName: ownerRow.FirstName,
			LastName:  ownerRow.LastName,
			Role:      ownerRow.Role,
			Status:    ownerRow.Status,
		}
	}

	err = s.store.RunInTx(ctx, func(txdb *db.DB) error {
		rejection, err := validateDate(ctx, txdb.Queries, owner, req, edit.Date, s.clock.Now(), reservation.ID)
		if err != nil {
			return err
		}
		if rejection != nil {
			return rejectionErr{rejection: rejection}
		}

		dateStr := clubtime.FormatDate(edit.Date)
		if err := txdb.Queries.UpdateReservationDate(ctx, reservation.ID, dateStr); err != nil {
			return fmt.Errorf("update reservation date: %w", err)
		}
		if err := txdb.Queries.MoveReservationCell(ctx, db.MoveReservationCellParams{
			ReservationID: reservation.ID,
			Date:          dateStr,
			Slot:          int64(edit.Slot),
			Court:         int64(edit.Court),
		}); err != nil {
			return fmt.Errorf("move reservation cell: %w", err)
		}
		if err := txdb.Queries.DeleteReservationPlayers(ctx, reservation.ID); err != nil {
			return fmt.Errorf("clear reservation players: %w", err)
		}
		for i, playerID := range req.Players {
			if err := txdb.Queries.AddReservationPlayer(ctx, db.AddReservationPlayerParams{
				ReservationID: reservation.ID,
				MemberID:      playerID,
				Position:      int64(i),
			}); err != nil {
				return fmt.Errorf("insert reservation player: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		var rerr rejectionErr
		if errors.As(err, &rerr) {
			return rerr.rejection, nil
		}
		if db.IsUniqueConstraint(err) {
			return reject(ReasonCellOccupied), nil
		}
		return nil, err
	}
	return nil, nil
}

// Cancel marks a reservation cancelled and frees its cells. Cancelling an
// already-cancelled reservation is an idempotent success.
func (s *Service) Cancel(ctx context.Context, member *authz.AuthMember, reservationID string) (*Rejection, error) {
	reservation, players, err := s.loadForManage(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !CanManage(member, reservation, players) {
		return reject(ReasonUnauthorizedAction), nil
	}
	if reservation.Status != "ACTIVE" {
		return nil, nil
	}

	err = s.store.RunInTx(ctx, func(txdb *db.DB) error {
		if _, err := txdb.Queries.CancelReservation(ctx, reservation.ID); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		if err := txdb.Queries.CancelReservationCells(ctx, reservation.ID); err != nil {
			return fmt.Errorf("cancel reservation cells: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) loadForManage(ctx context.Context, reservationID string) (db.Reservation, []db.ReservationPlayerRow, error) {
	reservation, err := s.store.Queries.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Reservation{}, nil, ErrNotFound
		}
		return db.Reservation{}, nil, fmt.Errorf("load reservation: %w", err)
	}
	players, err := s.store.Queries.ListReservationPlayers(ctx, reservationID)
	if err != nil {
		return db.Reservation{}, nil, fmt.Errorf("load reservation players: %w", err)
	}
	return reservation, players, nil
}

// normalizePlayers dedupes the player list and, when owner is non-empty,
// guarantees the owner appears first.
func normalizePlayers(playerIDs []string, owner string) []string {
	seen := make(map[string]struct{}, len(playerIDs)+1)
	normalized := make([]string, 0, len(playerIDs)+1)
	if owner != "" {
		seen[owner] = struct{}{}
		normalized = append(normalized, owner)
	}
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized
}

// ownerForType returns the owner id to force into the player list. Only
// REGULAR reservations always include their owner as a player.
func ownerForType(rtype ReservationType, memberID string) string {
	if rtype == TypeRegular {
		return memberID
	}
	return ""
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
