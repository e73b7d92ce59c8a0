package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
)

// validateDate runs the full conflict and eligibility check for one calendar
// day of a request. It is called inside the write transaction so the
// occupancy it reads is the occupancy the write commits against; a race that
// slips through still fails on the cell uniqueness index and is reported with
// the same CELL_OCCUPIED code.
//
// excludeID names a reservation whose own cells are treated as free, so
// editing a reservation onto its current cell does not conflict with itself.
func validateDate(ctx context.Context, q *db.Queries, member *authz.AuthMember, req Request, date time.Time, now time.Time, excludeID string) (*Rejection, error) {
	if member.Status != authz.StatusActive {
		return reject(ReasonInactiveParticipant), nil
	}
	if rej, err := checkPlayers(ctx, q, req.Players); rej != nil || err != nil {
		return rej, err
	}

	policy := policyFor(member.Role, req.Type)
	if check := clubtime.CheckWindow(date, now, policy.Allowed && policy.WindowSkip); !check.Valid {
		return rejectWith(ReasonOutOfWindow, check.Reason), nil
	}

	if req.Type == TypeRegular {
		count, err := q.CountActiveRegularOnDate(ctx, db.CountActiveRegularParams{
			MemberID:             member.ID,
			Date:                 clubtime.FormatDate(date),
			ExcludeReservationID: excludeID,
		})
		if err != nil {
			return nil, fmt.Errorf("count regular reservations: %w", err)
		}
		if count > 0 {
			return reject(ReasonDuplicateDaily), nil
		}
	}

	if !policy.Allowed {
		return reject(ReasonIneligibleRole), nil
	}
	if req.Type == TypeLeague {
		if rej, err := checkLeagueAssignment(ctx, q, member, req.LeagueID); rej != nil || err != nil {
			return rej, err
		}
	}

	occupied, err := q.ListActiveCellsByDate(ctx, clubtime.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("load occupancy: %w", err)
	}
	taken := make(map[Cell]struct{}, len(occupied))
	for _, cell := range occupied {
		if excludeID != "" && cell.ReservationID == excludeID {
			continue
		}
		taken[Cell{Slot: int(cell.Slot), Court: int(cell.Court)}] = struct{}{}
	}
	// All-or-nothing within a date: one occupied cell rejects the whole request.
	for _, cell := range req.Cells() {
		if _, ok := taken[cell]; ok {
			return rejectWith(ReasonCellOccupied, fmt.Sprintf(
				"slot %d court %d is already booked", cell.Slot, cell.Court)), nil
		}
	}

	return nil, nil
}

// checkPlayers verifies that every listed player id resolves to an ACTIVE
// member. Unknown ids count as inactive.
func checkPlayers(ctx context.Context, q *db.Queries, playerIDs []string) (*Rejection, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	players, err := q.ListMembersByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	statuses := make(map[string]string, len(players))
	for _, player := range players {
		statuses[player.ID] = player.Status
	}
	for _, id := range playerIDs {
		if statuses[id] != authz.StatusActive {
			return reject(ReasonInactiveParticipant), nil
		}
	}
	return nil, nil
}

// checkLeagueAssignment enforces that a LEAGUE booking references a league
// the calling coordinator is actually assigned to. A coordinator with no
// league, or a bad league id, is an eligibility failure rather than a
// deferred UI state.
func checkLeagueAssignment(ctx context.Context, q *db.Queries, member *authz.AuthMember, leagueID string) (*Rejection, error) {
	if leagueID == "" {
		return rejectWith(ReasonIneligibleRole, "league bookings require a league"), nil
	}
	league, err := q.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rejectWith(ReasonIneligibleRole, "league not found"), nil
		}
		return nil, fmt.Errorf("load league: %w", err)
	}
	if !league.CoordinatorID.Valid || league.CoordinatorID.String != member.ID {
		return rejectWith(ReasonIneligibleRole, "you do not coordinate this league"), nil
	}
	return nil, nil
}
