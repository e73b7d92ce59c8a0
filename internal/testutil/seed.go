package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/db"
)

// SeedMember inserts a member with the given role and status and returns it
// in the shape the request middleware would attach to a context.
func SeedMember(t *testing.T, database *db.DB, role, status string) *authz.AuthMember {
	t.Helper()

	id := uuid.New().String()
	member, err := database.Queries.CreateMember(context.Background(), db.CreateMemberParams{
		ID:        id,
		FirstName: "Test",
		LastName:  id[:8],
		Email:     fmt.Sprintf("%s@example.com", id[:8]),
		Role:      role,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return &authz.AuthMember{
		ID:        member.ID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Role:      member.Role,
		Status:    member.Status,
	}
}

// SeedLeague inserts a league. coordinatorID may be empty.
func SeedLeague(t *testing.T, database *db.DB, name, coordinatorID string) string {
	t.Helper()

	id := uuid.New().String()
	var coordinator any
	if coordinatorID != "" {
		coordinator = coordinatorID
	}
	_, err := database.ExecContext(context.Background(),
		`INSERT INTO leagues (id, name, coordinator_id) VALUES (?, ?, ?)`,
		id, name, coordinator)
	if err != nil {
		t.Fatalf("seed league: %v", err)
	}
	return id
}

// SeedSeason inserts a season for a league. maxPlayers <= 0 leaves the
// roster uncapped; endDate may be empty.
func SeedSeason(t *testing.T, database *db.DB, leagueID, status, endDate string, maxPlayers int) string {
	t.Helper()

	id := uuid.New().String()
	var end any
	if endDate != "" {
		end = endDate
	}
	var capacity any
	if maxPlayers > 0 {
		capacity = maxPlayers
	}
	_, err := database.ExecContext(context.Background(),
		`INSERT INTO league_seasons (id, league_id, name, status, end_date, max_players)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, leagueID, "Test Season", status, end, capacity)
	if err != nil {
		t.Fatalf("seed season: %v", err)
	}
	return id
}

// SetEnrolledAt pins an enrollment's timestamp so queue-order assertions are
// deterministic within a test.
func SetEnrolledAt(t *testing.T, database *db.DB, seasonID, memberID, enrolledAt string) {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		`UPDATE league_enrollments SET enrolled_at = ?
		 WHERE season_id = ? AND member_id = ?`,
		enrolledAt, seasonID, memberID)
	if err != nil {
		t.Fatalf("set enrolled_at: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		t.Fatalf("set enrolled_at: no enrollment for member %s", memberID)
	}
}
