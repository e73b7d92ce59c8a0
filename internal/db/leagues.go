package db

import (
	"context"
	"database/sql"
)

func (q *Queries) GetLeague(ctx context.Context, id string) (League, error) {
	var l League
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, coordinator_id FROM leagues WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.CoordinatorID)
	return l, err
}

type ListLeaguesRow struct {
	League
	CoordinatorFirstName sql.NullString
	CoordinatorLastName  sql.NullString
}

func (q *Queries) ListLeagues(ctx context.Context) ([]ListLeaguesRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT l.id, l.name, l.coordinator_id, m.first_name, m.last_name
		 FROM leagues l
		 LEFT JOIN members m ON m.id = l.coordinator_id
		 ORDER BY l.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []ListLeaguesRow
	for rows.Next() {
		var l ListLeaguesRow
		if err := rows.Scan(&l.ID, &l.Name, &l.CoordinatorID,
			&l.CoordinatorFirstName, &l.CoordinatorLastName); err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

// ListLeaguesByCoordinator returns the leagues assigned to the given
// coordinator member.
func (q *Queries) ListLeaguesByCoordinator(ctx context.Context, memberID string) ([]League, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, coordinator_id FROM leagues
		 WHERE coordinator_id = ? ORDER BY name`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.ID, &l.Name, &l.CoordinatorID); err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

const seasonColumns = `id, league_id, name, status, start_date, end_date, max_players, created_at`

func scanSeason(row interface{ Scan(...any) error }) (LeagueSeason, error) {
	var s LeagueSeason
	err := row.Scan(&s.ID, &s.LeagueID, &s.Name, &s.Status,
		&s.StartDate, &s.EndDate, &s.MaxPlayers, &s.CreatedAt)
	return s, err
}

func (q *Queries) GetSeason(ctx context.Context, id string) (LeagueSeason, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM league_seasons WHERE id = ?`, id)
	return scanSeason(row)
}

// GetCurrentSeason returns the most recently created non-draft season for a
// league. Draft seasons are invisible to members.
func (q *Queries) GetCurrentSeason(ctx context.Context, leagueID string) (LeagueSeason, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM league_seasons
		 WHERE league_id = ? AND status != 'DRAFT'
		 ORDER BY created_at DESC LIMIT 1`, leagueID)
	return scanSeason(row)
}

// ListOverdueActiveSeasons returns ACTIVE seasons whose end date is before
// today, for the nightly completion sweep.
func (q *Queries) ListOverdueActiveSeasons(ctx context.Context, today string) ([]LeagueSeason, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+seasonColumns+` FROM league_seasons
		 WHERE status = 'ACTIVE' AND end_date IS NOT NULL AND end_date < ?`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []LeagueSeason
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func (q *Queries) UpdateSeasonStatus(ctx context.Context, id, status string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE league_seasons SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type CreateEnrollmentParams struct {
	ID       string
	SeasonID string
	MemberID string
	Status   string
}

func (q *Queries) CreateEnrollment(ctx context.Context, arg CreateEnrollmentParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO league_enrollments (id, season_id, member_id, status)
		 VALUES (?, ?, ?, ?)`,
		arg.ID, arg.SeasonID, arg.MemberID, arg.Status)
	return err
}

// GetLiveEnrollment returns a member's non-withdrawn enrollment in a season.
func (q *Queries) GetLiveEnrollment(ctx context.Context, seasonID, memberID string) (LeagueEnrollment, error) {
	var e LeagueEnrollment
	err := q.db.QueryRowContext(ctx,
		`SELECT id, season_id, member_id, status, enrolled_at
		 FROM league_enrollments
		 WHERE season_id = ? AND member_id = ? AND status != 'WITHDRAWN'`,
		seasonID, memberID).
		Scan(&e.ID, &e.SeasonID, &e.MemberID, &e.Status, &e.EnrolledAt)
	return e, err
}

func (q *Queries) CountEnrollmentsByStatus(ctx context.Context, seasonID, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM league_enrollments WHERE season_id = ? AND status = ?`,
		seasonID, status).Scan(&count)
	return count, err
}

func (q *Queries) UpdateEnrollmentStatus(ctx context.Context, id, status string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE league_enrollments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// EarliestWaitlisted returns the head of a season's waitlist queue. The rowid
// tiebreak keeps same-second enrollments in insertion order.
func (q *Queries) EarliestWaitlisted(ctx context.Context, seasonID string) (LeagueEnrollment, error) {
	var e LeagueEnrollment
	err := q.db.QueryRowContext(ctx,
		`SELECT id, season_id, member_id, status, enrolled_at
		 FROM league_enrollments
		 WHERE season_id = ? AND status = 'WAITLISTED'
		 ORDER BY enrolled_at ASC, rowid ASC LIMIT 1`, seasonID).
		Scan(&e.ID, &e.SeasonID, &e.MemberID, &e.Status, &e.EnrolledAt)
	return e, err
}

type ListEnrollmentsRow struct {
	LeagueEnrollment
	FirstName string
	LastName  string
	Email     string
}

// ListEnrollmentsByStatus returns a season's enrollments in FIFO order with
// member details joined in. Enrollment order doubles as waitlist position.
func (q *Queries) ListEnrollmentsByStatus(ctx context.Context, seasonID, status string) ([]ListEnrollmentsRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT e.id, e.season_id, e.member_id, e.status, e.enrolled_at,
		        m.first_name, m.last_name, m.email
		 FROM league_enrollments e
		 JOIN members m ON m.id = e.member_id
		 WHERE e.season_id = ? AND e.status = ?
		 ORDER BY e.enrolled_at ASC, e.rowid ASC`, seasonID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []ListEnrollmentsRow
	for rows.Next() {
		var e ListEnrollmentsRow
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.MemberID, &e.Status, &e.EnrolledAt,
			&e.FirstName, &e.LastName, &e.Email); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
