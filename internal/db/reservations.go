package db

import (
	"context"
	"database/sql"
)

const reservationColumns = `id, member_id, date, name, type, league_id, group_id, status, created_at`

func scanReservation(row interface{ Scan(...any) error }) (Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.MemberID, &r.Date, &r.Name, &r.Type,
		&r.LeagueID, &r.GroupID, &r.Status, &r.CreatedAt)
	return r, err
}

type CreateReservationParams struct {
	ID       string
	MemberID string
	Date     string
	Name     string
	Type     string
	LeagueID sql.NullString
	GroupID  sql.NullString
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO reservations (id, member_id, date, name, type, league_id, group_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.MemberID, arg.Date, arg.Name, arg.Type, arg.LeagueID, arg.GroupID)
	return err
}

type AddReservationCellParams struct {
	ReservationID string
	Date          string
	Slot          int64
	Court         int64
}

func (q *Queries) AddReservationCell(ctx context.Context, arg AddReservationCellParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO reservation_cells (reservation_id, date, slot, court)
		 VALUES (?, ?, ?, ?)`,
		arg.ReservationID, arg.Date, arg.Slot, arg.Court)
	return err
}

type AddReservationPlayerParams struct {
	ReservationID string
	MemberID      string
	Position      int64
}

func (q *Queries) AddReservationPlayer(ctx context.Context, arg AddReservationPlayerParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO reservation_players (reservation_id, member_id, position)
		 VALUES (?, ?, ?)`,
		arg.ReservationID, arg.MemberID, arg.Position)
	return err
}

func (q *Queries) GetReservation(ctx context.Context, id string) (Reservation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

func (q *Queries) ListReservationCells(ctx context.Context, reservationID string) ([]ReservationCell, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT reservation_id, date, slot, court, status
		 FROM reservation_cells
		 WHERE reservation_id = ?
		 ORDER BY slot, court`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []ReservationCell
	for rows.Next() {
		var c ReservationCell
		if err := rows.Scan(&c.ReservationID, &c.Date, &c.Slot, &c.Court, &c.Status); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

type ReservationPlayerRow struct {
	MemberID  string
	Position  int64
	FirstName string
	LastName  string
}

func (q *Queries) ListReservationPlayers(ctx context.Context, reservationID string) ([]ReservationPlayerRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT p.member_id, p.position, m.first_name, m.last_name
		 FROM reservation_players p
		 JOIN members m ON m.id = p.member_id
		 WHERE p.reservation_id = ?
		 ORDER BY p.position`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []ReservationPlayerRow
	for rows.Next() {
		var p ReservationPlayerRow
		if err := rows.Scan(&p.MemberID, &p.Position, &p.FirstName, &p.LastName); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

type ActiveCellRow struct {
	Slot          int64
	Court         int64
	ReservationID string
	MemberID      string
	Name          string
	Type          string
}

// ListActiveCellsByDate returns every occupied cell for a date with its
// owning reservation summary. This is the definitive occupancy view: both
// the availability endpoints and the conflict validator read from it.
func (q *Queries) ListActiveCellsByDate(ctx context.Context, date string) ([]ActiveCellRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.slot, c.court, r.id, r.member_id, r.name, r.type
		 FROM reservation_cells c
		 JOIN reservations r ON r.id = c.reservation_id
		 WHERE c.date = ? AND c.status = 'ACTIVE'
		 ORDER BY c.slot, c.court`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []ActiveCellRow
	for rows.Next() {
		var c ActiveCellRow
		if err := rows.Scan(&c.Slot, &c.Court, &c.ReservationID, &c.MemberID, &c.Name, &c.Type); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

type CountActiveRegularParams struct {
	MemberID             string
	Date                 string
	ExcludeReservationID string
}

// CountActiveRegularOnDate counts a member's live REGULAR reservations on a
// date, excluding one reservation id (the one being edited, possibly empty).
func (q *Queries) CountActiveRegularOnDate(ctx context.Context, arg CountActiveRegularParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE member_id = ? AND date = ? AND type = 'REGULAR' AND status = 'ACTIVE' AND id != ?`,
		arg.MemberID, arg.Date, arg.ExcludeReservationID).Scan(&count)
	return count, err
}

type DateOccupancyRow struct {
	Date   string
	Booked int64
}

// CountOccupancyByDateRange returns per-day occupied cell counts over an
// inclusive date range. Days with no bookings are absent from the result.
func (q *Queries) CountOccupancyByDateRange(ctx context.Context, start, end string) ([]DateOccupancyRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT date, COUNT(*) FROM reservation_cells
		 WHERE date >= ? AND date <= ? AND status = 'ACTIVE'
		 GROUP BY date ORDER BY date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DateOccupancyRow
	for rows.Next() {
		var d DateOccupancyRow
		if err := rows.Scan(&d.Date, &d.Booked); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CancelReservation marks a reservation cancelled. The row is kept as history.
func (q *Queries) CancelReservation(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANCELLED' WHERE id = ? AND status = 'ACTIVE'`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CancelReservationCells frees a reservation's cells for rebooking.
func (q *Queries) CancelReservationCells(ctx context.Context, reservationID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE reservation_cells SET status = 'CANCELLED'
		 WHERE reservation_id = ? AND status = 'ACTIVE'`, reservationID)
	return err
}

func (q *Queries) UpdateReservationDate(ctx context.Context, id, date string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE reservations SET date = ? WHERE id = ?`, date, id)
	return err
}

type MoveReservationCellParams struct {
	ReservationID string
	Date          string
	Slot          int64
	Court         int64
}

// MoveReservationCell repositions a single-cell reservation's live cell.
// Only REGULAR reservations are editable, so exactly one row matches.
func (q *Queries) MoveReservationCell(ctx context.Context, arg MoveReservationCellParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE reservation_cells SET date = ?, slot = ?, court = ?
		 WHERE reservation_id = ? AND status = 'ACTIVE'`,
		arg.Date, arg.Slot, arg.Court, arg.ReservationID)
	return err
}

func (q *Queries) DeleteReservationPlayers(ctx context.Context, reservationID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM reservation_players WHERE reservation_id = ?`, reservationID)
	return err
}

// ListUpcomingForMember returns a member's live reservations on or after
// today where they are the owner or a listed player.
func (q *Queries) ListUpcomingForMember(ctx context.Context, memberID, today string) ([]Reservation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT r.id, r.member_id, r.date, r.name, r.type, r.league_id, r.group_id, r.status, r.created_at
		 FROM reservations r
		 LEFT JOIN reservation_players p ON p.reservation_id = r.id
		 WHERE r.status = 'ACTIVE' AND r.date >= ?
		   AND (r.member_id = ? OR p.member_id = ?)
		 ORDER BY r.date, r.created_at`, today, memberID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}
