package db

import (
	"context"
	"fmt"
	"strings"
)

const memberColumns = `id, first_name, last_name, email, phone_number, role, status, created_at`

func scanMember(row interface{ Scan(...any) error }) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.PhoneNumber, &m.Role, &m.Status, &m.CreatedAt)
	return m, err
}

func (q *Queries) GetMember(ctx context.Context, id string) (Member, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	return scanMember(row)
}

type CreateMemberParams struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Role        string
	Status      string
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO members (id, first_name, last_name, email, phone_number, role, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.FirstName, arg.LastName, arg.Email, arg.PhoneNumber, arg.Role, arg.Status)
	if err != nil {
		return Member{}, err
	}
	return q.GetMember(ctx, arg.ID)
}

func (q *Queries) UpdateMemberStatus(ctx context.Context, id, status string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE members SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) ListMembersByStatus(ctx context.Context, status string) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE status = ?
		 ORDER BY first_name, last_name`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListMembersByIDs returns the members whose ids appear in ids, in no
// particular order. Unknown ids are silently absent from the result.
func (q *Queries) ListMembersByIDs(ctx context.Context, ids []string) ([]Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM members WHERE id IN (%s)`, memberColumns, placeholders),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
