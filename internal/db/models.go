package db

import (
	"database/sql"
	"time"
)

type Member struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Role        string
	Status      string
	CreatedAt   time.Time
}

type League struct {
	ID            string
	Name          string
	CoordinatorID sql.NullString
}

type LeagueSeason struct {
	ID         string
	LeagueID   string
	Name       string
	Status     string
	StartDate  sql.NullString
	EndDate    sql.NullString
	MaxPlayers sql.NullInt64
	CreatedAt  time.Time
}

type LeagueEnrollment struct {
	ID         string
	SeasonID   string
	MemberID   string
	Status     string
	EnrolledAt time.Time
}

type Reservation struct {
	ID        string
	MemberID  string
	Date      string
	Name      string
	Type      string
	LeagueID  sql.NullString
	GroupID   sql.NullString
	Status    string
	CreatedAt time.Time
}

type ReservationCell struct {
	ReservationID string
	Date          string
	Slot          int64
	Court         int64
	Status        string
}
