package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/clubtime"
)

// CellSummary identifies the reservation occupying a cell, enough for both
// rendering and pre-submit validation on the client.
type CellSummary struct {
	ReservationID string `json:"id"`
	MemberID      string `json:"member_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
}

type SlotAvailability struct {
	SlotIndex           int                 `json:"slotIndex"`
	StartTime           string              `json:"startTime"`
	EndTime             string              `json:"endTime"`
	ReservationsByCourt map[int]CellSummary `json:"reservationsByCourt"`
	AvailableCourts     int                 `json:"availableCourts"`
	IsFull              bool                `json:"isFull"`
}

type DayGrid struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

type DayAvailability struct {
	Date        string `json:"date"`
	BookedSlots int    `json:"bookedSlots"`
	TotalSlots  int    `json:"totalSlots"`
}

// Availability returns the full slot×court occupancy grid for a date. It
// reads the live cell table on every call: a committed cancellation is
// visible to the very next read.
func (s *Service) Availability(ctx context.Context, date time.Time) (DayGrid, error) {
	dateStr := clubtime.FormatDate(date)
	cells, err := s.store.Queries.ListActiveCellsByDate(ctx, dateStr)
	if err != nil {
		return DayGrid{}, fmt.Errorf("load occupancy: %w", err)
	}

	byCell := make(map[Cell]CellSummary, len(cells))
	for _, cell := range cells {
		byCell[Cell{Slot: int(cell.Slot), Court: int(cell.Court)}] = CellSummary{
			ReservationID: cell.ReservationID,
			MemberID:      cell.MemberID,
			Name:          cell.Name,
			Type:          cell.Type,
		}
	}

	grid := DayGrid{Date: dateStr, Slots: make([]SlotAvailability, 0, clubtime.SlotCount)}
	for slot := 1; slot <= clubtime.SlotCount; slot++ {
		slotView := SlotAvailability{
			SlotIndex:           slot,
			StartTime:           clubtime.SlotStart(slot),
			EndTime:             clubtime.SlotEnd(slot),
			ReservationsByCourt: make(map[int]CellSummary),
		}
		for court := 1; court <= clubtime.CourtCount; court++ {
			if summary, ok := byCell[Cell{Slot: slot, Court: court}]; ok {
				slotView.ReservationsByCourt[court] = summary
			}
		}
		slotView.AvailableCourts = clubtime.CourtCount - len(slotView.ReservationsByCourt)
		slotView.IsFull = slotView.AvailableCourts == 0
		grid.Slots = append(grid.Slots, slotView)
	}
	return grid, nil
}

// RangeAvailability returns per-day occupied cell counts over an inclusive
// date range, one entry per day including empty ones. It aggregates the same
// cell table Availability reads, so the two views cannot diverge.
func (s *Service) RangeAvailability(ctx context.Context, start, end time.Time) ([]DayAvailability, error) {
	counts, err := s.store.Queries.CountOccupancyByDateRange(ctx,
		clubtime.FormatDate(start), clubtime.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("load occupancy counts: %w", err)
	}

	booked := make(map[string]int, len(counts))
	for _, day := range counts {
		booked[day.Date] = int(day.Booked)
	}

	totalCells := clubtime.SlotCount * clubtime.CourtCount
	var days []DayAvailability
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dateStr := clubtime.FormatDate(day)
		days = append(days, DayAvailability{
			Date:        dateStr,
			BookedSlots: booked[dateStr],
			TotalSlots:  totalCells,
		})
	}
	return days, nil
}

// UpcomingReservation is a caller-scoped reservation summary.
type UpcomingReservation struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Slots     []int    `json:"slots"`
	Courts    []int    `json:"courts"`
	PlayerIDs []string `json:"player_ids"`
	GroupID   string   `json:"group_id,omitempty"`
	LeagueID  string   `json:"league_id,omitempty"`
	CanManage bool     `json:"can_manage"`
}

// Upcoming lists the caller's future ACTIVE reservations: those they own and
// those where they are a listed player.
func (s *Service) Upcoming(ctx context.Context, member *authz.AuthMember) ([]UpcomingReservation, error) {
	today := clubtime.FormatDate(clubtime.Today(s.clock))
	reservations, err := s.store.Queries.ListUpcomingForMember(ctx, member.ID, today)
	if err != nil {
		return nil, fmt.Errorf("load upcoming reservations: %w", err)
	}

	upcoming := make([]UpcomingReservation, 0, len(reservations))
	for _, reservation := range reservations {
		cells, err := s.store.Queries.ListReservationCells(ctx, reservation.ID)
		if err != nil {
			return nil, fmt.Errorf("load reservation cells: %w", err)
		}
		players, err := s.store.Queries.ListReservationPlayers(ctx, reservation.ID)
		if err != nil {
			return nil, fmt.Errorf("load reservation players: %w", err)
		}

		view := UpcomingReservation{
			ID:        reservation.ID,
			Date:      reservation.Date,
			Name:      reservation.Name,
			Type:      reservation.Type,
			GroupID:   reservation.GroupID.String,
			LeagueID:  reservation.LeagueID.String,
			CanManage: CanManage(member, reservation, players),
		}
		slotSeen := make(map[int]struct{})
		courtSeen := make(map[int]struct{})
		for _, cell := range cells {
			if cell.Status != "ACTIVE" {
				continue
			}
			if _, ok := slotSeen[int(cell.Slot)]; !ok {
				slotSeen[int(cell.Slot)] = struct{}{}
				view.Slots = append(view.Slots, int(cell.Slot))
			}
			if _, ok := courtSeen[int(cell.Court)]; !ok {
				courtSeen[int(cell.Court)] = struct{}{}
				view.Courts = append(view.Courts, int(cell.Court))
			}
		}
		for _, player := range players {
			view.PlayerIDs = append(view.PlayerIDs, player.MemberID)
		}
		upcoming = append(upcoming, view)
	}
	return upcoming, nil
}
