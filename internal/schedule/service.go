package schedule

import (
	"errors"

	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
)

// ErrNotFound reports that a reservation id does not exist.
var ErrNotFound = errors.New("reservation not found")

// Service is the reservation scheduling core. It is stateless between calls;
// the database is the single source of truth and every validate-then-write
// runs as one transaction against it.
type Service struct {
	store *db.DB
	clock clubtime.Clock
}

func NewService(store *db.DB, clock clubtime.Clock) *Service {
	if clock == nil {
		clock = clubtime.RealClock{}
	}
	return &Service{store: store, clock: clock}
}
