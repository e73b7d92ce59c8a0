package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/clubtime"
	"github.com/crtc/courtbook/internal/db"
	"github.com/crtc/courtbook/internal/leagues"
)

// RegisterSeasonJobs registers the nightly league season maintenance sweep:
// ACTIVE seasons whose end date has passed are marked COMPLETED. An empty
// cron expression disables the sweep.
func RegisterSeasonJobs(database *db.DB, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("season jobs require database")
	}
	if cronExpr == "" {
		log.Info().Msg("Season sweep disabled: no cron expression configured")
		return nil
	}

	jobName := "league_season_sweep"
	jobLogger := log.With().
		Str("component", "league_season_sweep_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if err := CompleteOverdueSeasons(ctx, database, clubtime.RealClock{}); err != nil {
			jobLogger.Error().Err(err).Msg("Season sweep failed")
		}
	})
	return err
}

// CompleteOverdueSeasons moves every ACTIVE season whose end date is before
// today to COMPLETED.
func CompleteOverdueSeasons(ctx context.Context, database *db.DB, clock clubtime.Clock) error {
	logger := log.Ctx(ctx)
	today := clubtime.FormatDate(clubtime.Today(clock))

	seasons, err := database.Queries.ListOverdueActiveSeasons(ctx, today)
	if err != nil {
		return fmt.Errorf("list overdue seasons: %w", err)
	}

	for _, season := range seasons {
		if _, err := database.Queries.UpdateSeasonStatus(ctx, season.ID, leagues.SeasonCompleted); err != nil {
			logger.Error().Err(err).Str("season_id", season.ID).Msg("Failed to complete season")
			continue
		}
		logger.Info().
			Str("season_id", season.ID).
			Str("league_id", season.LeagueID).
			Str("end_date", season.EndDate.String).
			Msg("Season completed")
	}
	return nil
}
