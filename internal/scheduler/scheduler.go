package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/service"
)

// Scheduler drives the periodic jobs: the hourly ranking observation and the
// weekly/monthly counter resets. Resets are boundary-detected on each tick so
// a restart inside a period never skips or repeats one.
type Scheduler struct {
	ranking *service.RankingService
	logger  zerolog.Logger

	lastWeek  time.Time
	lastMonth time.Time
}

func New(ranking *service.RankingService, logger zerolog.Logger) *Scheduler {
	now := time.Now()
	return &Scheduler{
		ranking:   ranking,
		logger:    logger,
		lastWeek:  domain.WeekStart(now),
		lastMonth: domain.MonthStart(now),
	}
}

// Run blocks until ctx is cancelled, executing jobs on their intervals. Job
// failures are logged and the tickers keep going.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(constants.RankingCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := s.ranking.RunRankingCheck(ctx); err != nil {
					s.logger.Error().Err(err).Msg("ranking check failed")
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(constants.ResetCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				s.checkResets(ctx)
			}
		}
	})

	return g.Wait()
}

func (s *Scheduler) checkResets(ctx context.Context) {
	now := time.Now()

	if week := domain.WeekStart(now); week.After(s.lastWeek) {
		if err := s.ranking.ResetWeeklyCounters(ctx); err != nil {
			s.logger.Error().Err(err).Msg("weekly reset failed")
		} else {
			s.lastWeek = week
		}
	}

	if month := domain.MonthStart(now); month.After(s.lastMonth) {
		if err := s.ranking.ResetMonthlyCounters(ctx); err != nil {
			s.logger.Error().Err(err).Msg("monthly reset failed")
		} else {
			s.lastMonth = month
		}
	}
}
