package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"graphichelper/internal/repository"
	"graphichelper/internal/storage"
)

// Scheduler runs the housekeeping the request path never does: sweeping
// stale temp uploads and expiring dead server sessions.
type Scheduler struct {
	cron       *cron.Cron
	temp       *storage.TempStore
	sessions   *repository.SessionRepository
	tempMaxAge time.Duration
	log        zerolog.Logger
}

func NewScheduler(temp *storage.TempStore, sessions *repository.SessionRepository, tempMaxAge time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		temp:       temp,
		sessions:   sessions,
		tempMaxAge: tempMaxAge,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */10 * * * *", s.sweepTemp); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.expireSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepTemp() {
	removed, err := s.temp.SweepOlderThan(s.tempMaxAge)
	if err != nil {
		s.log.Error().Err(err).Msg("temp sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("temp files swept")
	}
}

func (s *Scheduler) expireSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session expiry failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired sessions deleted")
	}
}
