// Package scheduler runs the periodic background jobs of the server: the
// daily expiry digest and the refresh token purge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/pantrykeeper/internal/logging"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
)

const jobTimeout = 2 * time.Minute

// DigestSource counts lots close to expiry for every user.
type DigestSource interface {
	ExpiryDigest(ctx context.Context) ([]models.ExpiryCount, error)
}

// TokenPurger removes expired refresh tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	digest DigestSource
	purger TokenPurger
	log    logging.Logger

	digestSpec string
	purgeSpec  string
}

func NewScheduler(digest DigestSource, purger TokenPurger, digestSpec, purgeSpec string, loc *time.Location, log logging.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		digest:     digest,
		purger:     purger,
		log:        log.With("module", "scheduler"),
		digestSpec: digestSpec,
		purgeSpec:  purgeSpec,
	}
}

// Start registers the jobs and starts the cron loop. An invalid schedule is
// reported before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.digestSpec, s.runDigest); err != nil {
		return fmt.Errorf("expiry digest schedule %q: %w", s.digestSpec, err)
	}
	if _, err := s.cron.AddFunc(s.purgeSpec, s.runPurge); err != nil {
		return fmt.Errorf("token purge schedule %q: %w", s.purgeSpec, err)
	}

	s.log.Info(context.Background(), "starting scheduler", "digest", s.digestSpec, "purge", s.purgeSpec)
	s.cron.Start()
	return nil
}

// Stop stops the loop and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) {
	s.log.Info(ctx, "stopping scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	counts, err := s.digest.ExpiryDigest(ctx)
	if err != nil {
		s.log.Error(ctx, "expiry digest failed", "error", err)
		return
	}
	for _, c := range counts {
		s.log.Info(ctx, "expiry digest", "user_id", c.UserID, "username", c.UserName, "expiring_lots", c.Count)
	}
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		s.log.Error(ctx, "refresh token purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info(ctx, "expired refresh tokens purged", "count", n)
	}
}
