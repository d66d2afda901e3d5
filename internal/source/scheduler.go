package source

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "monthcal/internal/log"
)

// Scheduler reloads a Store on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	store *Store
}

func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(time.Local)),
		store: store,
	}
}

// ValidateSpec checks a standard five-field cron spec.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid reload spec %q: %w", spec, err)
	}
	return nil
}

// Start registers the reload job and runs the scheduler until ctx is done.
// An empty spec disables scheduled reloads.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		appLog.Info("scheduled reload disabled")
		return nil
	}
	if err := ValidateSpec(spec); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(spec, func() { s.reload(ctx) }); err != nil {
		return fmt.Errorf("add reload job: %w", err)
	}
	s.cron.Start()
	appLog.Info("scheduled reload started", "spec", spec)

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		appLog.Debug("scheduled reload stopped")
	}()
	return nil
}

// Next returns the next planned reload, zero if none is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.store.Reload(ctx); err != nil {
		appLog.Error("scheduled reload finished with errors", err)
	}
}
