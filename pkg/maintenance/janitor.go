package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/submission"
	"github.com/pixelforge/studio/pkg/wizard"
)

const (
	// sessionSweepSchedule drops expired in-memory wizard sessions.
	sessionSweepSchedule = "*/10 * * * *"
	// pendingReportSchedule logs checkouts that never completed.
	pendingReportSchedule = "0 * * * *"

	// pendingAge is how old a pending submission must be before the
	// janitor reports it as abandoned.
	pendingAge = 24 * time.Hour
)

// Janitor schedules the housekeeping jobs.
type Janitor struct {
	cron        *cron.Cron
	db          *sql.DB
	submissions *submission.Store
	sessions    *wizard.MemoryStore // nil when sessions live in Redis
	metrics     *observability.Metrics
	logger      *logrus.Logger
}

// NewJanitor creates a janitor. sessions may be nil when Redis handles
// session expiry; metrics may be nil.
func NewJanitor(db *sql.DB, submissions *submission.Store, sessions *wizard.MemoryStore, metrics *observability.Metrics, logger *logrus.Logger) *Janitor {
	return &Janitor{
		cron:        cron.New(),
		db:          db,
		submissions: submissions,
		sessions:    sessions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Start schedules and starts the jobs.
func (j *Janitor) Start() error {
	if j.sessions != nil {
		if _, err := j.cron.AddFunc(sessionSweepSchedule, j.sweepSessions); err != nil {
			return fmt.Errorf("failed to schedule session sweep: %w", err)
		}
	}
	if _, err := j.cron.AddFunc(pendingReportSchedule, j.reportPending); err != nil {
		return fmt.Errorf("failed to schedule pending report: %w", err)
	}
	j.cron.Start()
	j.logger.Info("Started maintenance janitor")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (j *Janitor) Stop(ctx context.Context) error {
	stopped := j.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("janitor stop timed out: %w", ctx.Err())
	}
}

func (j *Janitor) sweepSessions() {
	removed := j.sessions.Sweep()
	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Swept expired wizard sessions")
	}
	if j.metrics != nil {
		j.metrics.WizardSessionsActive.Set(float64(j.sessions.Len()))
	}
}

func (j *Janitor) reportPending() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-pendingAge)
	count, err := j.submissions.CountPendingOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.WithError(err).Warn("Failed to count aged pending submissions")
		return
	}
	if count > 0 {
		j.logger.WithField("count", count).
			Warn("Submissions pending for over a day; checkout may have been abandoned")
	}

	if j.metrics != nil && j.db != nil {
		stats := j.db.Stats()
		j.metrics.DBConnectionsActive.Set(float64(stats.InUse))
		j.metrics.DBConnectionsIdle.Set(float64(stats.Idle))
	}
}
