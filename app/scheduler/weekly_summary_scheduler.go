// Package scheduler
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/app/services"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	summaryEmailsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weekly_summary_emails_sent_total",
		Help: "Total number of weekly analytics summary emails sent",
	})
	summaryEmailsErroredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weekly_summary_emails_errored_total",
		Help: "Total number of weekly analytics summary emails that failed",
	})
	summaryUsersSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weekly_summary_users_skipped_total",
		Help: "Total number of users skipped by the weekly summary job",
	})
	summaryRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weekly_summary_run_duration_seconds",
		Help:    "Duration of weekly summary job runs in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

const userPageSize = 500

// ActiveUserLister pages through users eligible for summary emails
type ActiveUserLister interface {
	ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// SummaryProvider computes a user's windowed analytics rollup
type SummaryProvider interface {
	GetAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.AnalyticsSummary, error)
}

// SummaryMailer delivers the rendered summary to one user
type SummaryMailer interface {
	SendAnalyticsSummary(ctx context.Context, user *models.User, summary *dto.AnalyticsSummary, periodStart, periodEnd time.Time) error
}

// SummaryLedger answers whether a user already received a summary covering
// the period. These minimal interfaces keep the scheduler independent and
// easy to test.
type SummaryLedger interface {
	HasSuccessfulSummarySince(ctx context.Context, userID uint, periodStart time.Time) (bool, error)
}

// WeeklySummaryScheduler periodically walks all active users and emails each
// one a summary of the trailing week, at most once per period. Overlapping
// runs are dropped, not queued.
type WeeklySummaryScheduler struct {
	users     ActiveUserLister
	analytics SummaryProvider
	mailer    SummaryMailer
	ledger    SummaryLedger
	logger    *log.Logger
	interval  time.Duration

	running atomic.Bool
	logFile *os.File
}

func NewWeeklySummaryScheduler(
	users ActiveUserLister,
	analytics SummaryProvider,
	mailer SummaryMailer,
	ledger SummaryLedger,
	interval time.Duration,
) *WeeklySummaryScheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	s := &WeeklySummaryScheduler{
		users:     users,
		analytics: analytics,
		mailer:    mailer,
		ledger:    ledger,
		interval:  interval,
	}

	// Initialize scheduler-specific logger (to stdout and persistent file)
	if err := s.initSchedulerLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (s *WeeklySummaryScheduler) initSchedulerLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		f, err := os.OpenFile(filepath.Join(dir, "scheduler.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create scheduler log file in any candidate directory")
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *WeeklySummaryScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()

	return func() {
		cancel()
		if s.logFile != nil {
			_ = s.logFile.Close()
		}
	}
}

func (s *WeeklySummaryScheduler) tick(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		if err == businessflow.ErrJobAlreadyRunning {
			s.logger.Printf("scheduler: previous run still in progress, dropping tick")
			return
		}
		s.logger.Printf("scheduler: weekly summary run failed: %v", err)
		return
	}
	s.logger.Printf("scheduler: weekly summary run finished sent=%d errors=%d skipped=%d",
		report.Sent, report.Errors, report.Skipped)
}

// IsRunning reports whether a run is currently in progress
func (s *WeeklySummaryScheduler) IsRunning() bool {
	return s.running.Load()
}

// RunOnce walks every active user once. A failure for one user never stops
// the walk; it is counted and the next user is processed. Only one run may
// be in flight at a time.
func (s *WeeklySummaryScheduler) RunOnce(ctx context.Context) (dto.WeeklyJobReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return dto.WeeklyJobReport{}, businessflow.ErrJobAlreadyRunning
	}
	defer s.running.Store(false)

	start := time.Now()
	defer func() {
		summaryRunDuration.Observe(time.Since(start).Seconds())
	}()

	periodEnd := utils.UTCNow()
	periodStart := periodEnd.Add(-time.Duration(utils.SummaryPeriodDays) * 24 * time.Hour)

	var report dto.WeeklyJobReport
	offset := 0
	for {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		users, err := s.users.ListActiveUsers(ctx, userPageSize, offset)
		if err != nil {
			return report, fmt.Errorf("list active users: %w", err)
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			s.processUser(ctx, user, periodStart, periodEnd, &report)
		}

		if len(users) < userPageSize {
			break
		}
		offset += userPageSize
	}

	return report, nil
}

func (s *WeeklySummaryScheduler) processUser(ctx context.Context, user *models.User, periodStart, periodEnd time.Time, report *dto.WeeklyJobReport) {
	sent, err := s.ledger.HasSuccessfulSummarySince(ctx, user.ID, periodStart)
	if err != nil {
		s.logger.Printf("scheduler: duplicate check failed for user id=%d: %v", user.ID, err)
		report.Errors++
		summaryEmailsErroredTotal.Inc()
		return
	}
	if sent {
		report.Skipped++
		summaryUsersSkippedTotal.Inc()
		return
	}

	summary, err := s.analytics.GetAnalytics(ctx, user.ID, utils.SummaryPeriodDays)
	if err != nil {
		s.logger.Printf("scheduler: analytics failed for user id=%d: %v", user.ID, err)
		report.Errors++
		summaryEmailsErroredTotal.Inc()
		return
	}

	// Nothing happened this week: no email, no send-log row
	if summary.TotalClicks == 0 {
		report.Skipped++
		summaryUsersSkippedTotal.Inc()
		return
	}

	if err := s.mailer.SendAnalyticsSummary(ctx, user, summary, periodStart, periodEnd); err != nil {
		if errors.Is(err, services.ErrAnalyticsEmailsDisabled) {
			report.Skipped++
			summaryUsersSkippedTotal.Inc()
			return
		}
		s.logger.Printf("scheduler: summary email failed for user id=%d: %v", user.ID, err)
		report.Errors++
		summaryEmailsErroredTotal.Inc()
		return
	}

	report.Sent++
	summaryEmailsSentTotal.Inc()
}
