package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/app/services"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserLister struct {
	users []*models.User
}

func (f *fakeUserLister) ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if offset >= len(f.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], nil
}

type fakeSummaryProvider struct {
	summaries map[uint]*dto.AnalyticsSummary
	errFor    map[uint]error
}

func (f *fakeSummaryProvider) GetAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.AnalyticsSummary, error) {
	if err := f.errFor[userID]; err != nil {
		return nil, err
	}
	if s, ok := f.summaries[userID]; ok {
		return s, nil
	}
	return &dto.AnalyticsSummary{}, nil
}

type fakeMailer struct {
	sentTo  []uint
	errFor  map[uint]error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeMailer) SendAnalyticsSummary(ctx context.Context, user *models.User, summary *dto.AnalyticsSummary, periodStart, periodEnd time.Time) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if err := f.errFor[user.ID]; err != nil {
		return err
	}
	f.sentTo = append(f.sentTo, user.ID)
	return nil
}

type fakeLedger struct {
	alreadySent map[uint]bool
	errFor      map[uint]error
}

func (f *fakeLedger) HasSuccessfulSummarySince(ctx context.Context, userID uint, periodStart time.Time) (bool, error) {
	if err := f.errFor[userID]; err != nil {
		return false, err
	}
	return f.alreadySent[userID], nil
}

func user(id uint) *models.User {
	return &models.User{ID: id, Username: "u", Email: "u@example.com", IsActive: utils.ToPtr(true)}
}

func activeSummary() *dto.AnalyticsSummary {
	return &dto.AnalyticsSummary{TotalClicks: 12, UniqueVisitors: 3}
}

func TestRunOnceSendsToActiveUsers(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1), user(2)}}
	provider := &fakeSummaryProvider{summaries: map[uint]*dto.AnalyticsSummary{
		1: activeSummary(),
		2: activeSummary(),
	}}
	mailer := &fakeMailer{}
	s := NewWeeklySummaryScheduler(users, provider, mailer, &fakeLedger{}, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.WeeklyJobReport{Sent: 2}, report)
	assert.ElementsMatch(t, []uint{1, 2}, mailer.sentTo)
}

func TestRunOnceSuppressesDuplicates(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1), user(2)}}
	provider := &fakeSummaryProvider{summaries: map[uint]*dto.AnalyticsSummary{
		1: activeSummary(),
		2: activeSummary(),
	}}
	mailer := &fakeMailer{}
	ledger := &fakeLedger{alreadySent: map[uint]bool{1: true}}
	s := NewWeeklySummaryScheduler(users, provider, mailer, ledger, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.WeeklyJobReport{Sent: 1, Skipped: 1}, report)
	assert.Equal(t, []uint{2}, mailer.sentTo)
}

func TestRunOnceSkipsZeroActivityWithoutSending(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1)}}
	provider := &fakeSummaryProvider{summaries: map[uint]*dto.AnalyticsSummary{
		1: {TotalClicks: 0},
	}}
	mailer := &fakeMailer{}
	s := NewWeeklySummaryScheduler(users, provider, mailer, &fakeLedger{}, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.WeeklyJobReport{Skipped: 1}, report)
	assert.Empty(t, mailer.sentTo)
}

func TestRunOnceCountsDisabledDeliveryAsSkipped(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1), user(2)}}
	provider := &fakeSummaryProvider{summaries: map[uint]*dto.AnalyticsSummary{
		1: activeSummary(),
		2: activeSummary(),
	}}
	mailer := &fakeMailer{errFor: map[uint]error{
		1: services.ErrAnalyticsEmailsDisabled,
		2: services.ErrAnalyticsEmailsDisabled,
	}}
	s := NewWeeklySummaryScheduler(users, provider, mailer, &fakeLedger{}, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	// Delivery switched off in config reads as skipped, never as sent
	assert.Equal(t, dto.WeeklyJobReport{Skipped: 2}, report)
	assert.Empty(t, mailer.sentTo)
}

func TestRunOnceIsolatesPerUserFailures(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1), user(2), user(3)}}
	provider := &fakeSummaryProvider{
		summaries: map[uint]*dto.AnalyticsSummary{
			1: activeSummary(),
			2: activeSummary(),
			3: activeSummary(),
		},
		errFor: map[uint]error{2: errors.New("db timeout")},
	}
	mailer := &fakeMailer{errFor: map[uint]error{3: errors.New("smtp down")}}
	s := NewWeeklySummaryScheduler(users, provider, mailer, &fakeLedger{}, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.WeeklyJobReport{Sent: 1, Errors: 2}, report)
	assert.Equal(t, []uint{1}, mailer.sentTo)
}

func TestRunOnceRejectsOverlappingRun(t *testing.T) {
	users := &fakeUserLister{users: []*models.User{user(1)}}
	provider := &fakeSummaryProvider{summaries: map[uint]*dto.AnalyticsSummary{1: activeSummary()}}
	mailer := &fakeMailer{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := NewWeeklySummaryScheduler(users, provider, mailer, &fakeLedger{}, time.Hour)

	done := make(chan dto.WeeklyJobReport, 1)
	go func() {
		report, err := s.RunOnce(context.Background())
		assert.NoError(t, err)
		done <- report
	}()

	// Wait until the first run is mid-send, then try to start a second one
	<-mailer.entered
	assert.True(t, s.IsRunning())
	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, businessflow.ErrJobAlreadyRunning)

	close(mailer.block)
	report := <-done
	assert.Equal(t, dto.WeeklyJobReport{Sent: 1}, report)
	assert.False(t, s.IsRunning())
}

func TestRunOncePagesThroughUsers(t *testing.T) {
	var all []*models.User
	for i := uint(1); i <= userPageSize+2; i++ {
		all = append(all, user(i))
	}
	summaries := map[uint]*dto.AnalyticsSummary{}
	for _, u := range all {
		summaries[u.ID] = activeSummary()
	}
	users := &fakeUserLister{users: all}
	mailer := &fakeMailer{}
	s := NewWeeklySummaryScheduler(users, &fakeSummaryProvider{summaries: summaries}, mailer, &fakeLedger{}, time.Hour)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, userPageSize+2, report.Sent)
	assert.Len(t, mailer.sentTo, userPageSize+2)
}
