package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/config"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/repository"
	"github.com/biotap/biotap/utils"
)

// EmailProvider is the outbound transport: fire one message, report the outcome
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// ErrAnalyticsEmailsDisabled reports that summary delivery is switched off
// in configuration. Callers treat it as a skip, not a failure.
var ErrAnalyticsEmailsDisabled = errors.New("analytics summary emails are disabled")

// EmailService renders and sends templated messages and records a send-log
// entry per attempt, success or failure
type EmailService interface {
	SendWelcome(ctx context.Context, user *models.User) error
	SendPasswordReset(ctx context.Context, user *models.User, resetToken string) error
	SendAnalyticsSummary(ctx context.Context, user *models.User, summary *dto.AnalyticsSummary, periodStart, periodEnd time.Time) error
	Stats(ctx context.Context, windowDays int) (*dto.EmailStats, error)
}

type EmailServiceImpl struct {
	provider EmailProvider
	logRepo  repository.EmailLogRepository
	cfg      config.EmailConfig
}

func NewEmailService(provider EmailProvider, logRepo repository.EmailLogRepository, cfg config.EmailConfig) EmailService {
	return &EmailServiceImpl{provider: provider, logRepo: logRepo, cfg: cfg}
}

// send dispatches one message and always appends an EmailLog row describing
// the attempt. The periodStart/periodEnd tags are set only for
// analytics_summary messages.
func (s *EmailServiceImpl) send(ctx context.Context, user *models.User, emailType, subject, html string, periodStart, periodEnd *time.Time) error {
	sendErr := s.provider.SendEmail(ctx, user.Email, subject, html)

	row := &models.EmailLog{
		UserID:               user.ID,
		EmailType:            emailType,
		RecipientEmail:       user.Email,
		Subject:              subject,
		Success:              sendErr == nil,
		AnalyticsPeriodStart: utils.TimeToUTCPtr(periodStart),
		AnalyticsPeriodEnd:   utils.TimeToUTCPtr(periodEnd),
		SentAt:               utils.UTCNow(),
	}
	if sendErr != nil {
		row.ErrorMessage = utils.ToPtr(sendErr.Error())
	}

	if logErr := s.logRepo.Save(ctx, row); logErr != nil {
		// The audit row is best-effort; the send outcome still decides the result
		log.Printf("email: failed to record send log for user %d: %v", user.ID, logErr)
	}

	if sendErr != nil {
		return fmt.Errorf("failed to send %s email to %s: %w", emailType, user.Email, sendErr)
	}
	return nil
}

func (s *EmailServiceImpl) SendWelcome(ctx context.Context, user *models.User) error {
	if !s.cfg.SendWelcomeEmails {
		return nil
	}

	subject := fmt.Sprintf("Welcome to %s!", s.cfg.AppName)
	html, err := renderWelcomeEmail(welcomeEmailData{
		AppName:     s.cfg.AppName,
		Username:    user.Username,
		Email:       user.Email,
		FrontendURL: s.cfg.FrontendURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	return s.send(ctx, user, models.EmailTypeWelcome, subject, html, nil, nil)
}

func (s *EmailServiceImpl) SendPasswordReset(ctx context.Context, user *models.User, resetToken string) error {
	subject := fmt.Sprintf("Reset your %s password", s.cfg.AppName)
	html, err := renderPasswordResetEmail(passwordResetEmailData{
		AppName:   s.cfg.AppName,
		Username:  user.Username,
		Email:     user.Email,
		ResetLink: fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, resetToken),
	})
	if err != nil {
		return fmt.Errorf("failed to render password reset email: %w", err)
	}

	return s.send(ctx, user, models.EmailTypePasswordReset, subject, html, nil, nil)
}

func (s *EmailServiceImpl) SendAnalyticsSummary(ctx context.Context, user *models.User, summary *dto.AnalyticsSummary, periodStart, periodEnd time.Time) error {
	if !s.cfg.SendAnalyticsEmails {
		return ErrAnalyticsEmailsDisabled
	}

	subject := fmt.Sprintf("Your weekly %s analytics summary", s.cfg.AppName)

	topLinks := summary.TopLinks
	if len(topLinks) > 3 {
		topLinks = topLinks[:3]
	}
	html, err := renderAnalyticsSummaryEmail(analyticsSummaryEmailData{
		AppName:          s.cfg.AppName,
		Username:         user.Username,
		Email:            user.Email,
		FrontendURL:      s.cfg.FrontendURL,
		TotalClicks:      summary.TotalClicks,
		UniqueVisitors:   summary.UniqueVisitors,
		TopLinks:         topLinks,
		GrowthPercentage: summary.GrowthPercentage,
	})
	if err != nil {
		return fmt.Errorf("failed to render analytics summary email: %w", err)
	}

	return s.send(ctx, user, models.EmailTypeAnalyticsSummary, subject, html, &periodStart, &periodEnd)
}

// Stats summarizes analytics_summary delivery over the trailing window
func (s *EmailServiceImpl) Stats(ctx context.Context, windowDays int) (*dto.EmailStats, error) {
	cutoff := utils.UTCNowAdd(-time.Duration(windowDays) * 24 * time.Hour)

	logs, err := s.logRepo.ListSummariesSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list summary email logs: %w", err)
	}

	stats := &dto.EmailStats{}
	for _, row := range logs {
		if row.Success {
			stats.TotalSent++
			if stats.LastSentAt == nil || row.SentAt.After(*stats.LastSentAt) {
				stats.LastSentAt = utils.ToPtr(row.SentAt)
			}
		} else {
			stats.TotalFailed++
		}
	}
	if total := stats.TotalSent + stats.TotalFailed; total > 0 {
		stats.SuccessRate = utils.Round1(float64(stats.TotalSent) / float64(total) * 100)
	}
	return stats, nil
}
