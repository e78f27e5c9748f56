package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/biotap/biotap/app/scheduler"
	"github.com/biotap/biotap/app/services"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/utils"
	"github.com/gofiber/fiber/v3"
)

// AdminHandlerInterface defines the contract for operational endpoints
type AdminHandlerInterface interface {
	RunWeeklySummary(c fiber.Ctx) error
	WeeklySummaryStatus(c fiber.Ctx) error
	EmailStats(c fiber.Ctx) error
}

type AdminHandler struct {
	summaryScheduler *scheduler.WeeklySummaryScheduler
	emailService     services.EmailService
}

func NewAdminHandler(summaryScheduler *scheduler.WeeklySummaryScheduler, emailService services.EmailService) AdminHandlerInterface {
	return &AdminHandler{summaryScheduler: summaryScheduler, emailService: emailService}
}

// RunWeeklySummary triggers one weekly summary run on demand. A run already
// in progress answers 409 instead of queueing a second one.
func (h *AdminHandler) RunWeeklySummary(c fiber.Ctx) error {
	report, err := h.summaryScheduler.RunOnce(createRequestContextWithTimeout(c, "/api/v1/admin/jobs/weekly-summary", utils.AdminJobTimeout))
	if err != nil {
		if errors.Is(err, businessflow.ErrJobAlreadyRunning) {
			return errorResponse(c, fiber.StatusConflict, "JOB_ALREADY_RUNNING", "Weekly summary job is already running")
		}
		log.Println("Weekly summary run failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "JOB_FAILED", "Weekly summary job failed")
	}

	return successResponse(c, fiber.StatusOK, "Weekly summary job finished", report)
}

// WeeklySummaryStatus reports whether a run is currently in progress
func (h *AdminHandler) WeeklySummaryStatus(c fiber.Ctx) error {
	return successResponse(c, fiber.StatusOK, "Job status", fiber.Map{
		"running": h.summaryScheduler.IsRunning(),
	})
}

// EmailStats summarizes summary email delivery over the trailing window
func (h *AdminHandler) EmailStats(c fiber.Ctx) error {
	days := utils.DefaultWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < utils.MinWindowDays || parsed > utils.MaxWindowDays {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_WINDOW", "days must be between 1 and 365")
		}
		days = parsed
	}

	stats, err := h.emailService.Stats(createRequestContext(c, "/api/v1/admin/emails/stats"), days)
	if err != nil {
		log.Println("Email stats failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "EMAIL_STATS_FAILED", "Failed to compute email stats")
	}

	return successResponse(c, fiber.StatusOK, "Email stats computed", stats)
}
