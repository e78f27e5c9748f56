package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/biotap/biotap/app/dto"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics reads
type AnalyticsHandlerInterface interface {
	GetAnalytics(c fiber.Ctx) error
	GetGeographicAnalytics(c fiber.Ctx) error
}

type AnalyticsHandler struct {
	flow      businessflow.AnalyticsFlow
	validator *validator.Validate
}

func NewAnalyticsHandler(flow businessflow.AnalyticsFlow) AnalyticsHandlerInterface {
	return &AnalyticsHandler{flow: flow, validator: validator.New()}
}

// GetAnalytics returns the windowed rollup for one user's link set.
// The window defaults to 30 days when the days query parameter is absent.
func (h *AnalyticsHandler) GetAnalytics(c fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}
	days, ok := h.windowDays(c)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_WINDOW", "days must be between 1 and 365")
	}

	summary, err := h.flow.GetAnalytics(createRequestContext(c, "/api/v1/users/:id/analytics"), uint(userID), days)
	if err != nil {
		if errors.Is(err, businessflow.ErrInvalidWindowDays) {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_WINDOW", "days must be between 1 and 365")
		}
		log.Println("Get analytics failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "ANALYTICS_FAILED", "Failed to compute analytics")
	}

	return successResponse(c, fiber.StatusOK, "Analytics computed", summary)
}

// GetGeographicAnalytics returns the geographic rollup for one user's link set
func (h *AnalyticsHandler) GetGeographicAnalytics(c fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}
	days, ok := h.windowDays(c)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_WINDOW", "days must be between 1 and 365")
	}

	summary, err := h.flow.GetGeographicAnalytics(createRequestContext(c, "/api/v1/users/:id/analytics/geographic"), uint(userID), days)
	if err != nil {
		if errors.Is(err, businessflow.ErrInvalidWindowDays) {
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_WINDOW", "days must be between 1 and 365")
		}
		log.Println("Get geographic analytics failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "ANALYTICS_FAILED", "Failed to compute analytics")
	}

	return successResponse(c, fiber.StatusOK, "Geographic analytics computed", summary)
}

// windowDays binds and validates the days query parameter, defaulting
// when absent
func (h *AnalyticsHandler) windowDays(c fiber.Ctx) (int, bool) {
	if c.Query("days") == "" {
		return utils.DefaultWindowDays, true
	}
	var query dto.AnalyticsQuery
	if err := c.Bind().Query(&query); err != nil {
		return 0, false
	}
	if err := h.validator.Struct(&query); err != nil {
		return 0, false
	}
	return query.WindowDays, true
}
