package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/biotap/biotap/app/middleware"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/biotap/biotap/models"
	"github.com/gofiber/fiber/v3"
)

// ClickHandlerInterface defines the contract for click tracking
type ClickHandlerInterface interface {
	TrackClick(c fiber.Ctx) error
}

type ClickHandler struct {
	flow businessflow.TrackClickFlow
}

func NewClickHandler(flow businessflow.TrackClickFlow) ClickHandlerInterface {
	return &ClickHandler{flow: flow}
}

// TrackClick records a click on a link and returns the stored event.
// The referer is read from the Referer header; user agent and IP come
// from the request itself. None of them are required.
func (h *ClickHandler) TrackClick(c fiber.Ctx) error {
	linkID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_LINK_ID", "Link ID must be a positive integer")
	}

	var ip, ua, referer *string
	if v := c.IP(); v != "" {
		ip = &v
	}
	if v := c.Get("User-Agent"); v != "" {
		ua = &v
	}
	if v := c.Get("Referer"); v != "" {
		referer = &v
	}

	event, err := h.flow.TrackClick(createRequestContext(c, "/api/v1/links/:id/click"), uint(linkID), ip, ua, referer)
	if err != nil {
		if errors.Is(err, businessflow.ErrLinkNotFound) || errors.Is(err, businessflow.ErrLinkInactive) {
			return errorResponse(c, fiber.StatusNotFound, "LINK_NOT_FOUND", "Link not found or inactive")
		}
		log.Println("Track click failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "CLICK_TRACK_FAILED", "Failed to track click")
	}

	deviceType := models.DeviceTypeUnknown
	if event.DeviceType != nil {
		deviceType = *event.DeviceType
	}
	middleware.ClicksTrackedTotal.WithLabelValues(deviceType).Inc()
	return successResponse(c, fiber.StatusCreated, "Click tracked", businessflow.ToClickEventDTO(*event))
}
