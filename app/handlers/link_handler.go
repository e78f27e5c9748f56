package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/biotap/biotap/app/dto"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LinkHandlerInterface defines the contract for link management
type LinkHandlerInterface interface {
	CreateLink(c fiber.Ctx) error
	UpdateLink(c fiber.Ctx) error
	DeleteLink(c fiber.Ctx) error
	ListLinks(c fiber.Ctx) error
	PublicLinks(c fiber.Ctx) error
}

type LinkHandler struct {
	flow      businessflow.LinkFlow
	validator *validator.Validate
}

func NewLinkHandler(flow businessflow.LinkFlow) LinkHandlerInterface {
	return &LinkHandler{flow: flow, validator: validator.New()}
}

func (h *LinkHandler) CreateLink(c fiber.Ctx) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}

	var req dto.CreateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	link, err := h.flow.CreateLink(createRequestContext(c, "/api/v1/users/:user_id/links"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, businessflow.ErrUserNotFound):
			return errorResponse(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, businessflow.ErrUserInactive):
			return errorResponse(c, fiber.StatusForbidden, "USER_INACTIVE", "User account is inactive")
		case errors.Is(err, businessflow.ErrInvalidLinkURL):
			return errorResponse(c, fiber.StatusBadRequest, "INVALID_URL", "URL must start with http:// or https://")
		}
		log.Println("Create link failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "LINK_CREATE_FAILED", "Failed to create link")
	}

	return successResponse(c, fiber.StatusCreated, "Link created", link)
}

func (h *LinkHandler) UpdateLink(c fiber.Ctx) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}
	linkID, ok := pathID(c, "link_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_LINK_ID", "Link ID must be a positive integer")
	}

	var req dto.UpdateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	link, err := h.flow.UpdateLink(createRequestContext(c, "/api/v1/users/:user_id/links/:link_id"), userID, linkID, &req)
	if err != nil {
		if resp := h.linkErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Println("Update link failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "LINK_UPDATE_FAILED", "Failed to update link")
	}

	return successResponse(c, fiber.StatusOK, "Link updated", link)
}

func (h *LinkHandler) DeleteLink(c fiber.Ctx) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}
	linkID, ok := pathID(c, "link_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_LINK_ID", "Link ID must be a positive integer")
	}

	err := h.flow.DeleteLink(createRequestContext(c, "/api/v1/users/:user_id/links/:link_id"), userID, linkID)
	if err != nil {
		if resp := h.linkErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Println("Delete link failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "LINK_DELETE_FAILED", "Failed to delete link")
	}

	return successResponse(c, fiber.StatusOK, "Link deleted", nil)
}

func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}

	links, err := h.flow.ListLinks(createRequestContext(c, "/api/v1/users/:user_id/links"), userID)
	if err != nil {
		log.Println("List links failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "LINK_LIST_FAILED", "Failed to list links")
	}

	return successResponse(c, fiber.StatusOK, "Links listed", links)
}

// PublicLinks returns the active links for a public profile page
func (h *LinkHandler) PublicLinks(c fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USERNAME", "Username is required")
	}

	links, err := h.flow.PublicLinksByUsername(createRequestContext(c, "/api/v1/public/:username/links"), username)
	if err != nil {
		if errors.Is(err, businessflow.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found")
		}
		log.Println("Public links failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "LINK_LIST_FAILED", "Failed to list links")
	}

	return successResponse(c, fiber.StatusOK, "Links listed", links)
}

func (h *LinkHandler) linkErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, businessflow.ErrLinkNotFound):
		return errorResponse(c, fiber.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, businessflow.ErrLinkAccessDenied):
		return errorResponse(c, fiber.StatusForbidden, "LINK_ACCESS_DENIED", "Link belongs to another user")
	case errors.Is(err, businessflow.ErrInvalidLinkURL):
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_URL", "URL must start with http:// or https://")
	}
	return nil
}

func pathID(c fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func validationErrorResponse(c fiber.Ctx, err error) error {
	messages := validationMessages(err)
	if len(messages) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	}
	return errorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", messages[0])
}
