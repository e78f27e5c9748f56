package handlers

import (
	"errors"
	"log"

	"github.com/biotap/biotap/app/dto"
	businessflow "github.com/biotap/biotap/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// UserHandlerInterface defines the contract for account management
type UserHandlerInterface interface {
	CreateUser(c fiber.Ctx) error
	GetUser(c fiber.Ctx) error
	DeactivateUser(c fiber.Ctx) error
}

type UserHandler struct {
	flow      businessflow.UserFlow
	validator *validator.Validate
}

func NewUserHandler(flow businessflow.UserFlow) UserHandlerInterface {
	return &UserHandler{flow: flow, validator: validator.New()}
}

func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.flow.CreateUser(createRequestContext(c, "/api/v1/users"), &req)
	if err != nil {
		switch {
		case errors.Is(err, businessflow.ErrUsernameAlreadyExists):
			return errorResponse(c, fiber.StatusConflict, "USERNAME_TAKEN", "Username already exists")
		case errors.Is(err, businessflow.ErrEmailAlreadyExists):
			return errorResponse(c, fiber.StatusConflict, "EMAIL_TAKEN", "Email already exists")
		}
		log.Println("Create user failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "USER_CREATE_FAILED", "Failed to create user")
	}

	return successResponse(c, fiber.StatusCreated, "User created", user)
}

func (h *UserHandler) GetUser(c fiber.Ctx) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}

	user, err := h.flow.GetUser(createRequestContext(c, "/api/v1/users/:id"), userID)
	if err != nil {
		if errors.Is(err, businessflow.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found")
		}
		log.Println("Get user failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "USER_LOOKUP_FAILED", "Failed to lookup user")
	}

	return successResponse(c, fiber.StatusOK, "User found", user)
}

func (h *UserHandler) DeactivateUser(c fiber.Ctx) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_USER_ID", "User ID must be a positive integer")
	}

	err := h.flow.DeactivateUser(createRequestContext(c, "/api/v1/users/:id"), userID)
	if err != nil {
		if errors.Is(err, businessflow.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found")
		}
		log.Println("Deactivate user failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "USER_DEACTIVATE_FAILED", "Failed to deactivate user")
	}

	return successResponse(c, fiber.StatusOK, "User deactivated", nil)
}
