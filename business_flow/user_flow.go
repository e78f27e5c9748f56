package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/app/services"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/repository"
	"github.com/biotap/biotap/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserFlow handles account registration and lifecycle
type UserFlow interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDTO, error)
	GetUser(ctx context.Context, userID uint) (*dto.UserDTO, error)
	GetUserByUsername(ctx context.Context, username string) (*dto.UserDTO, error)
	DeactivateUser(ctx context.Context, userID uint) error
}

type UserFlowImpl struct {
	userRepo     repository.UserRepository
	emailService services.EmailService
}

func NewUserFlow(userRepo repository.UserRepository, emailService services.EmailService) UserFlow {
	return &UserFlowImpl{userRepo: userRepo, emailService: emailService}
}

func (f *UserFlowImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDTO, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := f.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup username", err)
	}
	if existing != nil {
		return nil, ErrUsernameAlreadyExists
	}

	existing, err = f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup email", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
	}
	if err := f.userRepo.Save(ctx, user); err != nil {
		return nil, NewBusinessError("USER_CREATE_FAILED", "Failed to create user", err)
	}

	// Welcome email is best-effort; registration already succeeded
	if err := f.emailService.SendWelcome(ctx, user); err != nil {
		log.Printf("user: welcome email for %s failed: %v", user.Email, err)
	}

	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) GetUser(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) GetUserByUsername(ctx context.Context, username string) (*dto.UserDTO, error) {
	user, err := f.userRepo.ByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) DeactivateUser(ctx context.Context, userID uint) error {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := f.userRepo.Deactivate(ctx, userID); err != nil {
		return NewBusinessError("USER_DEACTIVATE_FAILED", "Failed to deactivate user", err)
	}
	return nil
}
