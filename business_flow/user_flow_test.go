package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmailService struct {
	welcomed   []uint
	welcomeErr error
}

func (s *fakeEmailService) SendWelcome(ctx context.Context, user *models.User) error {
	if s.welcomeErr != nil {
		return s.welcomeErr
	}
	s.welcomed = append(s.welcomed, user.ID)
	return nil
}

func (s *fakeEmailService) SendPasswordReset(ctx context.Context, user *models.User, resetToken string) error {
	return nil
}

func (s *fakeEmailService) SendAnalyticsSummary(ctx context.Context, user *models.User, summary *dto.AnalyticsSummary, periodStart, periodEnd time.Time) error {
	return nil
}

func (s *fakeEmailService) Stats(ctx context.Context, windowDays int) (*dto.EmailStats, error) {
	return &dto.EmailStats{}, nil
}

func TestCreateUser(t *testing.T) {
	repo := &fakeUserRepo{}
	emails := &fakeEmailService{}
	flow := NewUserFlow(repo, emails)

	out, err := flow.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "  Maria  ",
		Email:    "Maria@Example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria", out.Username)
	assert.Equal(t, "maria@example.com", out.Email)
	assert.True(t, out.IsActive)
	assert.NotEmpty(t, out.UUID)

	require.Len(t, repo.users, 1)
	stored := repo.users[0]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-password")))
	assert.Equal(t, []uint{stored.ID}, emails.welcomed)
}

func TestCreateUserDuplicates(t *testing.T) {
	repo := &fakeUserRepo{users: []*models.User{activeUser(1, "maria")}}
	flow := NewUserFlow(repo, &fakeEmailService{})

	_, err := flow.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "maria", Email: "other@example.com", Password: "s3cret-password",
	})
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)

	_, err = flow.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "other", Email: "maria@example.com", Password: "s3cret-password",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestCreateUserSurvivesWelcomeFailure(t *testing.T) {
	repo := &fakeUserRepo{}
	flow := NewUserFlow(repo, &fakeEmailService{welcomeErr: errors.New("smtp down")})

	out, err := flow.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "maria", Email: "maria@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria", out.Username)
}

func TestDeactivateUser(t *testing.T) {
	repo := &fakeUserRepo{users: []*models.User{activeUser(1, "maria")}}
	flow := NewUserFlow(repo, &fakeEmailService{})

	require.NoError(t, flow.DeactivateUser(context.Background(), 1))
	assert.Equal(t, []uint{uint(1)}, repo.deactivated)

	err := flow.DeactivateUser(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
