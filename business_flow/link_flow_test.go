package businessflow

import (
	"context"
	"strings"
	"testing"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users       []*models.User
	deactivated []uint
}

func (r *fakeUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	return r.users, nil
}

func (r *fakeUserRepo) Save(ctx context.Context, u *models.User) error {
	u.ID = uint(len(r.users) + 1)
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) SaveBatch(ctx context.Context, users []*models.User) error {
	r.users = append(r.users, users...)
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	return len(r.users) > 0, nil
}

func (r *fakeUserRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if utils.IsTrue(u.IsActive) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Deactivate(ctx context.Context, userID uint) error {
	r.deactivated = append(r.deactivated, userID)
	for _, u := range r.users {
		if u.ID == userID {
			u.IsActive = utils.ToPtr(false)
		}
	}
	return nil
}

func activeUser(id uint, username string) *models.User {
	return &models.User{ID: id, Username: username, Email: username + "@example.com", IsActive: utils.ToPtr(true)}
}

func TestCreateLink(t *testing.T) {
	users := &fakeUserRepo{users: []*models.User{activeUser(9, "maria")}}
	links := &fakeLinkRepo{}
	flow := NewLinkFlow(links, users)

	link, err := flow.CreateLink(context.Background(), 9, &dto.CreateLinkRequest{
		Title: "  My Blog  ",
		URL:   "https://blog.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "My Blog", link.Title)
	assert.True(t, link.IsActive)
	assert.Equal(t, uint(9), link.UserID)
	require.Len(t, links.links, 1)
}

func TestCreateLinkRejectsNonHTTPURL(t *testing.T) {
	users := &fakeUserRepo{users: []*models.User{activeUser(9, "maria")}}
	flow := NewLinkFlow(&fakeLinkRepo{}, users)

	_, err := flow.CreateLink(context.Background(), 9, &dto.CreateLinkRequest{
		Title: "FTP",
		URL:   "ftp://example.com/file",
	})
	assert.ErrorIs(t, err, ErrInvalidLinkURL)
}

func TestCreateLinkUnknownOrInactiveUser(t *testing.T) {
	inactive := activeUser(3, "gone")
	inactive.IsActive = utils.ToPtr(false)
	users := &fakeUserRepo{users: []*models.User{inactive}}
	flow := NewLinkFlow(&fakeLinkRepo{}, users)

	_, err := flow.CreateLink(context.Background(), 99, &dto.CreateLinkRequest{Title: "x", URL: "https://x.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = flow.CreateLink(context.Background(), 3, &dto.CreateLinkRequest{Title: "x", URL: "https://x.com"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUpdateLinkOwnership(t *testing.T) {
	users := &fakeUserRepo{users: []*models.User{activeUser(9, "maria")}}
	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}
	flow := NewLinkFlow(links, users)

	newTitle := "Renamed"
	_, err := flow.UpdateLink(context.Background(), 8, 1, &dto.UpdateLinkRequest{Title: &newTitle})
	assert.ErrorIs(t, err, ErrLinkAccessDenied)

	link, err := flow.UpdateLink(context.Background(), 9, 1, &dto.UpdateLinkRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", link.Title)
}

func TestDeleteLinkNotFound(t *testing.T) {
	flow := NewLinkFlow(&fakeLinkRepo{}, &fakeUserRepo{})

	err := flow.DeleteLink(context.Background(), 9, 404)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestPublicLinksByUsername(t *testing.T) {
	users := &fakeUserRepo{users: []*models.User{activeUser(9, "maria")}}
	inactive := activeLink(2, 9, "Hidden")
	inactive.IsActive = utils.ToPtr(false)
	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog"), inactive}}
	flow := NewLinkFlow(links, users)

	out, err := flow.PublicLinksByUsername(context.Background(), "maria")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Blog", out[0].Title)

	_, err = flow.PublicLinksByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPublicLinksHiddenForInactiveUser(t *testing.T) {
	u := activeUser(9, "maria")
	u.IsActive = utils.ToPtr(false)
	users := &fakeUserRepo{users: []*models.User{u}}
	flow := NewLinkFlow(&fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}, users)

	_, err := flow.PublicLinksByUsername(context.Background(), "maria")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateLinkTrimsTitle(t *testing.T) {
	users := &fakeUserRepo{users: []*models.User{activeUser(9, "maria")}}
	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}
	flow := NewLinkFlow(links, users)

	padded := "  Spaced  "
	link, err := flow.UpdateLink(context.Background(), 9, 1, &dto.UpdateLinkRequest{Title: &padded})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(padded), link.Title)
}
