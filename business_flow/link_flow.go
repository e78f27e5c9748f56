package businessflow

import (
	"context"
	"strings"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/repository"
	"github.com/biotap/biotap/utils"
)

// LinkFlow manages the lifecycle of a user's links. Every mutating
// operation verifies ownership before touching the row.
type LinkFlow interface {
	CreateLink(ctx context.Context, userID uint, req *dto.CreateLinkRequest) (*dto.LinkDTO, error)
	UpdateLink(ctx context.Context, userID, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error)
	DeleteLink(ctx context.Context, userID, linkID uint) error
	ListLinks(ctx context.Context, userID uint) ([]dto.LinkDTO, error)
	PublicLinksByUsername(ctx context.Context, username string) ([]dto.LinkDTO, error)
}

type LinkFlowImpl struct {
	linkRepo repository.LinkRepository
	userRepo repository.UserRepository
}

func NewLinkFlow(linkRepo repository.LinkRepository, userRepo repository.UserRepository) LinkFlow {
	return &LinkFlowImpl{linkRepo: linkRepo, userRepo: userRepo}
}

func (f *LinkFlowImpl) CreateLink(ctx context.Context, userID uint, req *dto.CreateLinkRequest) (*dto.LinkDTO, error) {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, ErrUserInactive
	}

	if !isHTTPURL(req.URL) {
		return nil, ErrInvalidLinkURL
	}

	link := &models.Link{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		URL:          req.URL,
		Description:  req.Description,
		Icon:         req.Icon,
		IsActive:     utils.ToPtr(true),
		DisplayOrder: req.DisplayOrder,
		CreatedAt:    utils.UTCNow(),
	}
	if err := f.linkRepo.Save(ctx, link); err != nil {
		return nil, NewBusinessError("LINK_CREATE_FAILED", "Failed to create link", err)
	}

	out := ToLinkDTO(*link)
	return &out, nil
}

func (f *LinkFlowImpl) UpdateLink(ctx context.Context, userID, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error) {
	link, err := f.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		if !isHTTPURL(*req.URL) {
			return nil, ErrInvalidLinkURL
		}
		link.URL = *req.URL
	}
	if req.Title != nil {
		link.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		link.Description = req.Description
	}
	if req.Icon != nil {
		link.Icon = req.Icon
	}
	if req.IsActive != nil {
		link.IsActive = req.IsActive
	}
	if req.DisplayOrder != nil {
		link.DisplayOrder = *req.DisplayOrder
	}
	link.UpdatedAt = utils.UTCNowPtr()

	if err := f.linkRepo.Update(ctx, link); err != nil {
		return nil, NewBusinessError("LINK_UPDATE_FAILED", "Failed to update link", err)
	}

	out := ToLinkDTO(*link)
	return &out, nil
}

func (f *LinkFlowImpl) DeleteLink(ctx context.Context, userID, linkID uint) error {
	link, err := f.ownedLink(ctx, userID, linkID)
	if err != nil {
		return err
	}
	if err := f.linkRepo.Delete(ctx, link.ID); err != nil {
		return NewBusinessError("LINK_DELETE_FAILED", "Failed to delete link", err)
	}
	return nil
}

func (f *LinkFlowImpl) ListLinks(ctx context.Context, userID uint) ([]dto.LinkDTO, error) {
	links, err := f.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LINK_LIST_FAILED", "Failed to list links", err)
	}
	return toLinkDTOs(links), nil
}

// PublicLinksByUsername returns the active links shown on a user's public
// page. Inactive or unknown users read as not found.
func (f *LinkFlowImpl) PublicLinksByUsername(ctx context.Context, username string) ([]dto.LinkDTO, error) {
	user, err := f.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil || !utils.IsTrue(user.IsActive) {
		return nil, ErrUserNotFound
	}

	links, err := f.linkRepo.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_LIST_FAILED", "Failed to list links", err)
	}
	return toLinkDTOs(links), nil
}

func (f *LinkFlowImpl) ownedLink(ctx context.Context, userID, linkID uint) (*models.Link, error) {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.UserID != userID {
		return nil, ErrLinkAccessDenied
	}
	return link, nil
}

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func toLinkDTOs(links []*models.Link) []dto.LinkDTO {
	out := make([]dto.LinkDTO, len(links))
	for i, link := range links {
		out[i] = ToLinkDTO(*link)
	}
	return out
}
