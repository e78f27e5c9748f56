// Package businessflow contains the core business logic and use cases for the link-in-bio backend
package businessflow

import (
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
)

// ToUserDTO converts a user model for API responses
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  utils.IsTrue(user.IsActive),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// ToLinkDTO converts a link model for API responses
func ToLinkDTO(link models.Link) dto.LinkDTO {
	return dto.LinkDTO{
		ID:           link.ID,
		UserID:       link.UserID,
		Title:        link.Title,
		URL:          link.URL,
		Description:  link.Description,
		Icon:         link.Icon,
		IsActive:     utils.IsTrue(link.IsActive),
		DisplayOrder: link.DisplayOrder,
		ClickCount:   link.ClickCount,
		CreatedAt:    link.CreatedAt.Format(time.RFC3339),
	}
}

// ToClickEventDTO converts a click event model for API responses
func ToClickEventDTO(event models.ClickEvent) dto.ClickEventDTO {
	return dto.ClickEventDTO{
		ID:         event.ID,
		LinkID:     event.LinkID,
		Country:    event.Country,
		DeviceType: event.DeviceType,
		Browser:    event.Browser,
		ClickedAt:  event.ClickedAt.Format(time.RFC3339),
	}
}
