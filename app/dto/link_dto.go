package dto

// CreateLinkRequest defines input for creating a link
type CreateLinkRequest struct {
	Title        string  `json:"title" validate:"required,max=100"`
	URL          string  `json:"url" validate:"required,url,max=2000"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	DisplayOrder int     `json:"display_order"`
}

// UpdateLinkRequest defines input for updating a link; nil fields are untouched
type UpdateLinkRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,max=100"`
	URL          *string `json:"url,omitempty" validate:"omitempty,url,max=2000"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// LinkDTO is the public representation of a link
type LinkDTO struct {
	ID           uint    `json:"id"`
	UserID       uint    `json:"user_id"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Description  *string `json:"description,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	IsActive     bool    `json:"is_active"`
	DisplayOrder int     `json:"display_order"`
	ClickCount   int64   `json:"click_count"`
	CreatedAt    string  `json:"created_at"`
}
