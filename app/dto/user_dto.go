package dto

// CreateUserRequest defines input for registering a user
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=100"`
}

// UserDTO is the public representation of a user
type UserDTO struct {
	ID        uint    `json:"id"`
	UUID      string  `json:"uuid"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}
