package users

import (
	"time"

	"github.com/userhub/userhub/internal/shared"
)

// User is a registered account holder.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Dob          *time.Time
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserCreationRequest is the body of POST /users.
type UserCreationRequest struct {
	Username  string       `json:"username" validate:"min=4,max=64"`
	Password  string       `json:"password" validate:"min=8,max=72,bcryptlen"`
	FirstName string       `json:"firstName" validate:"max=100"`
	LastName  string       `json:"lastName" validate:"max=100"`
	Dob       *shared.Date `json:"dob" validate:"omitempty,dob=18"`
}

// UserUpdateRequest is the body of PUT /users/{id}. Absent fields are left
// untouched; a present roles list replaces the user's roles.
type UserUpdateRequest struct {
	Password  string       `json:"password" validate:"omitempty,min=8,max=72,bcryptlen"`
	FirstName *string      `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string      `json:"lastName" validate:"omitempty,max=100"`
	Dob       *shared.Date `json:"dob" validate:"omitempty,dob=18"`
	Roles     []string     `json:"roles"`
}

// UserResponse is the public view of a User.
type UserResponse struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Dob       *shared.Date `json:"dob,omitempty"`
	Roles     []string     `json:"roles"`
}

var creationRules = shared.RuleTable{
	"username.min": shared.ErrUsernameInvalid,
	"password.min": shared.ErrInvalidPassword,
	"dob.dob":      shared.ErrInvalidDOB,
}

var updateRules = shared.RuleTable{
	"password.min": shared.ErrInvalidPassword,
	"dob.dob":      shared.ErrInvalidDOB,
}
