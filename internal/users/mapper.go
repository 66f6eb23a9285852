package users

import (
	"time"

	"github.com/userhub/userhub/internal/shared"
)

// ToUser maps a creation request to a new entity. The password is hashed and
// roles are assigned by the service.
func ToUser(req UserCreationRequest) User {
	return User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Dob:       dateToTime(req.Dob),
	}
}

// ToUserResponse maps the entity to its public view. The password hash is never copied.
func ToUserResponse(u User) UserResponse {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Dob:       timeToDate(u.Dob),
		Roles:     roles,
	}
}

// UpdateUser copies the profile fields present in req onto u. Identity,
// credentials and roles are left to the service.
func UpdateUser(u *User, req UserUpdateRequest) {
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Dob != nil {
		u.Dob = dateToTime(req.Dob)
	}
}

func dateToTime(d *shared.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func timeToDate(t *time.Time) *shared.Date {
	if t == nil {
		return nil
	}
	d := shared.NewDate(*t)
	return &d
}
