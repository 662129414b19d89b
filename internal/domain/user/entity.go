package user

import "time"

// User represents a user account. A signup stores only the identifier
// the user supplied, so exactly one of Email/Username may be empty.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	Password  string    `json:"-"` // Never expose password hash in JSON
	CreatedAt time.Time `json:"createdAt"`
}

// UserResponse is the safe user representation for API responses
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse converts a User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
