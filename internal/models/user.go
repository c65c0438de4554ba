package models

import "time"

// Account roles
const (
	RoleFan     = "fan"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// User is a platform account. Balance only grows through confirmed support.
type User struct {
	ID             string     `json:"id" db:"id" example:"6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"`
	Username       string     `json:"username" db:"username" example:"janedoe"`
	Email          string     `json:"email" db:"email" example:"jane@example.com"`
	Password       string     `json:"-" db:"password"`
	FullName       string     `json:"fullName" db:"full_name" example:"Jane Doe"`
	Avatar         *string    `json:"avatar" db:"avatar"`
	Bio            string     `json:"bio" db:"bio"`
	SupportLink    *string    `json:"supportLink" db:"support_link" example:"support-janedoe"`
	IsVerified     bool       `json:"isVerified" db:"is_verified"`
	Role           string     `json:"role" db:"role" example:"creator"`
	Balance        int64      `json:"balance" db:"balance"`
	TotalDonations int64      `json:"totalDonations" db:"total_donations"`
	IsActive       bool       `json:"isActive" db:"is_active"`
	LastLogin      *time.Time `json:"lastLogin" db:"last_login"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

func (u *User) IsCreator() bool {
	return u.Role == RoleCreator
}

// PublicProfile is what other users may see of an account.
type PublicProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Avatar         *string   `json:"avatar"`
	Bio            string    `json:"bio"`
	SupportLink    *string   `json:"supportLink"`
	IsVerified     bool      `json:"isVerified"`
	Role           string    `json:"role"`
	TotalDonations int64     `json:"totalDonations"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		SupportLink:    u.SupportLink,
		IsVerified:     u.IsVerified,
		Role:           u.Role,
		TotalDonations: u.TotalDonations,
		CreatedAt:      u.CreatedAt,
	}
}
