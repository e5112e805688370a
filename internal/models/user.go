package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the user's name, falling back to email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Seller) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// Identity is a profile as verified by the external identity provider.
// EnsureProfile turns it into persisted user (and seller) records.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role"`
	Specialty string `json:"specialty,omitempty"`
}
