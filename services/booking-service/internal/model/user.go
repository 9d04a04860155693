package model

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	Name       *string   `json:"name"`
	Password   string    `json:"-"`
	Role       Role      `json:"role"`
	Enabled    bool      `json:"enabled"`
	Active     bool      `json:"active"`
	ModifiedBy *string   `json:"modifiedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type UserSummary struct {
	ID    string  `json:"id"`
	Phone string  `json:"phone"`
	Name  *string `json:"name"`
	Role  Role    `json:"role"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Phone: u.Phone, Name: u.Name, Role: u.Role}
}

func (u User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
