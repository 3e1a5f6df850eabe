package domain

import (
	"errors"
	"time"
)

// User represents a system user
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Active       bool
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can issue and retire cards and view all transfers
	RoleAdmin Role = "admin"

	// RoleUser can transfer between own cards and view own resources
	RoleUser Role = "user"
)

var validRoles = map[Role]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanManageCards checks if the role can issue, block and delete cards
func (r Role) CanManageCards() bool {
	return r == RoleAdmin
}

// CanViewAll checks if the role can view resources of any user
func (r Role) CanViewAll() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
