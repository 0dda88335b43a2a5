package model

import (
	"github.com/google/uuid"
)

// Role: "admin" | "cashier"
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is an operator of the register. Sales copy ID and Name at commit time,
// so renaming or deleting a user never rewrites history.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
}

// Actor is the identity stamped on shifts and sales.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Session is the persisted pointer to the logged-in user and the active shift.
type Session struct {
	CurrentUserID  *uuid.UUID `json:"current_user_id"`
	CurrentShiftID *uuid.UUID `json:"current_shift_id"`
}
