package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is one of the two cooperating entities.
type Organization string

const (
	OrgMagnova Organization = "Magnova" // purchasing entity, raises POs and sales orders
	OrgNova    Organization = "Nova"    // fulfilment entity, procures from vendors
)

// Role gates approval and delete operations.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleApprover Role = "Approver"
	RoleUser     Role = "User"
)

// User represents an operator of either organization
type User struct {
	ID           string       `gorm:"primaryKey;size:36" json:"user_id"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	Password     string       `gorm:"not null" json:"-"`
	Name         string       `json:"name"`
	Organization Organization `gorm:"size:32;index" json:"organization"`
	Role         Role         `gorm:"size:32;default:'User'" json:"role"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Actor identifies who performs an operation, as carried in the access token.
type Actor struct {
	UserID       string
	Name         string
	Email        string
	Organization Organization
	Role         Role
}

// IsAdmin reports whether the actor may delete records.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanApprove reports whether the actor may approve or reject purchase orders.
func (a Actor) CanApprove() bool {
	return a.Role == RoleAdmin || a.Role == RoleApprover
}

// ActorOf converts a stored user into an Actor.
func ActorOf(u *User) Actor {
	return Actor{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Organization: u.Organization,
		Role:         u.Role,
	}
}
