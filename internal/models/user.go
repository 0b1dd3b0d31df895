package models

import (
	"time"

	"buckstream/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string     `gorm:"size:255" json:"name"`
	Role         string     `gorm:"size:20;not null;index" json:"role"` // ADMIN | CREATOR | MEMBER
	PasswordHash string     `gorm:"size:255" json:"-"`

	// Stripe Connect ledger fields. StripeAccountID is set once on first
	// onboarding and cleared only by an explicit disconnect. The two flags
	// are derived from provider state and written only by the link issuer,
	// the status check and the webhook reconciler.
	StripeAccountID           *string `gorm:"uniqueIndex;size:255" json:"stripe_account_id"`
	StripeConnected           bool    `gorm:"default:false" json:"stripe_connected"`
	StripeOnboardingCompleted bool    `gorm:"default:false" json:"stripe_onboarding_completed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsCreator() bool { return u.Role == domain.RoleCreator }
func (u *User) IsMember() bool  { return u.Role == domain.RoleMember }

func (User) TableName() string {
	return "users"
}
