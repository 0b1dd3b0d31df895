package models

import (
	"time"

	"gorm.io/gorm"
)

// TipTransaction is the local record of a tip checkout session. It is
// created in pending state when the session is created and transitions to
// completed or failed exactly once, driven by Stripe webhooks. SessionID is
// the correlation key until Stripe assigns a payment intent.
type TipTransaction struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	SessionID             string  `gorm:"size:255;uniqueIndex;not null" json:"session_id"`
	CreatorID             uint    `gorm:"not null;index" json:"creator_id"`
	MemberID              uint    `gorm:"not null;index" json:"member_id"`
	LivestreamID          *string `gorm:"size:255" json:"livestream_id"`
	BuckAmount            float64 `gorm:"not null" json:"buck_amount"`
	AmountCents           int64   `gorm:"not null" json:"amount_cents"`
	PlatformFeeCents      int64   `gorm:"not null" json:"platform_fee_cents"`
	CreatorReceivesCents  int64   `gorm:"not null" json:"creator_receives_cents"`
	Status                string  `gorm:"size:20;not null;index" json:"status"` // pending | completed | failed
	StripePaymentIntentID *string `gorm:"size:255;index" json:"stripe_payment_intent_id"`
	CompletedAt           *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
	Member  User `gorm:"foreignKey:MemberID" json:"-"`
}

func (TipTransaction) TableName() string {
	return "tip_transactions"
}
