package handler

import (
	"time"

	"buckstream/internal/models"

	"github.com/stripe/stripe-go/v82"
)

// Persistence and verification surfaces the handlers depend on. The
// concrete implementations live in internal/repository and pkg/payment;
// tests substitute fakes.

type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByStripeAccountID(accountID string) (*models.User, error)
	RecordStripeAccount(userID uint, accountID string) error
	UpdateStripeEligibility(userID uint, connected, onboardingCompleted bool) error
	UpdateStripeEligibilityByAccount(accountID string, connected, onboardingCompleted bool) error
	ClearStripeAccount(userID uint) error
}

type TipStore interface {
	Create(t *models.TipTransaction) error
	GetBySessionID(sessionID string) (*models.TipTransaction, error)
	MarkCompletedBySession(sessionID, paymentIntentID string, completedAt time.Time) (int64, error)
	MarkCompletedByPaymentIntent(paymentIntentID string, completedAt time.Time) (int64, error)
	MarkFailedByPaymentIntent(paymentIntentID string) (int64, error)
	CreatorRevenueCents(creatorID uint) (int64, error)
}

type NotificationStore interface {
	ListByUserID(userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(id, userID uint) error
}

type Notifier interface {
	NotifyTipReceived(creatorID uint, creatorReceivesCents int64, tipID uint) error
	NotifyAccountActive(creatorID uint) error
}

// WebhookVerifier authenticates a raw webhook delivery and parses it.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
}
