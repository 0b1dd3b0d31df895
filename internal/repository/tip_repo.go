package repository

import (
	"time"

	"buckstream/internal/domain"
	"buckstream/internal/models"

	"gorm.io/gorm"
)

type TipRepository struct {
	db *gorm.DB
}

func NewTipRepository(db *gorm.DB) *TipRepository {
	return &TipRepository{db: db}
}

func (r *TipRepository) Create(t *models.TipTransaction) error {
	return r.db.Create(t).Error
}

func (r *TipRepository) GetBySessionID(sessionID string) (*models.TipTransaction, error) {
	var t models.TipTransaction
	err := r.db.Where("session_id = ?", sessionID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkCompletedBySession transitions a pending transaction to completed
// and stamps CompletedAt, capturing the payment-intent id if Stripe sent
// one. The WHERE status = 'pending' clause is the idempotency guard: a
// duplicate or late event matches zero rows and the write is a no-op.
func (r *TipRepository) MarkCompletedBySession(sessionID, paymentIntentID string, completedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":       domain.TipStatusCompleted,
		"completed_at": completedAt,
	}
	if paymentIntentID != "" {
		updates["stripe_payment_intent_id"] = paymentIntentID
	}
	res := r.db.Model(&models.TipTransaction{}).
		Where("session_id = ? AND status = ?", sessionID, domain.TipStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// MarkCompletedByPaymentIntent completes every pending transaction carrying
// the payment-intent id. Completed/failed rows are left untouched.
func (r *TipRepository) MarkCompletedByPaymentIntent(paymentIntentID string, completedAt time.Time) (int64, error) {
	res := r.db.Model(&models.TipTransaction{}).
		Where("stripe_payment_intent_id = ? AND status = ?", paymentIntentID, domain.TipStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.TipStatusCompleted,
			"completed_at": completedAt,
		})
	return res.RowsAffected, res.Error
}

// MarkFailedByPaymentIntent fails every pending transaction carrying the
// payment-intent id. A transaction already completed stays completed, so a
// late failure event cannot revert it.
func (r *TipRepository) MarkFailedByPaymentIntent(paymentIntentID string) (int64, error) {
	res := r.db.Model(&models.TipTransaction{}).
		Where("stripe_payment_intent_id = ? AND status = ?", paymentIntentID, domain.TipStatusPending).
		Update("status", domain.TipStatusFailed)
	return res.RowsAffected, res.Error
}

// CreatorRevenueCents sums what a creator has actually earned from
// completed tips (their share, after the platform fee).
func (r *TipRepository) CreatorRevenueCents(creatorID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.TipTransaction{}).
		Where("creator_id = ? AND status = ?", creatorID, domain.TipStatusCompleted).
		Select("COALESCE(SUM(creator_receives_cents), 0)").
		Scan(&total).Error
	return total, err
}
