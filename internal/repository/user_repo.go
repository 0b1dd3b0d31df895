package repository

import (
	"errors"

	"buckstream/internal/models"

	"gorm.io/gorm"
)

// ErrAccountExists is returned when a creator already has a Stripe account
// id recorded; account ids are created lazily once and never rotated.
var ErrAccountExists = errors.New("stripe account already recorded")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByStripeAccountID(accountID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("stripe_account_id = ?", accountID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RecordStripeAccount persists a newly created connected-account id.
// Refuses to overwrite an existing id.
func (r *UserRepository) RecordStripeAccount(userID uint, accountID string) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND stripe_account_id IS NULL", userID).
		Update("stripe_account_id", accountID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountExists
	}
	return nil
}

// UpdateStripeEligibility upserts the derived connected/onboarding flags
// for a single user. Repeated identical writes are harmless.
func (r *UserRepository) UpdateStripeEligibility(userID uint, connected, onboardingCompleted bool) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"stripe_connected":            connected,
			"stripe_onboarding_completed": onboardingCompleted,
		}).Error
}

// UpdateStripeEligibilityByAccount upserts the derived flags for every user
// holding the given connected-account id. Used by the webhook reconciler,
// which only knows the external id.
func (r *UserRepository) UpdateStripeEligibilityByAccount(accountID string, connected, onboardingCompleted bool) error {
	return r.db.Model(&models.User{}).
		Where("stripe_account_id = ?", accountID).
		Updates(map[string]interface{}{
			"stripe_connected":            connected,
			"stripe_onboarding_completed": onboardingCompleted,
		}).Error
}

// ClearStripeAccount disconnects a creator: account id nulled, both
// eligibility flags reset.
func (r *UserRepository) ClearStripeAccount(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"stripe_account_id":           nil,
			"stripe_connected":            false,
			"stripe_onboarding_completed": false,
		}).Error
}
