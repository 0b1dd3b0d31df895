package service

import (
	"fmt"

	"buckstream/internal/models"
	"buckstream/internal/repository"

	"go.uber.org/zap"
)

// NotificationService writes in-app alerts. All notifications are
// best-effort: callers ignore the returned error and the failure is logged
// here, so a broken notifications table never blocks a payment flow.
type NotificationService struct {
	repo   *repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

func (s *NotificationService) notify(n *models.Notification) error {
	if err := s.repo.Create(n); err != nil {
		s.logger.Warn("failed to persist notification",
			zap.String("type", n.Type),
			zap.Uint("user_id", n.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// NotifyTipReceived alerts a creator that a tip settled.
func (s *NotificationService) NotifyTipReceived(creatorID uint, creatorReceivesCents int64, tipID uint) error {
	return s.notify(&models.Notification{
		UserID:           creatorID,
		Type:             "TIP_RECEIVED",
		Title:            "You received a tip",
		Body:             fmt.Sprintf("A fan tipped you $%.2f", float64(creatorReceivesCents)/100),
		TipTransactionID: &tipID,
	})
}

// NotifyAccountActive alerts a creator that their payout account finished
// onboarding and can receive funds.
func (s *NotificationService) NotifyAccountActive(creatorID uint) error {
	return s.notify(&models.Notification{
		UserID: creatorID,
		Type:   "PAYOUT_ACCOUNT_ACTIVE",
		Title:  "Payouts enabled",
		Body:   "Your payout account is fully set up. Tips will now be routed to you.",
	})
}
