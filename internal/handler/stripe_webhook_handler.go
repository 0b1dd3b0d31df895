package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"buckstream/config"
	"buckstream/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StripeWebhookHandler reconciles asynchronous Stripe events into local
// transaction and account state. Delivery is at-least-once and possibly
// reordered, so every write is gated on the current status; once the
// signature verifies, the response is always 200 so Stripe does not
// hammer the endpoint with redeliveries over per-event failures.
type StripeWebhookHandler struct {
	tips     TipStore
	users    UserStore
	notif    Notifier
	verifier WebhookVerifier
	cfg      *config.Config
	logger   *zap.Logger
}

func NewStripeWebhookHandler(tips TipStore, users UserStore, notif Notifier, verifier WebhookVerifier, cfg *config.Config, logger *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{tips: tips, users: users, notif: notif, verifier: verifier, cfg: cfg, logger: logger}
}

func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing stripe-signature header"})
		return
	}
	if h.cfg.Stripe.WebhookSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
		return
	}

	event, err := h.verifier.VerifyEvent(body, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	h.logger.Info("processing stripe event",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "payment_intent.succeeded":
		h.handlePaymentIntentSucceeded(event)
	case "payment_intent.payment_failed":
		h.handlePaymentIntentFailed(event)
	case "account.updated":
		h.handleAccountUpdated(event)
	default:
		h.logger.Info("ignoring unhandled event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *StripeWebhookHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("failed to unmarshal checkout session", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}
	rows, err := h.tips.MarkCompletedBySession(sess.ID, paymentIntentID, time.Now())
	if err != nil {
		h.logger.Error("failed to complete tip by session", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	if rows == 0 {
		// Missing row or already terminal; either way the event is spent.
		h.logger.Info("checkout completed event was a no-op", zap.String("session_id", sess.ID))
		return
	}

	if tx, err := h.tips.GetBySessionID(sess.ID); err == nil {
		_ = h.notif.NotifyTipReceived(tx.CreatorID, tx.CreatorReceivesCents, tx.ID)
	}
}

func (h *StripeWebhookHandler) handlePaymentIntentSucceeded(event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.logger.Error("failed to unmarshal payment intent", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	rows, err := h.tips.MarkCompletedByPaymentIntent(pi.ID, time.Now())
	if err != nil {
		h.logger.Error("failed to complete tips by payment intent", zap.String("payment_intent_id", pi.ID), zap.Error(err))
		return
	}
	if rows == 0 {
		h.logger.Info("payment intent succeeded event was a no-op", zap.String("payment_intent_id", pi.ID))
	}
}

func (h *StripeWebhookHandler) handlePaymentIntentFailed(event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.logger.Error("failed to unmarshal payment intent", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	// Only pending rows transition; a completed tip stays completed even
	// when this event arrives late or out of order.
	rows, err := h.tips.MarkFailedByPaymentIntent(pi.ID)
	if err != nil {
		h.logger.Error("failed to fail tips by payment intent", zap.String("payment_intent_id", pi.ID), zap.Error(err))
		return
	}
	if rows == 0 {
		h.logger.Info("payment intent failed event was a no-op", zap.String("payment_intent_id", pi.ID))
	}
}

func (h *StripeWebhookHandler) handleAccountUpdated(event stripe.Event) {
	var stripeAcct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &stripeAcct); err != nil {
		h.logger.Error("failed to unmarshal account", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	acct := payment.AccountFromStripe(&stripeAcct)
	onboardingCompleted := acct.IsOnboardingCompleted()

	user, err := h.users.GetByStripeAccountID(acct.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Info("account update for unknown account", zap.String("account_id", acct.ID))
			return
		}
		h.logger.Error("failed to resolve account owner", zap.String("account_id", acct.ID), zap.Error(err))
		return
	}
	justCompleted := onboardingCompleted && !user.StripeOnboardingCompleted

	if err := h.users.UpdateStripeEligibilityByAccount(acct.ID, acct.ChargesEnabled, onboardingCompleted); err != nil {
		h.logger.Error("failed to update account eligibility",
			zap.String("account_id", acct.ID),
			zap.Error(err),
		)
		return
	}
	if justCompleted {
		_ = h.notif.NotifyAccountActive(user.ID)
	}
	h.logger.Info("account eligibility reconciled",
		zap.String("account_id", acct.ID),
		zap.Bool("charges_enabled", acct.ChargesEnabled),
		zap.Bool("onboarding_completed", onboardingCompleted),
	)
}
