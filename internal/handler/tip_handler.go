package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"buckstream/config"
	"buckstream/internal/domain"
	"buckstream/internal/models"
	"buckstream/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TipHandler initiates one-time tip payments routed to a creator's
// connected account, with the platform fee taken off the top.
type TipHandler struct {
	users    UserStore
	tips     TipStore
	provider payment.Provider
	cfg      *config.Config
	logger   *zap.Logger
}

func NewTipHandler(users UserStore, tips TipStore, provider payment.Provider, cfg *config.Config, logger *zap.Logger) *TipHandler {
	return &TipHandler{users: users, tips: tips, provider: provider, cfg: cfg, logger: logger}
}

// CreateTipPayment validates the tip, creates a destination-charge
// checkout session and records a pending transaction keyed by session id.
func (h *TipHandler) CreateTipPayment(c *gin.Context) {
	var req struct {
		CreatorID    uint    `json:"creator_id" binding:"required"`
		MemberID     uint    `json:"member_id" binding:"required"`
		Amount       float64 `json:"amount" binding:"required"`
		LivestreamID string  `json:"livestream_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator_id, member_id and numeric amount are required"})
		return
	}
	if req.Amount < domain.MinTipBuck || req.Amount > domain.MaxTipBuck {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be between 1 and 10,000 BUCK"})
		return
	}

	creator, err := h.users.GetByID(req.CreatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load creator"})
		return
	}
	if creator.StripeAccountID == nil || *creator.StripeAccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator has not connected Stripe"})
		return
	}

	amountCents, feeCents, creatorCents := domain.SplitTip(req.Amount)

	description := fmt.Sprintf("%g BUCK Coins", req.Amount)
	if req.LivestreamID != "" {
		description += " during livestream"
	}
	metadata := map[string]string{
		"creator_id":    strconv.FormatUint(uint64(req.CreatorID), 10),
		"member_id":     strconv.FormatUint(uint64(req.MemberID), 10),
		"livestream_id": req.LivestreamID,
		"buck_amount":   strconv.FormatFloat(req.Amount, 'f', -1, 64),
		"type":          "creator_tip",
	}

	sess, err := h.provider.CreateCheckoutSession(c.Request.Context(), payment.CheckoutRequest{
		AmountCents:          amountCents,
		Currency:             "usd",
		ProductName:          "Tip to Creator",
		ProductDescription:   description,
		ApplicationFeeCents:  feeCents,
		DestinationAccountID: *creator.StripeAccountID,
		SuccessURL:           h.cfg.Stripe.FrontendURL + "/tip-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:            h.cfg.Stripe.FrontendURL + "/explore",
		Metadata:             metadata,
	})
	if err != nil {
		h.logger.Error("checkout session creation failed",
			zap.Uint("creator_id", req.CreatorID),
			zap.Uint("member_id", req.MemberID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tx := &models.TipTransaction{
		SessionID:            sess.ID,
		CreatorID:            req.CreatorID,
		MemberID:             req.MemberID,
		BuckAmount:           req.Amount,
		AmountCents:          amountCents,
		PlatformFeeCents:     feeCents,
		CreatorReceivesCents: creatorCents,
		Status:               domain.TipStatusPending,
	}
	if req.LivestreamID != "" {
		tx.LivestreamID = &req.LivestreamID
	}
	// Best effort: the checkout session already exists at the provider, so
	// a failed insert must not block the payment. The webhook reconciler
	// tolerates the missing row and Stripe stays the source of truth.
	if err := h.tips.Create(tx); err != nil {
		h.logger.Warn("failed to persist pending tip transaction",
			zap.String("session_id", sess.ID),
			zap.Uint("creator_id", req.CreatorID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": sess.URL,
		"session_id":   sess.ID,
	})
}

// GetCreatorEarnings sums a creator's share of all completed tips.
func (h *TipHandler) GetCreatorEarnings(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetByID(uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if !user.IsCreator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "user is not a creator"})
		return
	}

	totalCents, err := h.tips.CreatorRevenueCents(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_revenue_cents": totalCents,
		"total_revenue":       float64(totalCents) / 100,
	})
}
