package handler

import (
	"errors"
	"net/http"
	"strconv"

	"buckstream/config"
	"buckstream/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConnectHandler manages the Stripe Connect account lifecycle for
// creators: lazy account creation, onboarding/update links, status reads
// and disconnect.
type ConnectHandler struct {
	users    UserStore
	provider payment.Provider
	cfg      *config.Config
	logger   *zap.Logger
}

func NewConnectHandler(users UserStore, provider payment.Provider, cfg *config.Config, logger *zap.Logger) *ConnectHandler {
	return &ConnectHandler{users: users, provider: provider, cfg: cfg, logger: logger}
}

// CreateAccountLink ensures the creator has a connected account and
// returns a single-use hosted link to complete or refresh onboarding.
func (h *ConnectHandler) CreateAccountLink(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user, err := h.users.GetByID(req.UserID)
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

	// Create the connected account lazily, once. The id is only persisted
	// after a successful provider call, so a failed creation leaves no
	// partial state behind.
	var accountID string
	if user.StripeAccountID != nil && *user.StripeAccountID != "" {
		accountID = *user.StripeAccountID
	} else {
		acct, err := h.provider.CreateAccount(c.Request.Context(), payment.CreateAccountRequest{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		})
		if err != nil {
			h.logger.Error("connect account creation failed", zap.Uint("user_id", user.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		accountID = acct.ID
		if err := h.users.RecordStripeAccount(user.ID, accountID); err != nil {
			h.logger.Warn("failed to persist connect account id",
				zap.Uint("user_id", user.ID),
				zap.String("account_id", accountID),
				zap.Error(err),
			)
		}
	}

	// Always a fresh status read; link type and return route depend on the
	// provider's current view of the account.
	acct, err := h.provider.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("connect account status read failed", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	linkType := payment.LinkTypeOnboarding
	if acct.IsFullyActive() {
		linkType = payment.LinkTypeUpdate
	}
	returnURL := h.cfg.Stripe.FrontendURL + "/creator/profile?stripe_connected=true"
	if acct.HasOutstandingRequirements() {
		returnURL = h.cfg.Stripe.FrontendURL + "/creator/profile?stripe_incomplete=true"
	}

	url, err := h.provider.CreateAccountLink(c.Request.Context(), payment.AccountLinkRequest{
		AccountID:  accountID,
		RefreshURL: h.cfg.Stripe.FrontendURL + "/creator/profile?stripe_refresh=true",
		ReturnURL:  returnURL,
		Type:       linkType,
	})
	if err != nil {
		h.logger.Error("account link creation failed", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":                          url,
		"account_id":                   accountID,
		"link_type":                    linkType,
		"has_outstanding_requirements": acct.HasOutstandingRequirements(),
	})
}

// Disconnect deletes the creator's connected account and clears the ledger.
func (h *ConnectHandler) Disconnect(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user, err := h.users.GetByID(req.UserID)
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
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no stripe account connected"})
		return
	}

	if err := h.provider.DeleteAccount(c.Request.Context(), *user.StripeAccountID); err != nil {
		h.logger.Error("connect account deletion failed", zap.String("account_id", *user.StripeAccountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.ClearStripeAccount(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stripe account disconnected"})
}

// GetStatus reports the creator's live eligibility flags and outstanding
// requirement lists, and refreshes the derived ledger flags on the way.
func (h *ConnectHandler) GetStatus(c *gin.Context) {
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
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}

	acct, err := h.provider.GetAccount(c.Request.Context(), *user.StripeAccountID)
	if err != nil {
		h.logger.Error("connect account status read failed", zap.String("account_id", *user.StripeAccountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateStripeEligibility(user.ID, acct.ChargesEnabled, acct.IsOnboardingCompleted()); err != nil {
		h.logger.Warn("failed to refresh eligibility flags", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":            acct.ChargesEnabled,
		"account_id":           acct.ID,
		"charges_enabled":      acct.ChargesEnabled,
		"payouts_enabled":      acct.PayoutsEnabled,
		"onboarding_completed": acct.IsOnboardingCompleted(),
		"requirements": gin.H{
			"currently_due":  acct.CurrentlyDue,
			"eventually_due": acct.EventuallyDue,
			"past_due":       acct.PastDue,
		},
	})
}
