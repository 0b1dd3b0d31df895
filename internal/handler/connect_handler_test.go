package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"buckstream/internal/domain"
	"buckstream/internal/handler"
	"buckstream/internal/models"
	"buckstream/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func connectRouter(users *fakeUserStore, provider *fakeProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewConnectHandler(users, provider, testConfig(), zap.NewNop())
	r := gin.New()
	r.POST("/stripe/connect/create-account-link", h.CreateAccountLink)
	r.POST("/stripe/connect/disconnect", h.Disconnect)
	r.GET("/stripe/connect/status/:user_id", h.GetStatus)
	return r
}

func TestCreateAccountLink_LazyAccountCreation(t *testing.T) {
	creator := &models.User{ID: 7, Email: "creator@example.com", Name: "Ava", Role: domain.RoleCreator}
	users := newFakeUserStore(creator)
	provider := newFakeProvider()
	r := connectRouter(users, provider)

	w := postJSON(t, r, "/stripe/connect/create-account-link", gin.H{"user_id": 7})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, provider.createCalls)
	require.NotNil(t, users.users[7].StripeAccountID, "account id recorded in ledger")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Fresh express accounts carry outstanding requirements, so the link
	// targets onboarding and the return route flags the incomplete state.
	assert.Equal(t, payment.LinkTypeOnboarding, resp["link_type"])
	assert.Equal(t, true, resp["has_outstanding_requirements"])
	require.Len(t, provider.linkCalls, 1)
	assert.Contains(t, provider.linkCalls[0].ReturnURL, "stripe_incomplete=true")
	assert.Contains(t, provider.linkCalls[0].RefreshURL, "stripe_refresh=true")

	// Second call reuses the stored account instead of creating another.
	w = postJSON(t, r, "/stripe/connect/create-account-link", gin.H{"user_id": 7})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, provider.createCalls)
}

func TestCreateAccountLink_FullyActiveGetsUpdateLink(t *testing.T) {
	creator := &models.User{ID: 7, Role: domain.RoleCreator, StripeAccountID: strPtr("acct_active")}
	users := newFakeUserStore(creator)
	provider := newFakeProvider()
	provider.accounts["acct_active"] = &payment.Account{
		ID:               "acct_active",
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
	}
	r := connectRouter(users, provider)

	w := postJSON(t, r, "/stripe/connect/create-account-link", gin.H{"user_id": 7})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, payment.LinkTypeUpdate, resp["link_type"])
	assert.Equal(t, false, resp["has_outstanding_requirements"])
	require.Len(t, provider.linkCalls, 1)
	assert.Contains(t, provider.linkCalls[0].ReturnURL, "stripe_connected=true")
	assert.Equal(t, 0, provider.createCalls)
}

func TestCreateAccountLink_Rejections(t *testing.T) {
	member := &models.User{ID: 3, Role: domain.RoleMember}
	users := newFakeUserStore(member)
	provider := newFakeProvider()
	r := connectRouter(users, provider)

	w := postJSON(t, r, "/stripe/connect/create-account-link", gin.H{"user_id": 3})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(t, r, "/stripe/connect/create-account-link", gin.H{"user_id": 99})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, r, "/stripe/connect/create-account-link", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, provider.createCalls)
}

func TestDisconnect_ThenStatusNotConnected(t *testing.T) {
	creator := &models.User{
		ID:                        7,
		Role:                      domain.RoleCreator,
		StripeAccountID:           strPtr("acct_active"),
		StripeConnected:           true,
		StripeOnboardingCompleted: true,
	}
	users := newFakeUserStore(creator)
	provider := newFakeProvider()
	provider.accounts["acct_active"] = &payment.Account{ID: "acct_active", ChargesEnabled: true, PayoutsEnabled: true, DetailsSubmitted: true}
	r := connectRouter(users, provider)

	w := postJSON(t, r, "/stripe/connect/disconnect", gin.H{"user_id": 7})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"acct_active"}, provider.deleted)
	assert.Nil(t, users.users[7].StripeAccountID)
	assert.False(t, users.users[7].StripeConnected)
	assert.False(t, users.users[7].StripeOnboardingCompleted)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/stripe/connect/status/7", nil))
	require.Equal(t, http.StatusOK, w2.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["connected"])
}

func TestDisconnect_NoAccount(t *testing.T) {
	creator := &models.User{ID: 7, Role: domain.RoleCreator}
	r := connectRouter(newFakeUserStore(creator), newFakeProvider())

	w := postJSON(t, r, "/stripe/connect/disconnect", gin.H{"user_id": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no stripe account connected")
}

func TestGetStatus_ReportsAndRefreshesFlags(t *testing.T) {
	creator := &models.User{ID: 7, Role: domain.RoleCreator, StripeAccountID: strPtr("acct_1")}
	users := newFakeUserStore(creator)
	provider := newFakeProvider()
	provider.accounts["acct_1"] = &payment.Account{
		ID:               "acct_1",
		ChargesEnabled:   true,
		PayoutsEnabled:   false,
		DetailsSubmitted: true,
		EventuallyDue:    []string{"individual.verification.document"},
	}
	r := connectRouter(users, provider)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stripe/connect/status/7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Connected           bool   `json:"connected"`
		AccountID           string `json:"account_id"`
		ChargesEnabled      bool   `json:"charges_enabled"`
		PayoutsEnabled      bool   `json:"payouts_enabled"`
		OnboardingCompleted bool   `json:"onboarding_completed"`
		Requirements        struct {
			CurrentlyDue  []string `json:"currently_due"`
			EventuallyDue []string `json:"eventually_due"`
			PastDue       []string `json:"past_due"`
		} `json:"requirements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Connected)
	assert.Equal(t, "acct_1", resp.AccountID)
	assert.True(t, resp.ChargesEnabled)
	assert.False(t, resp.PayoutsEnabled)
	assert.False(t, resp.OnboardingCompleted, "outstanding requirements block completion")
	assert.Equal(t, []string{"individual.verification.document"}, resp.Requirements.EventuallyDue)

	// The read refreshes the derived ledger flags.
	assert.True(t, users.users[7].StripeConnected)
	assert.False(t, users.users[7].StripeOnboardingCompleted)
}

func TestGetStatus_PayoutsDisabledBlocksOnboardingCompletion(t *testing.T) {
	creator := &models.User{ID: 7, Role: domain.RoleCreator, StripeAccountID: strPtr("acct_1")}
	users := newFakeUserStore(creator)
	provider := newFakeProvider()
	// Nothing left to provide, but payouts are still off: the account can
	// charge yet cannot receive funds, so onboarding is not complete.
	provider.accounts["acct_1"] = &payment.Account{
		ID:               "acct_1",
		ChargesEnabled:   true,
		PayoutsEnabled:   false,
		DetailsSubmitted: true,
	}
	r := connectRouter(users, provider)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stripe/connect/status/7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["connected"])
	assert.Equal(t, false, resp["onboarding_completed"])
	assert.False(t, users.users[7].StripeOnboardingCompleted)
}

func TestGetStatus_InvalidID(t *testing.T) {
	r := connectRouter(newFakeUserStore(), newFakeProvider())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stripe/connect/status/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
