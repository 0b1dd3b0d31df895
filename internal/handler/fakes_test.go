package handler_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buckstream/internal/domain"
	"buckstream/internal/models"
	"buckstream/pkg/payment"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// ---- in-memory stores mirroring the repository semantics ----

type fakeUserStore struct {
	users     map[uint]*models.User
	recordErr error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByStripeAccountID(accountID string) (*models.User, error) {
	for _, u := range s.users {
		if u.StripeAccountID != nil && *u.StripeAccountID == accountID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) RecordStripeAccount(userID uint, accountID string) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.StripeAccountID != nil {
		return errors.New("stripe account already recorded")
	}
	u.StripeAccountID = &accountID
	return nil
}

func (s *fakeUserStore) UpdateStripeEligibility(userID uint, connected, onboardingCompleted bool) error {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.StripeConnected = connected
	u.StripeOnboardingCompleted = onboardingCompleted
	return nil
}

func (s *fakeUserStore) UpdateStripeEligibilityByAccount(accountID string, connected, onboardingCompleted bool) error {
	for _, u := range s.users {
		if u.StripeAccountID != nil && *u.StripeAccountID == accountID {
			u.StripeConnected = connected
			u.StripeOnboardingCompleted = onboardingCompleted
		}
	}
	return nil
}

func (s *fakeUserStore) ClearStripeAccount(userID uint) error {
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.StripeAccountID = nil
	u.StripeConnected = false
	u.StripeOnboardingCompleted = false
	return nil
}

type fakeTipStore struct {
	rows      map[string]*models.TipTransaction
	nextID    uint
	createErr error
}

func newFakeTipStore() *fakeTipStore {
	return &fakeTipStore{rows: make(map[string]*models.TipTransaction)}
}

func (s *fakeTipStore) Create(t *models.TipTransaction) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	t.ID = s.nextID
	s.rows[t.SessionID] = t
	return nil
}

func (s *fakeTipStore) GetBySessionID(sessionID string) (*models.TipTransaction, error) {
	t, ok := s.rows[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTipStore) MarkCompletedBySession(sessionID, paymentIntentID string, completedAt time.Time) (int64, error) {
	t, ok := s.rows[sessionID]
	if !ok || t.Status != domain.TipStatusPending {
		return 0, nil
	}
	t.Status = domain.TipStatusCompleted
	t.CompletedAt = &completedAt
	if paymentIntentID != "" {
		t.StripePaymentIntentID = &paymentIntentID
	}
	return 1, nil
}

func (s *fakeTipStore) MarkCompletedByPaymentIntent(paymentIntentID string, completedAt time.Time) (int64, error) {
	var n int64
	for _, t := range s.rows {
		if t.StripePaymentIntentID != nil && *t.StripePaymentIntentID == paymentIntentID && t.Status == domain.TipStatusPending {
			t.Status = domain.TipStatusCompleted
			t.CompletedAt = &completedAt
			n++
		}
	}
	return n, nil
}

func (s *fakeTipStore) MarkFailedByPaymentIntent(paymentIntentID string) (int64, error) {
	var n int64
	for _, t := range s.rows {
		if t.StripePaymentIntentID != nil && *t.StripePaymentIntentID == paymentIntentID && t.Status == domain.TipStatusPending {
			t.Status = domain.TipStatusFailed
			n++
		}
	}
	return n, nil
}

func (s *fakeTipStore) CreatorRevenueCents(creatorID uint) (int64, error) {
	var total int64
	for _, t := range s.rows {
		if t.CreatorID == creatorID && t.Status == domain.TipStatusCompleted {
			total += t.CreatorReceivesCents
		}
	}
	return total, nil
}

type fakeNotificationStore struct {
	byUser    map[uint][]models.Notification
	readCalls [][2]uint // notification id, user id
	listErr   error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{byUser: make(map[uint][]models.Notification)}
}

func (s *fakeNotificationStore) ListByUserID(userID uint, limit, offset int) ([]models.Notification, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	list := s.byUser[userID]
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *fakeNotificationStore) MarkRead(id, userID uint) error {
	s.readCalls = append(s.readCalls, [2]uint{id, userID})
	return nil
}

// ---- provider fake recording every call ----

type fakeProvider struct {
	accounts      map[string]*payment.Account
	createCalls   int
	checkoutCalls []payment.CheckoutRequest
	linkCalls     []payment.AccountLinkRequest
	deleted       []string
	checkoutErr   error
	createErr     error
	getErr        error
	nextSession   payment.CheckoutSession
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts:    make(map[string]*payment.Account),
		nextSession: payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"},
	}
}

func (p *fakeProvider) CreateAccount(ctx context.Context, req payment.CreateAccountRequest) (*payment.Account, error) {
	p.createCalls++
	if p.createErr != nil {
		return nil, p.createErr
	}
	a := &payment.Account{
		ID:           fmt.Sprintf("acct_%d", p.createCalls),
		Email:        req.Email,
		CurrentlyDue: []string{"external_account"},
	}
	p.accounts[a.ID] = a
	return a, nil
}

func (p *fakeProvider) GetAccount(ctx context.Context, accountID string) (*payment.Account, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	a, ok := p.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("no such account: %s", accountID)
	}
	return a, nil
}

func (p *fakeProvider) DeleteAccount(ctx context.Context, accountID string) error {
	p.deleted = append(p.deleted, accountID)
	delete(p.accounts, accountID)
	return nil
}

func (p *fakeProvider) CreateAccountLink(ctx context.Context, req payment.AccountLinkRequest) (string, error) {
	p.linkCalls = append(p.linkCalls, req)
	return "https://connect.stripe.com/setup/" + req.AccountID, nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	p.checkoutCalls = append(p.checkoutCalls, req)
	if p.checkoutErr != nil {
		return nil, p.checkoutErr
	}
	sess := p.nextSession
	return &sess, nil
}

// ---- notifier and webhook verifier fakes ----

type fakeNotifier struct {
	tipNotices     []uint
	accountNotices []uint
}

func (n *fakeNotifier) NotifyTipReceived(creatorID uint, creatorReceivesCents int64, tipID uint) error {
	n.tipNotices = append(n.tipNotices, creatorID)
	return nil
}

func (n *fakeNotifier) NotifyAccountActive(creatorID uint) error {
	n.accountNotices = append(n.accountNotices, creatorID)
	return nil
}

type fakeVerifier struct {
	event stripe.Event
	err   error
}

func (v *fakeVerifier) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	if v.err != nil {
		return stripe.Event{}, v.err
	}
	return v.event, nil
}
