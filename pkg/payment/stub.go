package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StubProvider is an in-memory provider for development and tests. New
// accounts start with nothing enabled and the usual Express requirement
// list outstanding; tests mutate the stored snapshots directly.
type StubProvider struct {
	mu       sync.Mutex
	Accounts map[string]*Account
}

func NewStubProvider() *StubProvider {
	return &StubProvider{Accounts: make(map[string]*Account)}
}

func (s *StubProvider) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &Account{
		ID:           fmt.Sprintf("acct_stub_%s", uuid.New().String()[:8]),
		Email:        req.Email,
		CurrentlyDue: []string{"external_account", "tos_acceptance.date"},
	}
	s.Accounts[a.ID] = a
	return cloneAccount(a), nil
}

func (s *StubProvider) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("no such account: %s", accountID)
	}
	return cloneAccount(a), nil
}

func (s *StubProvider) DeleteAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Accounts[accountID]; !ok {
		return fmt.Errorf("no such account: %s", accountID)
	}
	delete(s.Accounts, accountID)
	return nil
}

func (s *StubProvider) CreateAccountLink(ctx context.Context, req AccountLinkRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Accounts[req.AccountID]; !ok {
		return "", fmt.Errorf("no such account: %s", req.AccountID)
	}
	return fmt.Sprintf("https://connect.stub.local/%s/%s", req.Type, req.AccountID), nil
}

func (s *StubProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := fmt.Sprintf("cs_stub_%s", uuid.New().String()[:8])
	return &CheckoutSession{
		ID:  id,
		URL: "https://checkout.stub.local/pay/" + id,
	}, nil
}

func cloneAccount(a *Account) *Account {
	c := *a
	c.CurrentlyDue = append([]string(nil), a.CurrentlyDue...)
	c.EventuallyDue = append([]string(nil), a.EventuallyDue...)
	c.PastDue = append([]string(nil), a.PastDue...)
	return &c
}
