package payment

import "context"

const (
	LinkTypeOnboarding = "account_onboarding"
	LinkTypeUpdate     = "account_update"
)

// Account is a provider-neutral snapshot of a connected account's
// eligibility state and outstanding requirements.
type Account struct {
	ID               string
	Email            string
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
	CurrentlyDue     []string
	EventuallyDue    []string
	PastDue          []string
}

type CreateAccountRequest struct {
	UserID uint
	Email  string
	Name   string
}

type AccountLinkRequest struct {
	AccountID  string
	RefreshURL string
	ReturnURL  string
	Type       string // LinkTypeOnboarding or LinkTypeUpdate
}

type CheckoutRequest struct {
	AmountCents          int64
	Currency             string
	ProductName          string
	ProductDescription   string
	ApplicationFeeCents  int64
	DestinationAccountID string
	SuccessURL           string
	CancelURL            string
	Metadata             map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Provider is the payment-provider surface the handlers depend on, so
// tests can substitute the stub.
type Provider interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	CreateAccountLink(ctx context.Context, req AccountLinkRequest) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
