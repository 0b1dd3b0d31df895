package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Merchant category for digital content / media (Stripe MCC list).
const creatorMCC = "5815"

const creatorProductDescription = "Creator tips and livestream content"

// StripeProvider implements Provider against Stripe Connect with Express
// accounts and destination charges.
type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			MCC:                stripe.String(creatorMCC),
			ProductDescription: stripe.String(creatorProductDescription),
		},
	}
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	params.Params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))
	params.AddMetadata("user_email", req.Email)
	params.AddMetadata("user_name", req.Name)

	acct, err := account.New(params)
	if err != nil {
		return nil, fmt.Errorf("create connect account: %w", err)
	}
	return AccountFromStripe(acct), nil
}

func (p *StripeProvider) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	params := &stripe.AccountParams{}
	params.Params.Context = ctx
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve connect account %s: %w", accountID, err)
	}
	return AccountFromStripe(acct), nil
}

func (p *StripeProvider) DeleteAccount(ctx context.Context, accountID string) error {
	params := &stripe.AccountParams{}
	params.Params.Context = ctx
	if _, err := account.Del(accountID, params); err != nil {
		return fmt.Errorf("delete connect account %s: %w", accountID, err)
	}
	return nil
}

func (p *StripeProvider) CreateAccountLink(ctx context.Context, req AccountLinkRequest) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(req.AccountID),
		RefreshURL: stripe.String(req.RefreshURL),
		ReturnURL:  stripe.String(req.ReturnURL),
		Type:       stripe.String(req.Type),
	}
	params.Params.Context = ctx
	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("create account link: %w", err)
	}
	return link.URL, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.ProductDescription),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(req.ApplicationFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.DestinationAccountID),
			},
			Metadata: req.Metadata,
		},
	}
	params.Params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// AccountFromStripe maps a Stripe account (from an API read or a webhook
// snapshot) onto the provider-neutral Account.
func AccountFromStripe(acct *stripe.Account) *Account {
	a := &Account{
		ID:               acct.ID,
		Email:            acct.Email,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if acct.Requirements != nil {
		a.CurrentlyDue = acct.Requirements.CurrentlyDue
		a.EventuallyDue = acct.Requirements.EventuallyDue
		a.PastDue = acct.Requirements.PastDue
	}
	return a
}

// StripeWebhookVerifier checks Stripe-Signature headers against the
// endpoint's signing secret.
type StripeWebhookVerifier struct {
	Secret string
}

// VerifyEvent verifies the payload signature and parses the event.
func (v *StripeWebhookVerifier) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, v.Secret)
}
