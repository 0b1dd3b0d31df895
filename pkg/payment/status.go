package payment

// HasOutstandingRequirements reports whether the provider is still waiting
// on information before the account is fully activated.
func (a *Account) HasOutstandingRequirements() bool {
	return len(a.CurrentlyDue) > 0 || len(a.EventuallyDue) > 0 || len(a.PastDue) > 0
}

// IsFullyActive reports whether the account can both take charges and
// receive payouts.
func (a *Account) IsFullyActive() bool {
	return a.ChargesEnabled && a.PayoutsEnabled
}

// IsOnboardingCompleted reports whether the hosted onboarding flow has been
// finished: details submitted, charges and payouts enabled and nothing left
// to provide.
func (a *Account) IsOnboardingCompleted() bool {
	return a.DetailsSubmitted && a.ChargesEnabled && a.PayoutsEnabled && !a.HasOutstandingRequirements()
}
