package domain

import "math"

const (
	RoleAdmin   = "ADMIN"
	RoleCreator = "CREATOR"
	RoleMember  = "MEMBER"
)

const (
	TipStatusPending   = "pending"
	TipStatusCompleted = "completed"
	TipStatusFailed    = "failed"
)

// Tip amounts are expressed in BUCK coins (1 BUCK = 1 USD).
const (
	MinTipBuck = 1
	MaxTipBuck = 10000
)

// PlatformFeeRate is the platform's cut of every tip.
const PlatformFeeRate = 0.10

// SplitTip converts a BUCK amount to cents and splits it between the
// platform fee and the creator payout. Both roundings are half away from
// zero, so amountCents == feeCents + creatorCents always holds.
func SplitTip(buckAmount float64) (amountCents, feeCents, creatorCents int64) {
	amountCents = int64(math.Round(buckAmount * 100))
	feeCents = int64(math.Round(float64(amountCents) * PlatformFeeRate))
	creatorCents = amountCents - feeCents
	return amountCents, feeCents, creatorCents
}
