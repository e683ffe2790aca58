package domain

import "strings"

// PlanTier classifies a billing plan for provisioning decisions. The billing
// service owns plan records; this service only needs to know whether activation
// happens immediately (free) or waits for payment (premium).
type PlanTier string

const (
	PlanTierFree    PlanTier = "FREE"
	PlanTierPremium PlanTier = "PREMIUM"
)

// DefaultPlanSlug is assumed when a request does not name a plan.
const DefaultPlanSlug = "free"

// PlanTierForSlug maps a requested plan slug to its tier. Anything other than
// the free/default slug is treated as premium: the account is parked in
// PENDING_PAYMENT and no subscription is activated during provisioning.
func PlanTierForSlug(slug string) PlanTier {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" || normalized == DefaultPlanSlug {
		return PlanTierFree
	}
	return PlanTierPremium
}

// StatusForTier derives the initial lifecycle status rows are created with.
func StatusForTier(tier PlanTier) AccountStatus {
	if tier == PlanTierPremium {
		return AccountStatusPendingPayment
	}
	return AccountStatusActive
}
