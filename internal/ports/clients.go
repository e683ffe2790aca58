package ports

import (
	"context"

	"github.com/google/uuid"
)

// AccessControlClient is the consumed surface of the access-control service.
// Calls are all-or-nothing; implementations classify failures as
// domain.ErrDependencyUnavailable or domain.ErrReferenceNotFound so the
// orchestrator never inspects transport detail.
type AccessControlClient interface {
	ResolveRoleID(ctx context.Context, roleType string) (uuid.UUID, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	// UnassignRole compensates a completed assignment when a later saga step
	// fails. Best effort; the role binding would otherwise reference a deleted
	// user.
	UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error
}

// Subscription is the billing service's activation result projection.
type Subscription struct {
	SubscriptionID string
	PlanID         uuid.UUID
	Status         string
}

// BillingClient is the consumed surface of the billing service.
type BillingClient interface {
	ResolvePlanID(ctx context.Context, slug string) (uuid.UUID, error)
	ActivateSubscription(ctx context.Context, accountID, planID uuid.UUID, billingCycle string) (Subscription, error)
}
