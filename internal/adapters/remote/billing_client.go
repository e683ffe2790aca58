package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

// BillingClient talks to the billing service's internal HTTP API.
type BillingClient struct {
	base baseClient
}

func NewBillingClient(baseURL string, timeout time.Duration) *BillingClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BillingClient{
		base: baseClient{
			baseURL: baseURL,
			http:    &http.Client{Timeout: timeout},
		},
	}
}

func (c *BillingClient) ResolvePlanID(ctx context.Context, slug string) (uuid.UUID, error) {
	var resp struct {
		PlanID string `json:"plan_id"`
	}
	q := url.Values{"slug": {slug}}
	if err := c.base.doJSON(ctx, http.MethodGet, "/billing/v1/plans/resolve", q, nil, &resp); err != nil {
		return uuid.Nil, err
	}
	planID, err := uuid.Parse(resp.PlanID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed plan id %q", domain.ErrDependencyUnavailable, resp.PlanID)
	}
	return planID, nil
}

func (c *BillingClient) ActivateSubscription(ctx context.Context, accountID, planID uuid.UUID, billingCycle string) (ports.Subscription, error) {
	req := struct {
		AccountID    string `json:"account_id"`
		PlanID       string `json:"plan_id"`
		BillingCycle string `json:"billing_cycle,omitempty"`
	}{
		AccountID:    accountID.String(),
		PlanID:       planID.String(),
		BillingCycle: billingCycle,
	}
	var resp struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		Subscription struct {
			SubscriptionID string `json:"subscription_id"`
			PlanID         string `json:"plan_id"`
			Status         string `json:"status"`
		} `json:"subscription"`
	}
	if err := c.base.doJSON(ctx, http.MethodPost, "/billing/v1/subscriptions", nil, req, &resp); err != nil {
		return ports.Subscription{}, err
	}
	if !resp.Success {
		return ports.Subscription{}, fmt.Errorf("%w: subscription activation rejected: %s",
			domain.ErrDependencyUnavailable, resp.Message)
	}

	sub := ports.Subscription{
		SubscriptionID: resp.Subscription.SubscriptionID,
		Status:         resp.Subscription.Status,
	}
	if parsed, err := uuid.Parse(resp.Subscription.PlanID); err == nil {
		sub.PlanID = parsed
	} else {
		sub.PlanID = planID
	}
	return sub, nil
}

var _ ports.BillingClient = (*BillingClient)(nil)
