package application

import (
	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

// IndividualRequest provisions a single-user account.
type IndividualRequest struct {
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	PlanSlug     string `json:"plan,omitempty"`
	BillingCycle string `json:"billing_cycle,omitempty"`
	IPAddress    string `json:"-"`
}

// OrganizationRequest provisions an organization account plus its
// administrator user.
type OrganizationRequest struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name,omitempty"`
	PlanSlug       string `json:"plan,omitempty"`
	BillingCycle   string `json:"billing_cycle,omitempty"`
	AdminEmail     string `json:"admin_email"`
	AdminPhone     string `json:"admin_phone,omitempty"`
	AdminPassword  string `json:"admin_password"`
	AdminFirstName string `json:"admin_first_name,omitempty"`
	AdminLastName  string `json:"admin_last_name,omitempty"`
	IPAddress      string `json:"-"`
}

// ProvisionedIdentity is the terminal success projection of one saga run.
// Subscription is nil for premium-tier accounts, which deliberately finish in
// PENDING_PAYMENT with no active subscription.
type ProvisionedIdentity struct {
	AccountID      uuid.UUID            `json:"account_id"`
	AccountCode    string               `json:"account_code"`
	UserID         uuid.UUID            `json:"user_id"`
	OrganizationID *uuid.UUID           `json:"organization_id,omitempty"`
	Status         domain.AccountStatus `json:"status"`
	Role           string               `json:"role"`
	PlanID         uuid.UUID            `json:"plan_id"`
	Subscription   *ports.Subscription  `json:"subscription,omitempty"`
}

// provisionedEvent is the identity.provisioned side-channel payload.
type provisionedEvent struct {
	UUID        string `json:"uuid"`
	AccountUUID string `json:"accountUuid"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}
