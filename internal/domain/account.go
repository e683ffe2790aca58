package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountKind is the closed set of actor types an Account can own.
type AccountKind string

const (
	AccountKindIndividual   AccountKind = "INDIVIDUAL"
	AccountKindOrganization AccountKind = "ORGANIZATION"
)

// AccountStatus is the provisioning lifecycle state shared by Account, User and Organization rows.
// PENDING_PAYMENT is a valid terminal state for premium-tier signups, not a failure.
type AccountStatus string

const (
	AccountStatusActive         AccountStatus = "ACTIVE"
	AccountStatusPendingPayment AccountStatus = "PENDING_PAYMENT"
	AccountStatusInactive       AccountStatus = "INACTIVE"
)

// VerificationStatus tracks organization vetting; provisioning always starts unverified.
type VerificationStatus string

const (
	VerificationStatusUnverified VerificationStatus = "UNVERIFIED"
	VerificationStatusPending    VerificationStatus = "PENDING"
	VerificationStatusVerified   VerificationStatus = "VERIFIED"
)

// Account is the top-level identity/billing container.
// Exactly one Account is created per provisioning call, owning either a single
// individual User or an Organization plus its administrator User.
type Account struct {
	AccountID   uuid.UUID
	Code        string
	Kind        AccountKind
	DisplayName string
	Status      AccountStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User is the platform login identity owned by an Account.
// RoleName is a denormalized label; the authoritative role binding lives in the
// access-control service.
type User struct {
	UserID       uuid.UUID
	Code         string
	Email        string
	Phone        *string
	FirstName    string
	LastName     string
	RoleName     string
	AccountID    uuid.UUID
	Status       AccountStatus
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Organization is the business entity created for organization provisioning, 1:1
// with its owning Account.
type Organization struct {
	OrganizationID     uuid.UUID
	Code               string
	Name               string
	AccountID          uuid.UUID
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Role types resolved against the access-control service during precheck.
const (
	RoleTypeGeneralUser         = "GeneralUser"
	RoleTypeBusinessSystemAdmin = "BusinessSystemAdmin"
)
