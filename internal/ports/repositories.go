package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

// IdentitySpec describes the full row set one provisioning call creates.
// Organization is nil for individual provisioning.
type IdentitySpec struct {
	Account      domain.Account
	User         domain.User
	Organization *domain.Organization
	Profiles     []domain.ProfileCompletion
}

// CreatedIdentity carries the committed row ids, in the shape the compensating
// delete consumes.
type CreatedIdentity struct {
	AccountID      uuid.UUID
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	ProfileIDs     []uuid.UUID
}

// IdentityRepository is the transactional boundary of the identity store.
// CreateIdentity commits all rows atomically or not at all; unique violations
// surface as domain.ConflictError tagged with the violated field.
// DeleteIdentity is the best-effort compensation, removing rows in reverse
// dependency order.
type IdentityRepository interface {
	CreateIdentity(ctx context.Context, spec IdentitySpec) (CreatedIdentity, error)
	DeleteIdentity(ctx context.Context, ids CreatedIdentity) error
	GetAccount(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
}

// IdempotencyRecord tracks one provisioning submission keyed by caller-supplied key.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdempotencyRepository reserves a key before the saga runs and records the
// outcome after. Reserving a live key fails with a conflict; an expired
// reservation may be taken over. Release frees a still-pending reservation so
// the key can be retried after a failure that wrote nothing.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
	Release(ctx context.Context, key string) error
}
