package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

// Config carries the orchestration knobs resolved at bootstrap.
type Config struct {
	DefaultPlanSlug              string
	DefaultBillingCycle          string
	PrecheckTimeout              time.Duration
	IdempotencyTTL               time.Duration
	RateLimitIPThreshold         int
	RateLimitIdentifierThreshold int
	RateLimitWindow              time.Duration
}

// Service is the provisioning orchestrator. It owns the saga composing the
// identity store, the access-control and billing services, and the
// notification side channel.
type Service struct {
	cfg         Config
	identities  ports.IdentityRepository
	idempotency ports.IdempotencyRepository
	access      ports.AccessControlClient
	billing     ports.BillingClient
	publisher   ports.EventPublisher
	rates       ports.RateLimitStore
	hasher      ports.PasswordHasher
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Identities  ports.IdentityRepository
	Idempotency ports.IdempotencyRepository
	Access      ports.AccessControlClient
	Billing     ports.BillingClient
	Publisher   ports.EventPublisher
	Rates       ports.RateLimitStore
	Hasher      ports.PasswordHasher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.DefaultPlanSlug == "" {
		cfg.DefaultPlanSlug = "free"
	}
	if cfg.DefaultBillingCycle == "" {
		cfg.DefaultBillingCycle = "monthly"
	}
	if cfg.PrecheckTimeout <= 0 {
		cfg.PrecheckTimeout = 5 * time.Second
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	return &Service{
		cfg:         cfg,
		identities:  deps.Identities,
		idempotency: deps.Idempotency,
		access:      deps.Access,
		billing:     deps.Billing,
		publisher:   deps.Publisher,
		rates:       deps.Rates,
		hasher:      deps.Hasher,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// Ready reports whether the identity store answers reads. The probe ids are
// random, so not-found is the healthy answer; anything else means the store is
// unreachable.
func (s *Service) Ready(ctx context.Context) error {
	if s.identities == nil {
		return nil
	}
	if _, err := s.identities.GetAccount(ctx, uuid.New()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.identities.GetUser(ctx, uuid.New()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
