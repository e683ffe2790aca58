package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

// normalizeEmail canonicalizes and validates email format before persistence
// and uniqueness comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// hashRequest computes a deterministic request fingerprint for idempotency
// conflict detection.
func hashRequest(req any) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// newCode mints a short human-readable entity code, e.g. "AC-7K2M4QJ3".
func newCode(prefix string) string {
	raw := make([]byte, 5)
	_, _ = rand.Read(raw)
	suffix := strings.TrimRight(base32.StdEncoding.EncodeToString(raw), "=")
	return prefix + "-" + suffix
}

func optionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func displayNameOrDefault(display, first, last, email string) string {
	if trimmed := strings.TrimSpace(display); trimmed != "" {
		return trimmed
	}
	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full != "" {
		return full
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func (s *Service) planSlugOrDefault(slug string) string {
	if trimmed := strings.ToLower(strings.TrimSpace(slug)); trimmed != "" {
		return trimmed
	}
	return s.cfg.DefaultPlanSlug
}

func (s *Service) billingCycleOrDefault(cycle string) string {
	if trimmed := strings.ToLower(strings.TrimSpace(cycle)); trimmed != "" {
		return trimmed
	}
	return s.cfg.DefaultBillingCycle
}

// throttle enforces the per-IP and per-identifier provisioning rate limits.
// Store errors degrade open: losing the limiter must not take signups down.
func (s *Service) throttle(ctx context.Context, ip, identifier string) error {
	if s.rates == nil {
		return nil
	}
	if err := s.enforceRateLimit(ctx, "provision:ip:"+strings.TrimSpace(ip), s.cfg.RateLimitIPThreshold); err != nil {
		return err
	}
	return s.enforceRateLimit(ctx, "provision:identifier:"+identifier, s.cfg.RateLimitIdentifierThreshold)
}

func (s *Service) enforceRateLimit(ctx context.Context, key string, threshold int) error {
	if threshold <= 0 || s.cfg.RateLimitWindow <= 0 {
		return nil
	}
	if strings.HasSuffix(key, ":") {
		return nil
	}

	now := s.nowFn()
	state, err := s.rates.Get(ctx, key)
	if err == nil && state.BlockedUntil != nil && state.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}

	updated, err := s.rates.Record(ctx, key, now, threshold, s.cfg.RateLimitWindow)
	if err != nil {
		slog.Default().WarnContext(ctx, "rate-limit state unavailable",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "rate_limit",
			"outcome", "warning",
			"key", key,
			"error", err,
		)
		return nil
	}
	if updated.BlockedUntil != nil && updated.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}
	return nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key string, req any) error {
	if key == "" || s.idempotency == nil {
		return nil
	}
	if err := s.idempotency.Reserve(ctx, key, hashRequest(req), s.nowFn().Add(s.cfg.IdempotencyTTL)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
	}
	return nil
}

// releaseIdempotency frees the reservation after a failure that wrote
// nothing, so the caller can retry with the same key once the dependency
// recovers or the input is corrected.
func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	_ = s.idempotency.Release(ctx, key)
}

func (s *Service) completeIdempotency(ctx context.Context, key string, res ProvisionedIdentity) {
	if key == "" || s.idempotency == nil {
		return
	}
	body, _ := json.Marshal(res)
	_ = s.idempotency.Complete(ctx, key, http.StatusCreated, body, s.nowFn())
}

// isPrecheckFailure reports whether a provisioning error happened before any
// identity write, which makes the idempotency key safe to reuse.
func isPrecheckFailure(err error) bool {
	return errors.Is(err, domain.ErrDependencyUnavailable) || errors.Is(err, domain.ErrReferenceNotFound)
}

// classifyPrecheckError keeps the reference/dependency distinction intact and
// folds every other failure (timeouts included) into dependency-unavailable.
func classifyPrecheckError(kind, input string, err error) error {
	switch {
	case errors.Is(err, domain.ErrReferenceNotFound):
		return fmt.Errorf("%w: %s %q", domain.ErrReferenceNotFound, kind, input)
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return fmt.Errorf("%w: resolving %s %q", domain.ErrDependencyUnavailable, kind, input)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: resolving %s %q timed out", domain.ErrDependencyUnavailable, kind, input)
	default:
		return fmt.Errorf("%w: resolving %s %q: %v", domain.ErrDependencyUnavailable, kind, input, err)
	}
}
