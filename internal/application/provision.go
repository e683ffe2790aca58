package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

const (
	serviceName = "M04-Account-Provisioning-Service"

	eventTypeIdentityProvisioned = "identity.provisioned"

	stepLocalCommit          = "local_commit"
	stepAssignRole           = "assign_role"
	stepActivateSubscription = "activate_subscription"
)

// ProvisionIndividual onboards a single-user account: precheck against the
// access-control and billing services, one atomic identity-store commit, then
// external activation with compensation on failure.
func (s *Service) ProvisionIndividual(ctx context.Context, req IndividualRequest, idempotencyKey string) (ProvisionedIdentity, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := s.throttle(ctx, req.IPAddress, email); err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := s.reserveIdempotency(ctx, idempotencyKey, req); err != nil {
		return ProvisionedIdentity{}, err
	}

	res, err := s.provision(ctx, provisionParams{
		operation:    "provision_individual",
		roleType:     domain.RoleTypeGeneralUser,
		planSlug:     s.planSlugOrDefault(req.PlanSlug),
		billingCycle: s.billingCycleOrDefault(req.BillingCycle),
		email:        email,
		buildSpec: func(tier domain.PlanTier, now time.Time) (ports.IdentitySpec, error) {
			return s.buildIndividualSpec(req, email, tier, now)
		},
	})
	if err != nil {
		if isPrecheckFailure(err) {
			s.releaseIdempotency(ctx, idempotencyKey)
		}
		return ProvisionedIdentity{}, err
	}
	s.completeIdempotency(ctx, idempotencyKey, res)
	return res, nil
}

// ProvisionOrganization onboards an organization account together with its
// administrator user. Same saga as the individual flow, parameterized by the
// organization identity spec.
func (s *Service) ProvisionOrganization(ctx context.Context, req OrganizationRequest, idempotencyKey string) (ProvisionedIdentity, error) {
	if strings.TrimSpace(req.Name) == "" {
		return ProvisionedIdentity{}, fmt.Errorf("%w: organization name is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.AdminEmail)
	if err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := domain.ValidatePassword(req.AdminPassword); err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := s.throttle(ctx, req.IPAddress, email); err != nil {
		return ProvisionedIdentity{}, err
	}
	if err := s.reserveIdempotency(ctx, idempotencyKey, req); err != nil {
		return ProvisionedIdentity{}, err
	}

	res, err := s.provision(ctx, provisionParams{
		operation:    "provision_organization",
		roleType:     domain.RoleTypeBusinessSystemAdmin,
		planSlug:     s.planSlugOrDefault(req.PlanSlug),
		billingCycle: s.billingCycleOrDefault(req.BillingCycle),
		email:        email,
		buildSpec: func(tier domain.PlanTier, now time.Time) (ports.IdentitySpec, error) {
			return s.buildOrganizationSpec(req, email, tier, now)
		},
	})
	if err != nil {
		if isPrecheckFailure(err) {
			s.releaseIdempotency(ctx, idempotencyKey)
		}
		return ProvisionedIdentity{}, err
	}
	s.completeIdempotency(ctx, idempotencyKey, res)
	return res, nil
}

// provisionParams carries everything the shared saga needs that differs
// between the two actor types.
type provisionParams struct {
	operation    string
	roleType     string
	planSlug     string
	billingCycle string
	email        string
	buildSpec    func(tier domain.PlanTier, now time.Time) (ports.IdentitySpec, error)
}

func (s *Service) provision(ctx context.Context, params provisionParams) (ProvisionedIdentity, error) {
	roleID, planID, err := s.precheck(ctx, params.roleType, params.planSlug)
	if err != nil {
		return ProvisionedIdentity{}, err
	}

	tier := domain.PlanTierForSlug(params.planSlug)
	spec, err := params.buildSpec(tier, s.nowFn())
	if err != nil {
		return ProvisionedIdentity{}, err
	}

	var created ports.CreatedIdentity
	var subscription *ports.Subscription

	steps := []sagaStep{
		{
			name: stepLocalCommit,
			run: func(ctx context.Context) error {
				ids, err := s.identities.CreateIdentity(ctx, spec)
				if err != nil {
					return err
				}
				created = ids
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.identities.DeleteIdentity(ctx, created)
			},
		},
		{
			// Authorization must exist regardless of billing tier.
			name: stepAssignRole,
			run: func(ctx context.Context) error {
				return s.access.AssignRole(ctx, created.UserID, roleID)
			},
			compensate: func(ctx context.Context) error {
				return s.access.UnassignRole(ctx, created.UserID, roleID)
			},
		},
	}
	if tier == domain.PlanTierFree {
		steps = append(steps, sagaStep{
			name: stepActivateSubscription,
			run: func(ctx context.Context) error {
				sub, err := s.billing.ActivateSubscription(ctx, created.AccountID, planID, params.billingCycle)
				if err != nil {
					return err
				}
				subscription = &sub
				return nil
			},
		})
	}

	if failure := s.runSaga(ctx, params.operation, steps); failure != nil {
		if failure.step == stepLocalCommit {
			// The transaction never committed; conflicts surface field-tagged
			// and need no compensation.
			return ProvisionedIdentity{}, failure.cause
		}
		slog.Default().WarnContext(ctx, "external activation failed, identity rolled back",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", params.operation,
			"outcome", "failure",
			"failed_step", failure.step,
			"account_id", created.AccountID,
			"error", failure.cause,
		)
		return ProvisionedIdentity{}, fmt.Errorf("%w: %s", domain.ErrExternalActivation, failure.step)
	}

	result := ProvisionedIdentity{
		AccountID:      created.AccountID,
		AccountCode:    spec.Account.Code,
		UserID:         created.UserID,
		OrganizationID: created.OrganizationID,
		Status:         spec.Account.Status,
		Role:           params.roleType,
		PlanID:         planID,
		Subscription:   subscription,
	}
	s.emitProvisioned(ctx, params.operation, result, params.email)
	return result, nil
}

// precheck resolves the default role id and the plan id concurrently, each
// bounded by its own timeout, and joins before any write happens. A failure
// here aborts with zero cleanup.
func (s *Service) precheck(ctx context.Context, roleType, planSlug string) (uuid.UUID, uuid.UUID, error) {
	type outcome struct {
		id  uuid.UUID
		err error
	}
	roleCh := make(chan outcome, 1)
	planCh := make(chan outcome, 1)

	go func() {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.PrecheckTimeout)
		defer cancel()
		id, err := s.access.ResolveRoleID(cctx, roleType)
		roleCh <- outcome{id: id, err: err}
	}()
	go func() {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.PrecheckTimeout)
		defer cancel()
		id, err := s.billing.ResolvePlanID(cctx, planSlug)
		planCh <- outcome{id: id, err: err}
	}()

	role := <-roleCh
	plan := <-planCh
	if role.err != nil {
		return uuid.Nil, uuid.Nil, classifyPrecheckError("role", roleType, role.err)
	}
	if plan.err != nil {
		return uuid.Nil, uuid.Nil, classifyPrecheckError("plan", planSlug, plan.err)
	}
	return role.id, plan.id, nil
}

func (s *Service) buildIndividualSpec(req IndividualRequest, email string, tier domain.PlanTier, now time.Time) (ports.IdentitySpec, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return ports.IdentitySpec{}, fmt.Errorf("hash password: %w", err)
	}

	status := domain.StatusForTier(tier)
	account := domain.Account{
		AccountID:   uuid.New(),
		Code:        newCode("AC"),
		Kind:        domain.AccountKindIndividual,
		DisplayName: displayNameOrDefault(req.DisplayName, req.FirstName, req.LastName, email),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	user := domain.User{
		UserID:       uuid.New(),
		Code:         newCode("US"),
		Email:        email,
		Phone:        optionalString(req.Phone),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		RoleName:     domain.RoleTypeGeneralUser,
		AccountID:    account.AccountID,
		Status:       status,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := domain.ScoreUserProfile(user)
	profile.ProfileID = uuid.New()

	return ports.IdentitySpec{
		Account:  account,
		User:     user,
		Profiles: []domain.ProfileCompletion{profile},
	}, nil
}

func (s *Service) buildOrganizationSpec(req OrganizationRequest, email string, tier domain.PlanTier, now time.Time) (ports.IdentitySpec, error) {
	passwordHash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return ports.IdentitySpec{}, fmt.Errorf("hash password: %w", err)
	}

	status := domain.StatusForTier(tier)
	orgName := strings.TrimSpace(req.Name)
	account := domain.Account{
		AccountID:   uuid.New(),
		Code:        newCode("AC"),
		Kind:        domain.AccountKindOrganization,
		DisplayName: displayNameOrDefault(req.DisplayName, orgName, "", email),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	org := domain.Organization{
		OrganizationID:     uuid.New(),
		Code:               newCode("OG"),
		Name:               orgName,
		AccountID:          account.AccountID,
		VerificationStatus: domain.VerificationStatusUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	admin := domain.User{
		UserID:       uuid.New(),
		Code:         newCode("US"),
		Email:        email,
		Phone:        optionalString(req.AdminPhone),
		FirstName:    strings.TrimSpace(req.AdminFirstName),
		LastName:     strings.TrimSpace(req.AdminLastName),
		RoleName:     domain.RoleTypeBusinessSystemAdmin,
		AccountID:    account.AccountID,
		Status:       status,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	adminProfile := domain.ScoreUserProfile(admin)
	adminProfile.ProfileID = uuid.New()
	orgProfile := domain.ScoreOrganizationProfile(org)
	orgProfile.ProfileID = uuid.New()

	return ports.IdentitySpec{
		Account:      account,
		User:         admin,
		Organization: &org,
		Profiles:     []domain.ProfileCompletion{adminProfile, orgProfile},
	}, nil
}

// emitProvisioned publishes the identity.provisioned notification. The
// publish runs in its own goroutine on a detached short deadline so it never
// holds up the response, and its failure only logs; the saga outcome is
// already decided.
func (s *Service) emitProvisioned(ctx context.Context, operation string, res ProvisionedIdentity, email string) {
	if s.publisher == nil {
		return
	}
	payload, _ := json.Marshal(provisionedEvent{
		UUID:        res.UserID.String(),
		AccountUUID: res.AccountID.String(),
		Email:       email,
		Role:        res.Role,
	})
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	go func() {
		defer cancel()
		if err := s.publisher.Publish(pctx, eventTypeIdentityProvisioned, payload, res.AccountID.String()); err != nil {
			slog.Default().WarnContext(pctx, "provisioned notification publish failed",
				"service", serviceName,
				"module", "application",
				"layer", "application",
				"operation", operation,
				"outcome", "warning",
				"event_type", eventTypeIdentityProvisioned,
				"account_id", res.AccountID,
				"error", err,
			)
		}
	}()
}
