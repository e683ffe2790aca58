package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"email conflict", domain.NewConflictError("email"), http.StatusConflict, "CONFLICT", "email"},
		{"wrapped conflict", fmt.Errorf("create: %w", domain.NewConflictError("phone")), http.StatusConflict, "CONFLICT", "phone"},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", ""},
		{"idempotency conflict", domain.ErrIdempotencyConflict, http.StatusConflict, "IDEMPOTENCY_CONFLICT", ""},
		{"reference not found", domain.ErrReferenceNotFound, http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND", ""},
		{"dependency unavailable", domain.ErrDependencyUnavailable, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", ""},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{"external activation", domain.ErrExternalActivation, http.StatusInternalServerError, "INTERNAL_ERROR", ""},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, code, field, _ := mapDomainError(tc.err)
			if status != tc.wantStatus || code != tc.wantCode || field != tc.wantField {
				t.Fatalf("mapDomainError(%v) = (%d, %s, %q), want (%d, %s, %q)",
					tc.err, status, code, field, tc.wantStatus, tc.wantCode, tc.wantField)
			}
		})
	}
}

func TestProvisionIndividualEndpoint(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(newTestService(nil)))
	body, _ := json.Marshal(map[string]string{
		"email":    "user@example.com",
		"password": "Sufficient#Str0ng",
	})

	req := httptest.NewRequest(http.MethodPost, "/provisioning/v1/individuals", bytes.NewReader(body))
	req.Header.Set("Idempotency-Key", "idem-http-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	var envelope struct {
		Status string                          `json:"status"`
		Data   application.ProvisionedIdentity `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %q", envelope.Status)
	}
	if envelope.Data.AccountID == uuid.Nil || envelope.Data.UserID == uuid.Nil {
		t.Fatalf("expected provisioned ids in response, got %+v", envelope.Data)
	}
	if envelope.Data.Status != domain.AccountStatusActive {
		t.Fatalf("expected ACTIVE account, got %s", envelope.Data.Status)
	}
}

func TestProvisionOrganizationEndpoint(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(newTestService(nil)))
	body, _ := json.Marshal(map[string]string{
		"name":           "Acme Widgets",
		"admin_email":    "admin@acme.example",
		"admin_password": "Sufficient#Str0ng",
	})

	req := httptest.NewRequest(http.MethodPost, "/provisioning/v1/organizations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data application.ProvisionedIdentity `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrganizationID == nil {
		t.Fatalf("expected organization id in response")
	}
}

func TestProvisionIndividualConflictResponse(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(newTestService(domain.NewConflictError("email"))))
	body, _ := json.Marshal(map[string]string{
		"email":    "taken@example.com",
		"password": "Sufficient#Str0ng",
	})

	req := httptest.NewRequest(http.MethodPost, "/provisioning/v1/individuals", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var payload apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Status != "error" || payload.Code != "CONFLICT" || payload.Field != "email" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}

func TestProvisionIndividualRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(newTestService(nil)))
	req := httptest.NewRequest(http.MethodPost, "/provisioning/v1/individuals",
		bytes.NewReader([]byte(`{"email":"a@b.example","password":"Sufficient#Str0ng","surprise":true}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields must 400, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(newTestService(nil)))
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestReadyzReportsStoreOutage(t *testing.T) {
	t.Parallel()

	svc := application.NewService(application.Dependencies{
		Identities: &stubIdentities{readErr: errors.New("connection refused")},
		Access:     &stubAccess{roleID: uuid.New()},
		Billing:    &stubBilling{planID: uuid.New()},
		Hasher:     stubHasher{},
	})
	router := NewRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the identity store is down, got %d", rec.Code)
	}
	var payload apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Code != "DEPENDENCY_UNAVAILABLE" {
		t.Fatalf("unexpected error code: %+v", payload)
	}
}

func TestReadIPPrefersForwardedFor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := readIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	direct := httptest.NewRequest(http.MethodGet, "/", nil)
	direct.RemoteAddr = "198.51.100.4:4312"
	if got := readIP(direct); got != "198.51.100.4" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

// newTestService wires the orchestrator with in-memory collaborators. createErr,
// when set, is returned by the identity store to exercise error translation.
func newTestService(createErr error) *application.Service {
	return application.NewService(application.Dependencies{
		Identities: &stubIdentities{createErr: createErr},
		Access:     &stubAccess{roleID: uuid.New()},
		Billing:    &stubBilling{planID: uuid.New()},
		Hasher:     stubHasher{},
	})
}

type stubIdentities struct {
	createErr error
	readErr   error
}

func (s *stubIdentities) CreateIdentity(_ context.Context, spec ports.IdentitySpec) (ports.CreatedIdentity, error) {
	if s.createErr != nil {
		return ports.CreatedIdentity{}, s.createErr
	}
	created := ports.CreatedIdentity{AccountID: spec.Account.AccountID, UserID: spec.User.UserID}
	if spec.Organization != nil {
		orgID := spec.Organization.OrganizationID
		created.OrganizationID = &orgID
	}
	return created, nil
}

func (s *stubIdentities) DeleteIdentity(context.Context, ports.CreatedIdentity) error { return nil }

func (s *stubIdentities) GetAccount(context.Context, uuid.UUID) (domain.Account, error) {
	if s.readErr != nil {
		return domain.Account{}, s.readErr
	}
	return domain.Account{}, domain.ErrNotFound
}

func (s *stubIdentities) GetUser(context.Context, uuid.UUID) (domain.User, error) {
	if s.readErr != nil {
		return domain.User{}, s.readErr
	}
	return domain.User{}, domain.ErrNotFound
}

type stubAccess struct {
	roleID uuid.UUID
}

func (s *stubAccess) ResolveRoleID(context.Context, string) (uuid.UUID, error) {
	return s.roleID, nil
}

func (s *stubAccess) AssignRole(context.Context, uuid.UUID, uuid.UUID) error   { return nil }
func (s *stubAccess) UnassignRole(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubBilling struct {
	planID uuid.UUID
}

func (s *stubBilling) ResolvePlanID(context.Context, string) (uuid.UUID, error) {
	return s.planID, nil
}

func (s *stubBilling) ActivateSubscription(_ context.Context, _, planID uuid.UUID, _ string) (ports.Subscription, error) {
	return ports.Subscription{SubscriptionID: "sub-test", PlanID: planID, Status: "ACTIVE"}, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (stubHasher) Compare(string, string) error         { return nil }
