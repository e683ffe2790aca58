package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	got, err := normalizeEmail("  User@Example.COM ")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got != "user@example.com" {
		t.Fatalf("expected lowercased trimmed email, got %q", got)
	}

	for _, bad := range []string{"", "   ", "not-an-email", "missing@domain@twice"} {
		if _, err := normalizeEmail(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%q: expected invalid input, got %v", bad, err)
		}
	}
}

func TestDisplayNameOrDefault(t *testing.T) {
	t.Parallel()

	cases := []struct {
		display, first, last, email, want string
	}{
		{"Explicit Name", "Ada", "Lovelace", "ada@example.com", "Explicit Name"},
		{"", "Ada", "Lovelace", "ada@example.com", "Ada Lovelace"},
		{"", "Ada", "", "ada@example.com", "Ada"},
		{"", "", "", "ada@example.com", "ada"},
	}
	for _, tc := range cases {
		if got := displayNameOrDefault(tc.display, tc.first, tc.last, tc.email); got != tc.want {
			t.Fatalf("displayNameOrDefault(%q,%q,%q,%q) = %q, want %q", tc.display, tc.first, tc.last, tc.email, got, tc.want)
		}
	}
}

func TestNewCodeFormat(t *testing.T) {
	t.Parallel()

	code := newCode("AC")
	if !strings.HasPrefix(code, "AC-") {
		t.Fatalf("expected AC- prefix, got %q", code)
	}
	if strings.Contains(code, "=") {
		t.Fatalf("padding must be stripped, got %q", code)
	}
	if code == newCode("AC") {
		t.Fatalf("codes must not repeat")
	}
}

func TestClassifyPrecheckError(t *testing.T) {
	t.Parallel()

	if err := classifyPrecheckError("role", "GeneralUser", domain.ErrReferenceNotFound); !errors.Is(err, domain.ErrReferenceNotFound) {
		t.Fatalf("reference-not-found must survive classification, got %v", err)
	}
	if err := classifyPrecheckError("plan", "free", context.DeadlineExceeded); !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Fatalf("timeout must classify as dependency-unavailable, got %v", err)
	}
	if err := classifyPrecheckError("plan", "free", errors.New("connection refused")); !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Fatalf("transport errors must classify as dependency-unavailable, got %v", err)
	}
}
