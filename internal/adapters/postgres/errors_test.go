package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

func TestMapConstraintError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		constraint string
		wantField  string
	}{
		{"users_email_key", "email"},
		{"users_phone_key", "phone"},
		{"organizations_name_key", "name"},
		{"accounts_code_key", "account_code"},
		{"some_unknown_key", ""},
	}
	for _, tc := range cases {
		err := mapConstraintError(fmt.Errorf("insert: %w", &pgconn.PgError{
			Code:           pgUniqueViolation,
			ConstraintName: tc.constraint,
		}))
		field, ok := domain.ConflictField(err)
		if !ok {
			t.Fatalf("%s: expected a conflict, got %v", tc.constraint, err)
		}
		if field != tc.wantField {
			t.Fatalf("%s: expected field %q, got %q", tc.constraint, tc.wantField, field)
		}
	}
}

func TestMapConstraintErrorPassthrough(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")
	if got := mapConstraintError(plain); got != plain {
		t.Fatalf("non-unique errors must pass through, got %v", got)
	}

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "users_account_uuid_fkey"}
	if got := mapConstraintError(fk); got != error(fk) {
		t.Fatalf("foreign-key violations must pass through, got %v", got)
	}
}
