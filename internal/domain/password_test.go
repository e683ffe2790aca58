package domain

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		password  string
		wantError bool
	}{
		{name: "valid", password: "Sufficient#Str0ng", wantError: false},
		{name: "minimum length", password: "Abcdefg1234!", wantError: false},
		{name: "too short", password: "Ab1!", wantError: true},
		{name: "too long", password: "Aa1!" + strings.Repeat("x", 128), wantError: true},
		{name: "no upper", password: "sufficient#str0ng", wantError: true},
		{name: "no digit", password: "Sufficient#Strong", wantError: true},
		{name: "no symbol", password: "SufficientStr0ng", wantError: true},
		{name: "weak pattern password", password: "MyPassword#99x", wantError: true},
		{name: "weak pattern sequence", password: "Aa!123456zzzz", wantError: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tc.password)
			if tc.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantError && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}
