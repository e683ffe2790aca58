package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestScoreUserProfile(t *testing.T) {
	t.Parallel()

	phone := "+15550100"
	full := ScoreUserProfile(User{
		UserID:    uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     &phone,
	})
	if full.Percentage != 100 || !full.IsComplete || len(full.MissingFields) != 0 {
		t.Fatalf("expected complete profile, got %+v", full)
	}
	if full.OwnerKind != ProfileOwnerUser {
		t.Fatalf("expected USER owner kind, got %s", full.OwnerKind)
	}

	partial := ScoreUserProfile(User{UserID: uuid.New(), FirstName: "Ada"})
	if partial.Percentage != 33 || partial.IsComplete {
		t.Fatalf("expected 33%% incomplete profile, got %+v", partial)
	}
	if len(partial.MissingFields) != 2 || partial.MissingFields[0] != "last_name" || partial.MissingFields[1] != "phone" {
		t.Fatalf("unexpected missing fields: %v", partial.MissingFields)
	}

	empty := ScoreUserProfile(User{UserID: uuid.New()})
	if empty.Percentage != 0 || len(empty.MissingFields) != 3 {
		t.Fatalf("expected empty profile score, got %+v", empty)
	}
}

func TestScoreOrganizationProfile(t *testing.T) {
	t.Parallel()

	fresh := ScoreOrganizationProfile(Organization{
		OrganizationID:     uuid.New(),
		Name:               "Acme Widgets",
		VerificationStatus: VerificationStatusUnverified,
	})
	if fresh.Percentage != 50 || fresh.IsComplete {
		t.Fatalf("new organizations always have verification outstanding, got %+v", fresh)
	}
	if len(fresh.MissingFields) != 1 || fresh.MissingFields[0] != "verification" {
		t.Fatalf("unexpected missing fields: %v", fresh.MissingFields)
	}
	if fresh.OwnerKind != ProfileOwnerOrganization {
		t.Fatalf("expected ORGANIZATION owner kind, got %s", fresh.OwnerKind)
	}

	verified := ScoreOrganizationProfile(Organization{
		OrganizationID:     uuid.New(),
		Name:               "Acme Widgets",
		VerificationStatus: VerificationStatusVerified,
	})
	if verified.Percentage != 100 || !verified.IsComplete {
		t.Fatalf("expected complete profile after verification, got %+v", verified)
	}
}
