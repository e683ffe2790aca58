package domain

import (
	"github.com/google/uuid"
)

// ProfileOwnerKind identifies which aggregate a completion row scores.
type ProfileOwnerKind string

const (
	ProfileOwnerUser         ProfileOwnerKind = "USER"
	ProfileOwnerOrganization ProfileOwnerKind = "ORGANIZATION"
)

// ProfileCompletion records how filled-in a User or Organization profile is.
// Rows are created alongside their owner during provisioning and never
// independently.
type ProfileCompletion struct {
	ProfileID     uuid.UUID
	OwnerKind     ProfileOwnerKind
	OwnerID       uuid.UUID
	Percentage    int
	MissingFields []string
	IsComplete    bool
}

// userProfileFields are the optional user fields that count toward completion.
var userProfileFields = []string{"first_name", "last_name", "phone"}

// ScoreUserProfile computes the initial completion row for a freshly created user.
func ScoreUserProfile(user User) ProfileCompletion {
	present := map[string]bool{
		"first_name": user.FirstName != "",
		"last_name":  user.LastName != "",
		"phone":      user.Phone != nil && *user.Phone != "",
	}
	return scoreProfile(ProfileOwnerUser, user.UserID, userProfileFields, present)
}

// organizationProfileFields are the organization fields that count toward completion.
// Verification is listed because a new organization always has vetting outstanding.
var organizationProfileFields = []string{"name", "verification"}

// ScoreOrganizationProfile computes the initial completion row for a new organization.
func ScoreOrganizationProfile(org Organization) ProfileCompletion {
	present := map[string]bool{
		"name":         org.Name != "",
		"verification": org.VerificationStatus == VerificationStatusVerified,
	}
	return scoreProfile(ProfileOwnerOrganization, org.OrganizationID, organizationProfileFields, present)
}

func scoreProfile(kind ProfileOwnerKind, ownerID uuid.UUID, fields []string, present map[string]bool) ProfileCompletion {
	missing := make([]string, 0, len(fields))
	filled := 0
	for _, f := range fields {
		if present[f] {
			filled++
			continue
		}
		missing = append(missing, f)
	}
	percentage := 0
	if len(fields) > 0 {
		percentage = filled * 100 / len(fields)
	}
	return ProfileCompletion{
		OwnerKind:     kind,
		OwnerID:       ownerID,
		Percentage:    percentage,
		MissingFields: missing,
		IsComplete:    len(missing) == 0,
	}
}
