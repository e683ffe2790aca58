package postgres

import (
	"encoding/json"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

func toAccountModel(a domain.Account) accountModel {
	return accountModel{
		AccountID:   a.AccountID,
		Code:        a.Code,
		Kind:        string(a.Kind),
		DisplayName: a.DisplayName,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toDomainAccount(m accountModel) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Code:        m.Code,
		Kind:        domain.AccountKind(m.Kind),
		DisplayName: m.DisplayName,
		Status:      domain.AccountStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toUserModel(u domain.User) userModel {
	return userModel{
		UserID:       u.UserID,
		Code:         u.Code,
		Email:        u.Email,
		Phone:        u.Phone,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		RoleName:     u.RoleName,
		AccountID:    u.AccountID,
		Status:       string(u.Status),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainUser(m userModel) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Code:         m.Code,
		Email:        m.Email,
		Phone:        m.Phone,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		RoleName:     m.RoleName,
		AccountID:    m.AccountID,
		Status:       domain.AccountStatus(m.Status),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toOrganizationModel(o domain.Organization) organizationModel {
	return organizationModel{
		OrganizationID:     o.OrganizationID,
		Code:               o.Code,
		Name:               o.Name,
		AccountID:          o.AccountID,
		VerificationStatus: string(o.VerificationStatus),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func toProfileCompletionModel(p domain.ProfileCompletion) profileCompletionModel {
	missing := p.MissingFields
	if missing == nil {
		missing = []string{}
	}
	raw, _ := json.Marshal(missing)
	return profileCompletionModel{
		ProfileID:     p.ProfileID,
		OwnerKind:     string(p.OwnerKind),
		OwnerID:       p.OwnerID,
		Percentage:    p.Percentage,
		MissingFields: string(raw),
		IsComplete:    p.IsComplete,
	}
}
