package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles the port implementations backed by one gorm handle.
type Repositories struct {
	Identities  ports.IdentityRepository
	Idempotency ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Identities:  &identityRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
	}
}

type identityRepository struct {
	db *gorm.DB
}

// CreateIdentity commits the whole identity row set in one transaction.
// Insertion order follows the dependency chain: account, organization, user,
// profiles. A unique violation anywhere aborts the transaction and surfaces as
// a field-tagged conflict.
func (r *identityRepository) CreateIdentity(ctx context.Context, spec ports.IdentitySpec) (ports.CreatedIdentity, error) {
	var created ports.CreatedIdentity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := toAccountModel(spec.Account)
		if err := tx.Create(&account).Error; err != nil {
			return mapConstraintError(err)
		}

		var orgID *uuid.UUID
		if spec.Organization != nil {
			org := toOrganizationModel(*spec.Organization)
			if err := tx.Create(&org).Error; err != nil {
				return mapConstraintError(err)
			}
			orgID = &org.OrganizationID
		}

		user := toUserModel(spec.User)
		if err := tx.Create(&user).Error; err != nil {
			return mapConstraintError(err)
		}

		profileIDs := make([]uuid.UUID, 0, len(spec.Profiles))
		for _, p := range spec.Profiles {
			profile := toProfileCompletionModel(p)
			if err := tx.Create(&profile).Error; err != nil {
				return mapConstraintError(err)
			}
			profileIDs = append(profileIDs, profile.ProfileID)
		}

		created = ports.CreatedIdentity{
			AccountID:      account.AccountID,
			UserID:         user.UserID,
			OrganizationID: orgID,
			ProfileIDs:     profileIDs,
		}
		return nil
	})
	if err != nil {
		return ports.CreatedIdentity{}, err
	}
	return created, nil
}

// DeleteIdentity compensates a failed saga by removing the committed rows in
// strict reverse dependency order. Best effort: a failure here means orphaned
// rows and is escalated by the caller.
func (r *identityRepository) DeleteIdentity(ctx context.Context, ids ports.CreatedIdentity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids.ProfileIDs) > 0 {
			if err := tx.Where("profile_id IN ?", ids.ProfileIDs).Delete(&profileCompletionModel{}).Error; err != nil {
				return err
			}
		}
		if ids.OrganizationID != nil {
			if err := tx.Where("organization_id = ?", *ids.OrganizationID).Delete(&organizationModel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", ids.UserID).Delete(&userModel{}).Error; err != nil {
			return err
		}
		return tx.Where("account_id = ?", ids.AccountID).Delete(&accountModel{}).Error
	})
}

func (r *identityRepository) GetAccount(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *identityRepository) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

const pgUniqueViolation = "23505"

// constraintFields maps postgres unique-constraint names to the request field
// reported in the conflict. Default postgres naming (table_column_key,
// table_pkey) is relied on by the migrations.
var constraintFields = map[string]string{
	"accounts_pkey":                 "uuid",
	"accounts_code_key":             "account_code",
	"users_pkey":                    "uuid",
	"users_code_key":                "user_code",
	"users_email_key":               "email",
	"users_phone_key":               "phone",
	"organizations_pkey":            "uuid",
	"organizations_code_key":        "organization_code",
	"organizations_name_key":        "name",
	"profile_completions_pkey":      "uuid",
	"provisioning_idempotency_pkey": "idempotency_key",
}

// mapConstraintError translates a unique violation into a field-tagged
// domain conflict; anything else passes through untouched.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if field, ok := constraintFields[pgErr.ConstraintName]; ok {
			return domain.NewConflictError(field)
		}
		return domain.NewConflictError("")
	}
	return err
}
