package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	AccountID   uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	Code        string    `gorm:"column:code"`
	Kind        string    `gorm:"column:kind"`
	DisplayName string    `gorm:"column:display_name"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

type userModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Code         string    `gorm:"column:code"`
	Email        string    `gorm:"column:email"`
	Phone        *string   `gorm:"column:phone"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	RoleName     string    `gorm:"column:role_name"`
	AccountID    uuid.UUID `gorm:"column:account_id"`
	Status       string    `gorm:"column:status"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type organizationModel struct {
	OrganizationID     uuid.UUID `gorm:"column:organization_id;type:uuid;primaryKey"`
	Code               string    `gorm:"column:code"`
	Name               string    `gorm:"column:name"`
	AccountID          uuid.UUID `gorm:"column:account_id"`
	VerificationStatus string    `gorm:"column:verification_status"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string { return "organizations" }

type profileCompletionModel struct {
	ProfileID     uuid.UUID `gorm:"column:profile_id;type:uuid;primaryKey"`
	OwnerKind     string    `gorm:"column:owner_kind"`
	OwnerID       uuid.UUID `gorm:"column:owner_id"`
	Percentage    int       `gorm:"column:percentage"`
	MissingFields string    `gorm:"column:missing_fields;type:jsonb"`
	IsComplete    bool      `gorm:"column:is_complete"`
}

func (profileCompletionModel) TableName() string { return "profile_completions" }

type provisioningIdempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body;type:jsonb"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (provisioningIdempotencyModel) TableName() string { return "provisioning_idempotency" }
