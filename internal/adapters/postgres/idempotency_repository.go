package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var rec provisioningIdempotencyModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := ports.IdempotencyRecord{
		Key:          rec.IdempotencyKey,
		RequestHash:  rec.RequestHash,
		Status:       rec.Status,
		ResponseCode: rec.ResponseCode,
		ExpiresAt:    rec.ExpiresAt,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.ResponseBody != nil {
		out.ResponseBody = []byte(*rec.ResponseBody)
	}
	return &out, nil
}

func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	rec := provisioningIdempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Status:         "PENDING",
		ExpiresAt:      expiresAt,
	}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if err == nil {
		return nil
	}
	if _, ok := domain.ConflictField(mapConstraintError(err)); !ok {
		return err
	}

	// The key exists. An expired reservation is an abandoned submission and
	// may be taken over; a live one is a real conflict.
	res := r.db.WithContext(ctx).
		Model(&provisioningIdempotencyModel{}).
		Where("idempotency_key = ? AND expires_at < ?", key, time.Now().UTC()).
		Updates(map[string]any{
			"request_hash":  requestHash,
			"status":        "PENDING",
			"response_code": 0,
			"response_body": nil,
			"expires_at":    expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdempotencyConflict
	}
	return nil
}

// Release frees a reservation whose saga never committed anything, so the
// caller can retry with the same key. Completed records are left untouched.
func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("idempotency_key = ? AND status = ?", key, "PENDING").
		Delete(&provisioningIdempotencyModel{}).Error
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	var body *string
	if len(responseBody) > 0 {
		raw := string(responseBody)
		body = &raw
	}
	return r.db.WithContext(ctx).
		Model(&provisioningIdempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        "COMPLETED",
			"response_code": responseCode,
			"response_body": body,
			"updated_at":    at,
		}).Error
}
