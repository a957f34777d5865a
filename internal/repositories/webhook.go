package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kolo/internal/models"
)

// WebhookRecords stores the webhook audit trail.
type WebhookRecords struct {
	db *gorm.DB
}

// NewWebhookRecords creates the audit store.
func NewWebhookRecords(db *gorm.DB) *WebhookRecords {
	return &WebhookRecords{db: db}
}

// Create appends one audit record.
func (r *WebhookRecords) Create(ctx context.Context, rec *models.WebhookRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListByProvider returns recent deliveries for a provider within [from, to),
// newest first, for operator inspection.
func (r *WebhookRecords) ListByProvider(ctx context.Context, provider string, from, to time.Time, limit int) ([]models.WebhookRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []models.WebhookRecord
	err := r.db.WithContext(ctx).
		Where("provider = ? AND received_at >= ? AND received_at < ?", provider, from, to).
		Order("received_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
