package models

import "time"

// WebhookRecord is the append-only audit trail of provider callbacks. A row is
// written for every delivery before any business effect, whatever the
// processing outcome, so operations can replay or inspect deliveries later.
type WebhookRecord struct {
	ID              uint   `gorm:"primarykey"`
	Provider        string `gorm:"index:idx_webhook_records_provider_time;not null"`
	RawPayload      string `gorm:"type:text"`
	ResponsePayload string `gorm:"type:text"`
	HTTPStatus      int
	SourceIP        string
	ReceivedAt      time.Time `gorm:"index:idx_webhook_records_provider_time"`
}
