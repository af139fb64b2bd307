package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptStatus is the provider-side status vocabulary. It is fixed:
// unrecognized statuses are rejected at the webhook boundary rather than
// stored.
type AttemptStatus string

const (
	AttemptSucceeded      AttemptStatus = "succeeded"
	AttemptProcessing     AttemptStatus = "processing"
	AttemptRequiresAction AttemptStatus = "requires_action"
	AttemptFailed         AttemptStatus = "failed"
)

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptSucceeded, AttemptProcessing, AttemptRequiresAction, AttemptFailed:
		return true
	}
	return false
}

type PaymentAttempt struct {
	ID              int64          `json:"id,string" gorm:"primaryKey"`
	StoreID         int64          `json:"store_id,string" gorm:"not null;index"`
	OrderID         int64          `json:"order_id,string" gorm:"not null;index"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null"`
	Status          AttemptStatus  `json:"status" gorm:"type:text;not null"`
	Amount          int64          `json:"amount" gorm:"not null"`
	Currency        string         `json:"currency" gorm:"type:text;not null"`
	FailureCode     *string        `json:"failure_code,omitempty" gorm:"type:text"`
	FailureMessage  *string        `json:"failure_message,omitempty" gorm:"type:text"`
	Payload         datatypes.JSON `json:"-" gorm:"type:jsonb"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }

// ProcessedEvent marks a webhook event as handled. Every handled event,
// payment and subscription alike, lands here before dispatch; the unique
// (provider, provider_event_id) index is what makes replays no-ops.
type ProcessedEvent struct {
	ID              int64     `json:"id,string" gorm:"primaryKey"`
	StoreID         int64     `json:"store_id,string" gorm:"not null;index"`
	Provider        string    `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string    `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string    `json:"event_type" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null"`
}

func (ProcessedEvent) TableName() string { return "webhook_events" }

// WebhookEvent is the canonical event parsed out of a provider payload.
// Payloads are opaque beyond these fields; no provider SDK is involved.
type WebhookEvent struct {
	Provider        string
	ProviderEventID string
	Type            string
	OrderID         int64
	StoreID         int64
	Amount          int64
	Currency        string
	Status          AttemptStatus
	FailureCode     string
	FailureMessage  string
	RawPayload      []byte
}

const (
	EventTypePayment             = "payment"
	EventTypeSubscriptionCharge  = "subscription_charge"
	EventTypeSubscriptionFailure = "subscription_charge_failed"
)
