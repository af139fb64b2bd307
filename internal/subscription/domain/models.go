// Package domain contains persistence models for merchant plan subscriptions.
package domain

import "time"

// Status represents lifecycle states for a merchant subscription.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPastDue  Status = "PAST_DUE"
	StatusCanceled Status = "CANCELED"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Subscription captures a store's billing agreement. A failed charge moves
// it to PAST_DUE and opens a grace window; the downgrade to the free plan
// happens only once the grace deadline passes.
type Subscription struct {
	ID               int64      `json:"id,string" gorm:"primaryKey"`
	StoreID          int64      `json:"store_id,string" gorm:"not null;uniqueIndex"`
	Plan             Plan       `json:"plan" gorm:"type:text;not null"`
	Status           Status     `json:"status" gorm:"type:text;not null"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	GraceDeadline    *time.Time `json:"grace_deadline,omitempty"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"not null"`
}

func (Subscription) TableName() string { return "subscriptions" }
