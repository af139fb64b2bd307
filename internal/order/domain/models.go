// Package domain contains persistence models for orders and the lifecycle
// state machine they move through.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PaymentStatus tracks the manual payment-proof flow for local payment
// methods (FPS, PayMe, Alipay screenshots reviewed by the merchant).
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusUploaded  PaymentStatus = "uploaded"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// LineItem binds a product to an order at purchase time. UnitPrice is
// captured when the order is created and never tracks later product price
// changes. VariantKey is nil for products without tracked variants.
type LineItem struct {
	ProductID  int64   `json:"product_id,string"`
	Title      string  `json:"title"`
	VariantKey *string `json:"variant_key,omitempty"`
	UnitPrice  int64   `json:"unit_price"`
	Quantity   int64   `json:"quantity"`
}

// LineItems is the ordered line-item sequence, stored as a JSON column.
type LineItems []LineItem

// StatusChange is one entry in the append-only status history.
type StatusChange struct {
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusHistory is append-only: Append is the only mutation path. Entries
// are never edited, removed, or reordered.
type StatusHistory []StatusChange

// Append returns the history with a change recorded at the end.
func (h StatusHistory) Append(from, to Status, at time.Time) StatusHistory {
	return append(h, StatusChange{FromStatus: from, ToStatus: to, Timestamp: at})
}

// AdminNote is one merchant-entered note on an order.
type AdminNote struct {
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	Author    string    `json:"author"`
}

// AdminNotes is append-only, same discipline as StatusHistory.
type AdminNotes []AdminNote

func (n AdminNotes) Append(note, author string, at time.Time) AdminNotes {
	return append(n, AdminNote{Timestamp: at, Note: note, Author: author})
}

// Order is a customer purchase within one store. Amount fields are whole
// display-currency units computed once at creation and immutable afterward.
type Order struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	StoreID     int64  `json:"store_id" gorm:"column:store_id;not null;index"`
	OrderNumber string `json:"order_number" gorm:"type:text;not null"`

	Status Status `json:"status" gorm:"type:text;not null"`

	Subtotal    int64  `json:"subtotal" gorm:"not null"`
	Discount    int64  `json:"discount" gorm:"not null;default:0"`
	DeliveryFee int64  `json:"delivery_fee" gorm:"not null;default:0"`
	Total       int64  `json:"total" gorm:"not null"`
	Currency    string `json:"currency" gorm:"type:text;not null;default:'HKD'"`

	Items LineItems `json:"items" gorm:"type:jsonb"`

	CustomerName  string  `json:"customer_name" gorm:"type:text"`
	CustomerPhone string  `json:"customer_phone" gorm:"type:text"`
	DeliveryMethod string `json:"delivery_method" gorm:"type:text"`
	Region         string `json:"region" gorm:"type:text"`
	TrackingNumber *string `json:"tracking_number,omitempty" gorm:"type:text"`

	PaymentMethod      string        `json:"payment_method" gorm:"type:text"`
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"type:text;not null;default:'pending'"`
	PaymentProof       *string       `json:"payment_proof,omitempty" gorm:"type:text"`
	PaymentConfirmedAt *time.Time    `json:"payment_confirmed_at,omitempty"`
	PaymentConfirmedBy *string       `json:"payment_confirmed_by,omitempty" gorm:"type:text"`

	StatusHistory StatusHistory `json:"status_history" gorm:"type:jsonb"`
	AdminNotes    AdminNotes    `json:"admin_notes" gorm:"type:jsonb"`

	CancelReason *string `json:"cancel_reason,omitempty" gorm:"type:text"`
	RefundReason *string `json:"refund_reason,omitempty" gorm:"type:text"`

	// Lifecycle timestamps, each set exactly once at first entry into the
	// matching status and never cleared.
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	FulfillingAt *time.Time `json:"fulfilling_at,omitempty"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	DisputedAt   *time.Time `json:"disputed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// lifecycleTimestamp returns a pointer to the set-once timestamp field for
// a status, or nil when the status has none.
func (o *Order) lifecycleTimestamp(status Status) **time.Time {
	switch status {
	case StatusPaid:
		return &o.PaidAt
	case StatusFulfilling:
		return &o.FulfillingAt
	case StatusShipped:
		return &o.ShippedAt
	case StatusCompleted:
		return &o.CompletedAt
	case StatusCancelled:
		return &o.CancelledAt
	case StatusRefunded:
		return &o.RefundedAt
	case StatusDisputed:
		return &o.DisputedAt
	default:
		return nil
	}
}

// StampLifecycle sets the timestamp field for status if it has never been
// set. Re-entering a status (possible via the ABANDONED -> PENDING edge)
// never overwrites the original timestamp.
func (o *Order) StampLifecycle(status Status, at time.Time) {
	field := o.lifecycleTimestamp(status)
	if field == nil || *field != nil {
		return
	}
	stamped := at
	*field = &stamped
}

func jsonValue(v any) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func jsonScan(dest any, value any) error {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case []byte:
		if len(typed) == 0 {
			return nil
		}
		return json.Unmarshal(typed, dest)
	case string:
		if typed == "" {
			return nil
		}
		return json.Unmarshal([]byte(typed), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}

func (i LineItems) Value() (driver.Value, error)     { return jsonValue([]LineItem(i)) }
func (i *LineItems) Scan(value any) error            { return jsonScan((*[]LineItem)(i), value) }
func (h StatusHistory) Value() (driver.Value, error) { return jsonValue([]StatusChange(h)) }
func (h *StatusHistory) Scan(value any) error        { return jsonScan((*[]StatusChange)(h), value) }
func (n AdminNotes) Value() (driver.Value, error)    { return jsonValue([]AdminNote(n)) }
func (n *AdminNotes) Scan(value any) error           { return jsonScan((*[]AdminNote)(n), value) }
