package model

import "time"

// IntentStatus is the observable status of a payment intent.
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded" // terminal
	IntentStatusNotFound  IntentStatus = "not_found"
)

// PaymentIntent records a requested payment while it awaits
// confirmation. The record is deleted the moment fulfillment is
// claimed, so at most one fulfillment can ever run per intent.
type PaymentIntent struct {
	ID        string       `json:"id"` // provider payment id, opaque
	ProductID string       `json:"product_id"`
	UserID    int64        `json:"user_id"`
	ChatID    int64        `json:"chat_id"`
	Status    IntentStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Expired reports whether the intent has outlived ttl. A zero ttl
// disables expiry.
func (p *PaymentIntent) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(p.CreatedAt) > ttl
}
