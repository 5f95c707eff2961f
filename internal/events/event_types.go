package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCouponSubmitted EventType = "coupon_submitted"
	EventCouponClaimed   EventType = "coupon_claimed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CouponID  string      `json:"coupon_id"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CouponSubmittedPayload payload.
type CouponSubmittedPayload struct {
	Platform string `json:"platform"`
	Details  string `json:"details,omitempty"`
}

// CouponClaimedPayload payload.
type CouponClaimedPayload struct {
	Platform  string `json:"platform"`
	ClaimedBy int64  `json:"claimed_by"`
}
