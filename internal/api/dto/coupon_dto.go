package dto

import (
	"time"

	"github.com/spec-kit/coupon-saver/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CouponResponse represents a coupon in admin listings.
type CouponResponse struct {
	ID          string              `json:"id"`
	Code        string              `json:"code"`
	Platform    string              `json:"platform"`
	Details     *string             `json:"details,omitempty"`
	SubmittedBy int64               `json:"submitted_by"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Status      domain.CouponStatus `json:"status"`
	ClaimedBy   *int64              `json:"claimed_by,omitempty"`
	ClaimedAt   *time.Time          `json:"claimed_at,omitempty"`
}

// FromCoupon maps the domain entity to its response shape.
func FromCoupon(c domain.Coupon) CouponResponse {
	return CouponResponse{
		ID:          c.ID,
		Code:        c.Code,
		Platform:    c.Platform,
		Details:     c.Details,
		SubmittedBy: c.SubmittedBy,
		SubmittedAt: c.SubmittedAt,
		Status:      c.Status,
		ClaimedBy:   c.ClaimedBy,
		ClaimedAt:   c.ClaimedAt,
	}
}

// StatsResponse reports pool counts and bot counters.
type StatsResponse struct {
	Pool    map[domain.CouponStatus]int64 `json:"pool"`
	Updates map[string]int64              `json:"updates"`
	Claims  map[string]int64              `json:"claims"`
}
