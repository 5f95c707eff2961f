package domain

import "time"

// CouponStatus enumerates lifecycle states for coupons.
type CouponStatus string

const (
	CouponStatusAvailable CouponStatus = "AVAILABLE"
	CouponStatusClaimed   CouponStatus = "CLAIMED"
	CouponStatusExpired   CouponStatus = "EXPIRED"
	CouponStatusRemoved   CouponStatus = "REMOVED"
)

// Coupon is the aggregate for shared discount codes and links.
type Coupon struct {
	ID          string
	Code        string
	Platform    string
	Details     *string
	SubmittedBy int64
	SubmittedAt time.Time
	Status      CouponStatus
	ClaimedBy   *int64
	ClaimedAt   *time.Time
}

// IsAvailable reports whether the coupon can still be claimed.
func (c *Coupon) IsAvailable() bool {
	return c.Status == CouponStatusAvailable && c.ClaimedBy == nil
}

// DetailsText returns the optional description or an empty string.
func (c *Coupon) DetailsText() string {
	if c.Details == nil {
		return ""
	}
	return *c.Details
}
