package domain

import "errors"

var (
	// ErrNotFound indicates the coupon does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrNotAvailable indicates the coupon was already claimed, expired or removed.
	ErrNotAvailable = errors.New("coupon not available")
	// ErrLimitReached indicates the user exhausted the rolling daily claim quota.
	ErrLimitReached = errors.New("daily claim limit reached")
	// ErrInvalidCoupon indicates a submission with missing or oversized fields.
	ErrInvalidCoupon = errors.New("invalid coupon submission")
)
