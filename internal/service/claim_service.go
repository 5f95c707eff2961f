package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/events"
	"github.com/spec-kit/coupon-saver/internal/repository"
	"github.com/spec-kit/coupon-saver/pkg/util"
)

const claimWindow = 24 * time.Hour

// ClaimService hands an available coupon to at most one claimant while
// enforcing the rolling daily quota.
type ClaimService struct {
	coupons    repository.CouponRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	userLocks  *util.KeyedMutex
	dailyLimit int
	now        func() time.Time
}

// ClaimDependencies bundles collaborators for the claim service.
type ClaimDependencies struct {
	CouponRepo repository.CouponRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	DailyLimit int
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	limit := deps.DailyLimit
	if limit <= 0 {
		limit = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{
		coupons:    deps.CouponRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		userLocks:  util.NewKeyedMutex(),
		dailyLimit: limit,
		now:        time.Now,
	}
}

// Claim attempts to take exclusive ownership of the coupon for userID.
// Returns domain.ErrLimitReached when the quota is exhausted and
// domain.ErrNotAvailable when the coupon is missing or already taken.
//
// All claims for one user are serialized through a per-user lock so the
// quota check and the claim commit act as a unit; concurrent claims for one
// coupon are resolved by the conditional update inside the repository.
func (s *ClaimService) Claim(ctx context.Context, couponID string, userID int64) (*domain.Coupon, error) {
	s.userLocks.Lock(userID)
	defer s.userLocks.Unlock(userID)

	now := s.now()
	count, err := s.coupons.CountClaimsSince(ctx, userID, now.Add(-claimWindow))
	if err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}
	if count >= s.dailyLimit {
		return nil, domain.ErrLimitReached
	}

	coupon, err := s.coupons.Claim(ctx, couponID, userID, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotAvailable
		}
		return nil, fmt.Errorf("claim coupon: %w", err)
	}

	s.logger.Info("coupon claimed",
		zap.String("coupon_id", coupon.ID),
		zap.String("platform", coupon.Platform),
		zap.Int64("user_id", userID),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCouponClaimed,
		CouponID: coupon.ID,
		UserID:   userID,
		Payload: events.CouponClaimedPayload{
			Platform:  coupon.Platform,
			ClaimedBy: userID,
		},
	})
	return coupon, nil
}

// DailyLimit exposes the configured quota for user-facing messages.
func (s *ClaimService) DailyLimit() int {
	return s.dailyLimit
}

func (s *ClaimService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
