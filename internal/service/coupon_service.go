package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/events"
	"github.com/spec-kit/coupon-saver/internal/repository"
)

const (
	maxCodeLength     = 120
	maxPlatformLength = 80
	maxDetailsLength  = 500
)

// CouponService coordinates coupon submission and listing.
type CouponService struct {
	coupons    repository.CouponRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CouponDependencies bundles collaborators for the coupon service.
type CouponDependencies struct {
	CouponRepo repository.CouponRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewCouponService constructs the service.
func NewCouponService(deps CouponDependencies) *CouponService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouponService{
		coupons:    deps.CouponRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveCoupon persists a new coupon into the shared pool.
func (s *CouponService) SaveCoupon(ctx context.Context, submittedBy int64, code, platform, details string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	platform = strings.TrimSpace(platform)
	details = strings.TrimSpace(details)

	if code == "" || platform == "" {
		return nil, domain.ErrInvalidCoupon
	}
	if len(code) > maxCodeLength || len(platform) > maxPlatformLength || len(details) > maxDetailsLength {
		return nil, domain.ErrInvalidCoupon
	}

	coupon := &domain.Coupon{
		Code:        code,
		Platform:    platform,
		SubmittedBy: submittedBy,
		Status:      domain.CouponStatusAvailable,
	}
	if details != "" {
		coupon.Details = &details
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.logger.Info("coupon submitted",
		zap.String("coupon_id", coupon.ID),
		zap.String("platform", coupon.Platform),
		zap.Int64("user_id", submittedBy),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCouponSubmitted,
		CouponID: coupon.ID,
		UserID:   submittedBy,
		Payload: events.CouponSubmittedPayload{
			Platform: coupon.Platform,
			Details:  details,
		},
	})
	return coupon, nil
}

// AvailablePlatforms returns platforms that currently have claimable coupons.
func (s *CouponService) AvailablePlatforms(ctx context.Context) ([]string, error) {
	return s.coupons.AvailablePlatforms(ctx)
}

// ListAvailableByPlatform returns the newest claimable coupons for a platform.
func (s *CouponService) ListAvailableByPlatform(ctx context.Context, platform string, limit int) ([]domain.Coupon, error) {
	return s.coupons.ListAvailableByPlatform(ctx, platform, limit)
}

// GetByID fetches a single coupon.
func (s *CouponService) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.coupons.GetByID(ctx, id)
}

// ListWithFilter returns coupons for the admin surface.
func (s *CouponService) ListWithFilter(ctx context.Context, filter repository.CouponFilter) ([]domain.Coupon, error) {
	return s.coupons.ListWithFilter(ctx, filter)
}

// PoolStats returns per-status coupon counts.
func (s *CouponService) PoolStats(ctx context.Context) (map[domain.CouponStatus]int64, error) {
	return s.coupons.CountByStatus(ctx)
}

func (s *CouponService) publishEvent(ctx context.Context, event events.Event) {
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
