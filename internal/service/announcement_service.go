package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/coupon-saver/internal/events"
)

// Announcer posts a message to the community channel. The Telegram
// transport implements it.
type Announcer interface {
	Announce(text string) error
}

// AnnouncementService reacts to domain events: it logs them and, when
// enabled, announces fresh coupons to the channel. The coupon code itself
// is never announced.
type AnnouncementService struct {
	dispatcher events.Dispatcher
	announcer  Announcer
	logger     *zap.Logger
	enabled    bool
}

// NewAnnouncementService creates the service.
func NewAnnouncementService(dispatcher events.Dispatcher, announcer Announcer, logger *zap.Logger, enabled bool) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		dispatcher: dispatcher,
		announcer:  announcer,
		logger:     logger,
		enabled:    enabled,
	}
}

// RegisterHandlers subscribes to events.
func (a *AnnouncementService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventCouponSubmitted, a.handleCouponSubmitted)
	a.dispatcher.Subscribe(events.EventCouponClaimed, a.handleCouponClaimed)
}

func (a *AnnouncementService) handleCouponSubmitted(ctx context.Context, event events.Event) error {
	a.logger.Info("CouponSubmitted",
		zap.String("coupon_id", event.CouponID),
		zap.Any("payload", event.Payload),
	)

	if !a.enabled || a.announcer == nil {
		return nil
	}
	payload, ok := event.Payload.(events.CouponSubmittedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("🎁 A new %s coupon just landed in the pool. First come, first served!", payload.Platform)
	if err := a.announcer.Announce(text); err != nil {
		a.logger.Warn("announcement failed", zap.Error(err))
	}
	return nil
}

func (a *AnnouncementService) handleCouponClaimed(ctx context.Context, event events.Event) error {
	a.logger.Info("CouponClaimed",
		zap.String("coupon_id", event.CouponID),
		zap.Int64("user_id", event.UserID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
