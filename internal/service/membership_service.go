package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ChatMemberChecker answers whether a user belongs to the required channel.
// The Telegram transport implements it.
type ChatMemberChecker interface {
	IsChatMember(ctx context.Context, userID int64) (bool, error)
}

// VerdictCache stores positive membership verdicts for a while so repeated
// claim taps do not hammer the transport API.
type VerdictCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// MembershipService gates claim-like commands behind channel membership.
// Any failure is treated as "not a member".
type MembershipService struct {
	checker  ChatMemberChecker
	cache    VerdictCache
	cacheTTL time.Duration
	channel  string
	logger   *zap.Logger
	isMiss   func(error) bool
}

// MembershipDependencies bundles collaborators for the membership gate.
type MembershipDependencies struct {
	Checker  ChatMemberChecker
	Cache    VerdictCache
	CacheTTL time.Duration
	Channel  string
	Logger   *zap.Logger
	// IsCacheMiss distinguishes a miss from a cache failure.
	IsCacheMiss func(error) bool
}

// NewMembershipService constructs the gate.
func NewMembershipService(deps MembershipDependencies) *MembershipService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	isMiss := deps.IsCacheMiss
	if isMiss == nil {
		isMiss = func(error) bool { return false }
	}
	return &MembershipService{
		checker:  deps.Checker,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		channel:  deps.Channel,
		logger:   logger,
		isMiss:   isMiss,
	}
}

// RequiredChannel returns the channel users must join.
func (s *MembershipService) RequiredChannel() string {
	return s.channel
}

// IsMember reports whether the user belongs to the required channel,
// failing closed on any collaborator error.
func (s *MembershipService) IsMember(ctx context.Context, userID int64) bool {
	key := s.cacheKey(userID)

	if s.cache != nil && s.cacheTTL > 0 {
		val, err := s.cache.Get(ctx, key)
		if err == nil && val == "1" {
			return true
		}
		if err != nil && !s.isMiss(err) {
			s.logger.Warn("membership cache unavailable", zap.Error(err))
		}
	}

	member, err := s.checker.IsChatMember(ctx, userID)
	if err != nil {
		s.logger.Warn("membership check failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	if !member {
		return false
	}

	// only positive verdicts are cached; a user who joins must be able to
	// verify immediately
	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, "1", s.cacheTTL); err != nil {
			s.logger.Warn("membership cache write failed", zap.Error(err))
		}
	}
	return true
}

func (s *MembershipService) cacheKey(userID int64) string {
	return fmt.Sprintf("membership:%s:%d", s.channel, userID)
}
