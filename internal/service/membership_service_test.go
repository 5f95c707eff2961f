package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockChecker struct {
	isMemberFn func(ctx context.Context, userID int64) (bool, error)
	calls      int
}

func (m *mockChecker) IsChatMember(ctx context.Context, userID int64) (bool, error) {
	m.calls++
	return m.isMemberFn(ctx, userID)
}

var errCacheMiss = errors.New("cache miss")

type mockVerdictCache struct {
	entries map[string]string
	getErr  error
	setErr  error
}

func newMockVerdictCache() *mockVerdictCache {
	return &mockVerdictCache{entries: make(map[string]string)}
}

func (c *mockVerdictCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	val, ok := c.entries[key]
	if !ok {
		return "", errCacheMiss
	}
	return val, nil
}

func (c *mockVerdictCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func newMembershipForTest(checker *mockChecker, cache *mockVerdictCache) *MembershipService {
	deps := MembershipDependencies{
		Checker:     checker,
		Channel:     "@coupons",
		IsCacheMiss: func(err error) bool { return errors.Is(err, errCacheMiss) },
	}
	if cache != nil {
		deps.Cache = cache
		deps.CacheTTL = time.Minute
	}
	return NewMembershipService(deps)
}

func TestIsMember_FailsClosedOnCheckerError(t *testing.T) {
	checker := &mockChecker{
		isMemberFn: func(ctx context.Context, userID int64) (bool, error) {
			return false, errors.New("telegram unreachable")
		},
	}
	svc := newMembershipForTest(checker, nil)

	if svc.IsMember(context.Background(), 1) {
		t.Fatalf("checker failure must deny membership")
	}
}

func TestIsMember_CachesPositiveVerdict(t *testing.T) {
	checker := &mockChecker{
		isMemberFn: func(ctx context.Context, userID int64) (bool, error) {
			return true, nil
		},
	}
	cache := newMockVerdictCache()
	svc := newMembershipForTest(checker, cache)

	if !svc.IsMember(context.Background(), 42) {
		t.Fatalf("expected member")
	}
	if !svc.IsMember(context.Background(), 42) {
		t.Fatalf("expected member on second call")
	}
	if checker.calls != 1 {
		t.Fatalf("second call should be served from cache, checker called %d times", checker.calls)
	}
}

func TestIsMember_NegativeVerdictNotCached(t *testing.T) {
	member := false
	checker := &mockChecker{
		isMemberFn: func(ctx context.Context, userID int64) (bool, error) {
			return member, nil
		},
	}
	cache := newMockVerdictCache()
	svc := newMembershipForTest(checker, cache)

	if svc.IsMember(context.Background(), 42) {
		t.Fatalf("expected non-member")
	}
	if len(cache.entries) != 0 {
		t.Fatalf("negative verdicts must not be cached")
	}

	// the user joins; the next check must see it immediately
	member = true
	if !svc.IsMember(context.Background(), 42) {
		t.Fatalf("expected member after joining")
	}
}

func TestIsMember_CacheFailureStillChecks(t *testing.T) {
	checker := &mockChecker{
		isMemberFn: func(ctx context.Context, userID int64) (bool, error) {
			return true, nil
		},
	}
	cache := newMockVerdictCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := newMembershipForTest(checker, cache)

	if !svc.IsMember(context.Background(), 42) {
		t.Fatalf("a broken cache must not deny a real member")
	}
	if checker.calls != 1 {
		t.Fatalf("expected one checker call, got %d", checker.calls)
	}
}
