package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/repository"
)

type mockCouponRepo struct {
	createFn           func(ctx context.Context, coupon *domain.Coupon) error
	getByIDFn          func(ctx context.Context, id string) (*domain.Coupon, error)
	claimFn            func(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error)
	countClaimsFn      func(ctx context.Context, userID int64, since time.Time) (int, error)
	platformsFn        func(ctx context.Context) ([]string, error)
	listByPlatformFn   func(ctx context.Context, platform string, limit int) ([]domain.Coupon, error)
	listWithFilterFn   func(ctx context.Context, filter repository.CouponFilter) ([]domain.Coupon, error)
	countByStatusFn    func(ctx context.Context) (map[domain.CouponStatus]int64, error)
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *domain.Coupon) error {
	if m.createFn != nil {
		return m.createFn(ctx, coupon)
	}
	coupon.ID = "generated"
	coupon.SubmittedAt = time.Now()
	return nil
}

func (m *mockCouponRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCouponRepo) Claim(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, id, userID, at)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCouponRepo) CountClaimsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	if m.countClaimsFn != nil {
		return m.countClaimsFn(ctx, userID, since)
	}
	return 0, nil
}

func (m *mockCouponRepo) AvailablePlatforms(ctx context.Context) ([]string, error) {
	if m.platformsFn != nil {
		return m.platformsFn(ctx)
	}
	return nil, nil
}

func (m *mockCouponRepo) ListAvailableByPlatform(ctx context.Context, platform string, limit int) ([]domain.Coupon, error) {
	if m.listByPlatformFn != nil {
		return m.listByPlatformFn(ctx, platform, limit)
	}
	return nil, nil
}

func (m *mockCouponRepo) ListWithFilter(ctx context.Context, filter repository.CouponFilter) ([]domain.Coupon, error) {
	if m.listWithFilterFn != nil {
		return m.listWithFilterFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockCouponRepo) CountByStatus(ctx context.Context) (map[domain.CouponStatus]int64, error) {
	if m.countByStatusFn != nil {
		return m.countByStatusFn(ctx)
	}
	return nil, nil
}

// claimPool emulates the store's conditional update semantics in memory.
type claimPool struct {
	mu      sync.Mutex
	coupons map[string]*domain.Coupon
	claims  map[int64]int
}

func newClaimPool(ids ...string) *claimPool {
	pool := &claimPool{
		coupons: make(map[string]*domain.Coupon),
		claims:  make(map[int64]int),
	}
	for _, id := range ids {
		pool.coupons[id] = &domain.Coupon{
			ID:       id,
			Code:     "CODE-" + id,
			Platform: "Canva",
			Status:   domain.CouponStatusAvailable,
		}
	}
	return pool
}

func (p *claimPool) claim(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	coupon, ok := p.coupons[id]
	if !ok || coupon.Status != domain.CouponStatusAvailable || coupon.ClaimedBy != nil {
		return nil, pgx.ErrNoRows
	}
	claimedAt := at
	coupon.Status = domain.CouponStatusClaimed
	coupon.ClaimedBy = &userID
	coupon.ClaimedAt = &claimedAt
	p.claims[userID]++
	result := *coupon
	return &result, nil
}

func (p *claimPool) countSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claims[userID], nil
}

func newClaimServiceForPool(pool *claimPool, limit int) *ClaimService {
	repo := &mockCouponRepo{
		claimFn:       pool.claim,
		countClaimsFn: pool.countSince,
	}
	return NewClaimService(ClaimDependencies{CouponRepo: repo, DailyLimit: limit})
}

func TestClaim_Success(t *testing.T) {
	pool := newClaimPool("c1")
	svc := newClaimServiceForPool(pool, 2)

	coupon, err := svc.Claim(context.Background(), "c1", 42)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if coupon.ClaimedBy == nil || *coupon.ClaimedBy != 42 {
		t.Fatalf("expected claimed_by 42, got %v", coupon.ClaimedBy)
	}
	if coupon.Status != domain.CouponStatusClaimed {
		t.Fatalf("expected CLAIMED status, got %s", coupon.Status)
	}
}

func TestClaim_NotAvailable(t *testing.T) {
	pool := newClaimPool("c1")
	svc := newClaimServiceForPool(pool, 2)

	if _, err := svc.Claim(context.Background(), "c1", 1); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	_, err := svc.Claim(context.Background(), "c1", 2)
	if !errors.Is(err, domain.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestClaim_MissingCoupon(t *testing.T) {
	pool := newClaimPool()
	svc := newClaimServiceForPool(pool, 2)

	_, err := svc.Claim(context.Background(), "missing", 1)
	if !errors.Is(err, domain.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestClaim_QuotaEnforcedSequentially(t *testing.T) {
	pool := newClaimPool("c1", "c2", "c3")
	svc := newClaimServiceForPool(pool, 2)

	if _, err := svc.Claim(context.Background(), "c1", 7); err != nil {
		t.Fatalf("claim 1: %v", err)
	}
	if _, err := svc.Claim(context.Background(), "c2", 7); err != nil {
		t.Fatalf("claim 2: %v", err)
	}

	_, err := svc.Claim(context.Background(), "c3", 7)
	if !errors.Is(err, domain.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	// no mutation happened for the rejected attempt
	if c := pool.coupons["c3"]; c.Status != domain.CouponStatusAvailable || c.ClaimedBy != nil {
		t.Fatalf("expected c3 untouched, got status=%s claimed_by=%v", c.Status, c.ClaimedBy)
	}
}

func TestClaim_QuotaCheckSkipsClaimCall(t *testing.T) {
	claimCalled := false
	repo := &mockCouponRepo{
		countClaimsFn: func(ctx context.Context, userID int64, since time.Time) (int, error) {
			return 2, nil
		},
		claimFn: func(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error) {
			claimCalled = true
			return nil, pgx.ErrNoRows
		},
	}
	svc := NewClaimService(ClaimDependencies{CouponRepo: repo, DailyLimit: 2})

	_, err := svc.Claim(context.Background(), "c1", 1)
	if !errors.Is(err, domain.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if claimCalled {
		t.Fatalf("claim must not be attempted once the quota is exhausted")
	}
}

func TestClaim_AtMostOneWinnerUnderContention(t *testing.T) {
	pool := newClaimPool("hot")
	svc := newClaimServiceForPool(pool, 1)

	const attempts = 24
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := []int64{}
	losers := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			coupon, err := svc.Claim(context.Background(), "hot", userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, *coupon.ClaimedBy)
			case errors.Is(err, domain.ErrNotAvailable):
				losers++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(winners))
	}
	if losers != attempts-1 {
		t.Fatalf("expected %d losers, got %d", attempts-1, losers)
	}
	final := pool.coupons["hot"]
	if final.ClaimedBy == nil || *final.ClaimedBy != winners[0] {
		t.Fatalf("final claimed_by %v does not match winner %d", final.ClaimedBy, winners[0])
	}
}

func TestClaim_ConcurrentSameUserRespectsQuota(t *testing.T) {
	pool := newClaimPool("c1", "c2", "c3", "c4")
	svc := newClaimServiceForPool(pool, 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		wg.Add(1)
		go func(couponID string) {
			defer wg.Done()
			if _, err := svc.Claim(context.Background(), couponID, 99); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("per-user serialization should cap successes at the quota; got %d", successes)
	}
}

func TestClaim_MonotonicStatus(t *testing.T) {
	pool := newClaimPool("c1")
	svc := newClaimServiceForPool(pool, 5)

	if _, err := svc.Claim(context.Background(), "c1", 1); err != nil {
		t.Fatalf("claim: %v", err)
	}
	// repeated attempts never revert the record
	for i := 0; i < 3; i++ {
		if _, err := svc.Claim(context.Background(), "c1", 2); !errors.Is(err, domain.ErrNotAvailable) {
			t.Fatalf("expected ErrNotAvailable, got %v", err)
		}
	}
	final := pool.coupons["c1"]
	if final.Status != domain.CouponStatusClaimed {
		t.Fatalf("status reverted to %s", final.Status)
	}
	if final.ClaimedBy == nil || *final.ClaimedBy != 1 {
		t.Fatalf("claimed_by changed to %v", final.ClaimedBy)
	}
}
