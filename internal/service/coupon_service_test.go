package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/events"
)

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func TestSaveCoupon_TrimsAndPersists(t *testing.T) {
	var created *domain.Coupon
	repo := &mockCouponRepo{
		createFn: func(ctx context.Context, coupon *domain.Coupon) error {
			coupon.ID = "id-1"
			created = coupon
			return nil
		},
	}
	dispatcher := &capturingDispatcher{}
	svc := NewCouponService(CouponDependencies{CouponRepo: repo, Dispatcher: dispatcher})

	coupon, err := svc.SaveCoupon(context.Background(), 10, "  SAVE20  ", " Canva ", "  20% off  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatalf("repository was not called")
	}
	if coupon.Code != "SAVE20" || coupon.Platform != "Canva" {
		t.Fatalf("fields not trimmed: %q %q", coupon.Code, coupon.Platform)
	}
	if coupon.Details == nil || *coupon.Details != "20% off" {
		t.Fatalf("details not trimmed: %v", coupon.Details)
	}
	if coupon.Status != domain.CouponStatusAvailable {
		t.Fatalf("new coupon must be AVAILABLE, got %s", coupon.Status)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != events.EventCouponSubmitted {
		t.Fatalf("expected one submitted event, got %+v", dispatcher.events)
	}
}

func TestSaveCoupon_EmptyDetailsStaysNil(t *testing.T) {
	repo := &mockCouponRepo{
		createFn: func(ctx context.Context, coupon *domain.Coupon) error { return nil },
	}
	svc := NewCouponService(CouponDependencies{CouponRepo: repo})

	coupon, err := svc.SaveCoupon(context.Background(), 10, "SAVE20", "Canva", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coupon.Details != nil {
		t.Fatalf("expected nil details, got %q", *coupon.Details)
	}
}

func TestSaveCoupon_Validation(t *testing.T) {
	repo := &mockCouponRepo{
		createFn: func(ctx context.Context, coupon *domain.Coupon) error {
			t.Fatalf("invalid coupon must not reach the repository")
			return nil
		},
	}
	svc := NewCouponService(CouponDependencies{CouponRepo: repo})

	cases := []struct {
		name     string
		code     string
		platform string
		details  string
	}{
		{"empty code", "", "Canva", ""},
		{"blank code", "   ", "Canva", ""},
		{"empty platform", "SAVE20", "", ""},
		{"code too long", strings.Repeat("A", 121), "Canva", ""},
		{"platform too long", "SAVE20", strings.Repeat("P", 81), ""},
		{"details too long", "SAVE20", "Canva", strings.Repeat("x", 501)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveCoupon(context.Background(), 10, tc.code, tc.platform, tc.details)
			if !errors.Is(err, domain.ErrInvalidCoupon) {
				t.Fatalf("expected ErrInvalidCoupon, got %v", err)
			}
		})
	}
}

func TestSaveCoupon_RepositoryFailure(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &mockCouponRepo{
		createFn: func(ctx context.Context, coupon *domain.Coupon) error { return boom },
	}
	dispatcher := &capturingDispatcher{}
	svc := NewCouponService(CouponDependencies{CouponRepo: repo, Dispatcher: dispatcher})

	_, err := svc.SaveCoupon(context.Background(), 10, "SAVE20", "Canva", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
	if len(dispatcher.events) != 0 {
		t.Fatalf("no event should fire on a failed save")
	}
}

func TestGetByID_RejectsMalformedID(t *testing.T) {
	repo := &mockCouponRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Coupon, error) {
			t.Fatalf("repository must not see a malformed id")
			return nil, nil
		},
	}
	svc := NewCouponService(CouponDependencies{CouponRepo: repo})

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
