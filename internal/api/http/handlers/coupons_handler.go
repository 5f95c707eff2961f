package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/coupon-saver/internal/api/dto"
	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/observability"
	"github.com/spec-kit/coupon-saver/internal/repository"
	"github.com/spec-kit/coupon-saver/internal/service"
	"github.com/spec-kit/coupon-saver/pkg/util"
)

// CouponsHandler exposes the coupon pool to operators.
type CouponsHandler struct {
	coupons *service.CouponService
	metrics *observability.Metrics
}

// NewCouponsHandler returns a new handler instance.
func NewCouponsHandler(coupons *service.CouponService, metrics *observability.Metrics) *CouponsHandler {
	return &CouponsHandler{coupons: coupons, metrics: metrics}
}

// List returns coupons matching the query filters.
func (h *CouponsHandler) List(c *fiber.Ctx) error {
	filter := repository.CouponFilter{
		Limit:  c.QueryInt("page_size", 20),
		Offset: (c.QueryInt("page", 1) - 1) * c.QueryInt("page_size", 20),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.CouponStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case domain.CouponStatusAvailable, domain.CouponStatusClaimed,
				domain.CouponStatusExpired, domain.CouponStatusRemoved:
				filter.Statuses = append(filter.Statuses, status)
			default:
				return util.NewValidationError("unknown status", map[string]any{"status": part})
			}
		}
	}
	if platform := strings.TrimSpace(c.Query("platform")); platform != "" {
		filter.Platform = &platform
	}
	if raw := strings.TrimSpace(c.Query("submitted_by")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return util.NewValidationError("invalid submitted_by", map[string]any{"submitted_by": raw})
		}
		filter.SubmittedBy = &id
	}
	if raw := strings.TrimSpace(c.Query("claimed_by")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return util.NewValidationError("invalid claimed_by", map[string]any{"claimed_by": raw})
		}
		filter.ClaimedBy = &id
	}

	coupons, err := h.coupons.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return util.MapError(err)
	}

	items := make([]dto.CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		items = append(items, dto.FromCoupon(coupon))
	}
	return c.JSON(fiber.Map{"items": items})
}

// Get returns a single coupon by id.
func (h *CouponsHandler) Get(c *fiber.Ctx) error {
	coupon, err := h.coupons.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrNotFound) {
			return util.NewNotFound("coupon", map[string]any{"id": c.Params("id")})
		}
		return util.MapError(err)
	}
	return c.JSON(dto.FromCoupon(*coupon))
}

// Stats reports pool counts and bot counters.
func (h *CouponsHandler) Stats(c *fiber.Ctx) error {
	pool, err := h.coupons.PoolStats(c.UserContext())
	if err != nil {
		return util.MapError(err)
	}
	updates, claims := h.metrics.Snapshot()
	return c.JSON(dto.StatsResponse{Pool: pool, Updates: updates, Claims: claims})
}
