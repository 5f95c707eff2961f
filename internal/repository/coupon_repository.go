package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coupon-saver/internal/domain"
)

// CouponFilter captures admin search parameters.
type CouponFilter struct {
	Statuses    []domain.CouponStatus
	Platform    *string
	SubmittedBy *int64
	ClaimedBy   *int64
	Limit       int
	Offset      int
}

// CouponRepository encapsulates coupon persistence.
type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	// Claim transitions an available unclaimed coupon to CLAIMED in a single
	// conditional update. It returns pgx.ErrNoRows when the coupon is missing
	// or was already taken.
	Claim(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error)
	CountClaimsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	AvailablePlatforms(ctx context.Context) ([]string, error)
	ListAvailableByPlatform(ctx context.Context, platform string, limit int) ([]domain.Coupon, error)
	ListWithFilter(ctx context.Context, filter CouponFilter) ([]domain.Coupon, error)
	CountByStatus(ctx context.Context) (map[domain.CouponStatus]int64, error)
}

type couponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository instantiates repository.
func NewCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &couponRepository{pool: pool}
}

const couponColumns = `id, code, platform, details, submitted_by, submitted_at, status, claimed_by, claimed_at`

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	const query = `
        INSERT INTO coupons (code, platform, details, submitted_by, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, query,
		coupon.Code,
		coupon.Platform,
		coupon.Details,
		coupon.SubmittedBy,
		coupon.Status,
	).Scan(&coupon.ID, &coupon.SubmittedAt)
}

func (r *couponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *couponRepository) Claim(ctx context.Context, id string, userID int64, at time.Time) (*domain.Coupon, error) {
	query := `
        UPDATE coupons SET status=$1, claimed_by=$2, claimed_at=$3
        WHERE id=$4 AND status=$5 AND claimed_by IS NULL
        RETURNING ` + couponColumns
	return r.fetchSingle(ctx, query,
		domain.CouponStatusClaimed, userID, at, id, domain.CouponStatusAvailable)
}

func (r *couponRepository) CountClaimsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM coupons WHERE claimed_by=$1 AND claimed_at >= $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *couponRepository) AvailablePlatforms(ctx context.Context) ([]string, error) {
	const query = `
        SELECT DISTINCT platform FROM coupons
        WHERE status=$1 AND claimed_by IS NULL
        ORDER BY platform`
	rows, err := r.pool.Query(ctx, query, domain.CouponStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []string
	for rows.Next() {
		var platform string
		if err := rows.Scan(&platform); err != nil {
			return nil, err
		}
		platforms = append(platforms, platform)
	}
	return platforms, rows.Err()
}

func (r *couponRepository) ListAvailableByPlatform(ctx context.Context, platform string, limit int) ([]domain.Coupon, error) {
	query := `
        SELECT ` + couponColumns + ` FROM coupons
        WHERE status=$1 AND claimed_by IS NULL AND LOWER(platform)=LOWER($2)
        ORDER BY submitted_at DESC LIMIT $3`
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, query, domain.CouponStatusAvailable, platform, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCoupons(rows)
}

func (r *couponRepository) ListWithFilter(ctx context.Context, filter CouponFilter) ([]domain.Coupon, error) {
	base := `SELECT ` + couponColumns + ` FROM coupons`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Platform != nil && strings.TrimSpace(*filter.Platform) != "" {
		args = append(args, strings.TrimSpace(*filter.Platform))
		clauses = append(clauses, fmt.Sprintf("LOWER(platform)=LOWER($%d)", len(args)))
	}
	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.ClaimedBy != nil {
		args = append(args, *filter.ClaimedBy)
		clauses = append(clauses, fmt.Sprintf("claimed_by=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY submitted_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCoupons(rows)
}

func (r *couponRepository) CountByStatus(ctx context.Context) (map[domain.CouponStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM coupons GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.CouponStatus]int64)
	for rows.Next() {
		var status domain.CouponStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *couponRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Coupon, error) {
	var coupon domain.Coupon
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Platform,
		&coupon.Details,
		&coupon.SubmittedBy,
		&coupon.SubmittedAt,
		&coupon.Status,
		&coupon.ClaimedBy,
		&coupon.ClaimedAt,
	); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func scanCoupons(rows pgx.Rows) ([]domain.Coupon, error) {
	var result []domain.Coupon
	for rows.Next() {
		var coupon domain.Coupon
		if err := rows.Scan(
			&coupon.ID,
			&coupon.Code,
			&coupon.Platform,
			&coupon.Details,
			&coupon.SubmittedBy,
			&coupon.SubmittedAt,
			&coupon.Status,
			&coupon.ClaimedBy,
			&coupon.ClaimedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, coupon)
	}
	return result, rows.Err()
}
