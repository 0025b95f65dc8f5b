package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID            string          `db:"id"`
	Reference     string          `db:"reference"`
	UserID        *string         `db:"user_id"`
	SeatID        string          `db:"seat_id"`
	StartTime     time.Time       `db:"start_time"`
	EndTime       time.Time       `db:"end_time"`
	Plan          string          `db:"plan"`
	DurationHours decimal.Decimal `db:"duration_hours"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Status        string          `db:"status"`
	PaymentID     *string         `db:"payment_id"`
	Purpose       *string         `db:"purpose"`
	CheckedInAt   *time.Time      `db:"checked_in_at"`
	CheckedOutAt  *time.Time      `db:"checked_out_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, Reference: r.Reference, UserID: r.UserID, SeatID: r.SeatID,
		StartTime: r.StartTime, EndTime: r.EndTime, Plan: booking.Plan(r.Plan),
		DurationHours: r.DurationHours, TotalAmount: r.TotalAmount,
		Status: booking.Status(r.Status), PaymentID: r.PaymentID, Purpose: r.Purpose,
		CheckedInAt: r.CheckedInAt, CheckedOutAt: r.CheckedOutAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, reference, user_id, seat_id, start_time, end_time, plan, duration_hours, total_amount, status, payment_id, purpose, checked_in_at, checked_out_at, created_at, updated_at`

// liveStatuses はSQLのIN句に渡すライブ状態の配列
func liveStatuses() []string {
	statuses := make([]string, len(booking.LiveStatuses))
	for i, s := range booking.LiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO bookings (reference, user_id, seat_id, start_time, end_time, plan, duration_hours, total_amount, status, payment_id, purpose, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.Reference, b.UserID, b.SeatID, b.StartTime, b.EndTime, string(b.Plan),
		b.DurationHours, b.TotalAmount, string(b.Status), b.PaymentID, b.Purpose,
		b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return booking.ErrReferenceAlreadyExists
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, ref string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	if err := r.db.GetContext(ctx, &row, query, ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) GetByPaymentID(ctx context.Context, paymentID string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_id = $1`
	if err := r.db.GetContext(ctx, &row, query, paymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetLiveOverlapping は半開区間 [start, end) と重なるライブ状態の予約を取得する
// 判定は existing.start < end AND existing.end > start
func (r *BookingRepository) GetLiveOverlapping(ctx context.Context, seatID string, start, end time.Time, excludeID string) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE seat_id = $1 AND status = ANY($2) AND start_time < $3 AND end_time > $4`
	args := []interface{}{seatID, pq.Array(liveStatuses()), end, start}
	if excludeID != "" {
		query += ` AND id <> $5`
		args = append(args, excludeID)
	}
	query += ` ORDER BY start_time`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("競合予約取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) CountLive(ctx context.Context, seatID string, excludeID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE seat_id = $1 AND status = ANY($2)`
	args := []interface{}{seatID, pq.Array(liveStatuses())}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("ライブ予約数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE bookings SET status = $1, duration_hours = $2, payment_id = $3, checked_in_at = $4, checked_out_at = $5, updated_at = $6 WHERE id = $7`
	result, err := sqlxTx.ExecContext(ctx, query,
		string(b.Status), b.DurationHours, b.PaymentID, b.CheckedInAt, b.CheckedOutAt, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) GetOverdueConfirmed(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'confirmed' AND end_time < $1`
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("期限超過予約取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) GetActiveByUserAt(ctx context.Context, userID string, at time.Time) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1 AND status = 'active' AND start_time <= $2 AND end_time > $2
		ORDER BY start_time LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, userID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("利用中予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func toEntities(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*BookingRepository)(nil)
