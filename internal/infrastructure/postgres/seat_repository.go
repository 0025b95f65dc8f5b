package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

type seatRow struct {
	ID             string    `db:"id"`
	Number         int       `db:"number"`
	Status         string    `db:"status"`
	HasPowerOutlet bool      `db:"has_power_outlet"`
	IsAccessible   bool      `db:"is_accessible"`
	PhotoURL       *string   `db:"photo_url"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, Number: r.Number, Status: seat.Status(r.Status),
		HasPowerOutlet: r.HasPowerOutlet, IsAccessible: r.IsAccessible,
		PhotoURL: r.PhotoURL, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const seatColumns = `id, number, status, has_power_outlet, is_accessible, photo_url, created_at, updated_at`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	query := `INSERT INTO seats (number, status, has_power_outlet, is_accessible, photo_url, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, s.Number, string(s.Status), s.HasPowerOutlet, s.IsAccessible, s.PhotoURL, s.CreatedAt, s.UpdatedAt).Scan(&s.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return seat.ErrSeatNumberAlreadyUsed
		}
		return fmt.Errorf("座席作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// マルチバリューINSERTを構築
	query := `INSERT INTO seats (number, status, has_power_outlet, is_accessible, photo_url, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*7)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, s.Number, string(s.Status), s.HasPowerOutlet, s.IsAccessible, s.PhotoURL, s.CreatedAt, s.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return seat.ErrSeatNumberAlreadyUsed
		}
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByNumber(ctx context.Context, number int) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE number = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats ORDER BY number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) ListByStatus(ctx context.Context, status seat.Status) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE status = $1 ORDER BY number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, string(status)); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, seatID string, status seat.Status) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, string(status), seatID)
	if err != nil {
		return fmt.Errorf("座席状態更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) CountByStatus(ctx context.Context, status seat.Status) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE status = $1`, string(status))
	return count, err
}

var _ seat.Repository = (*SeatRepository)(nil)
