package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

type sessionRow struct {
	ID              string     `db:"id"`
	Title           string     `db:"title"`
	Description     *string    `db:"description"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         time.Time  `db:"end_time"`
	CheckInDeadline *time.Time `db:"check_in_deadline"`
	Token           string     `db:"token"`
	IsActive        bool       `db:"is_active"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (r *sessionRow) toEntity() *attendance.Session {
	return &attendance.Session{
		ID: r.ID, Title: r.Title, Description: r.Description,
		StartTime: r.StartTime, EndTime: r.EndTime, CheckInDeadline: r.CheckInDeadline,
		Token: r.Token, IsActive: r.IsActive, CreatedAt: r.CreatedAt,
	}
}

const sessionColumns = `id, title, description, start_time, end_time, check_in_deadline, token, is_active, created_at`

type AttendanceSessionRepository struct{ db *sqlx.DB }

func NewAttendanceSessionRepository(db *sqlx.DB) *AttendanceSessionRepository {
	return &AttendanceSessionRepository{db: db}
}

func (r *AttendanceSessionRepository) Create(ctx context.Context, s *attendance.Session) error {
	query := `INSERT INTO attendance_sessions (title, description, start_time, end_time, check_in_deadline, token, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		s.Title, s.Description, s.StartTime, s.EndTime, s.CheckInDeadline, s.Token, s.IsActive, s.CreatedAt,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("セッション作成に失敗: %w", err)
	}
	return nil
}

func (r *AttendanceSessionRepository) GetByID(ctx context.Context, id string) (*attendance.Session, error) {
	var row sessionRow
	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrSessionNotFound
		}
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AttendanceSessionRepository) GetByToken(ctx context.Context, token string) (*attendance.Session, error) {
	var row sessionRow
	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE token = $1`
	if err := r.db.GetContext(ctx, &row, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrSessionNotFound
		}
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AttendanceSessionRepository) List(ctx context.Context, limit, offset int) ([]*attendance.Session, error) {
	var rows []sessionRow
	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("セッション一覧取得に失敗: %w", err)
	}
	result := make([]*attendance.Session, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *AttendanceSessionRepository) Update(ctx context.Context, s *attendance.Session) error {
	query := `UPDATE attendance_sessions SET title = $1, description = $2, start_time = $3, end_time = $4, check_in_deadline = $5, is_active = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query, s.Title, s.Description, s.StartTime, s.EndTime, s.CheckInDeadline, s.IsActive, s.ID)
	if err != nil {
		return fmt.Errorf("セッション更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return attendance.ErrSessionNotFound
	}
	return nil
}

func (r *AttendanceSessionRepository) DeactivateEnded(ctx context.Context, now time.Time) (int, error) {
	query := `UPDATE attendance_sessions SET is_active = FALSE WHERE is_active = TRUE AND end_time < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("セッション無効化に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

var _ attendance.SessionRepository = (*AttendanceSessionRepository)(nil)

type recordRow struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	SessionID       string     `db:"session_id"`
	Status          string     `db:"status"`
	CheckInTime     *time.Time `db:"check_in_time"`
	CheckOutTime    *time.Time `db:"check_out_time"`
	DurationMinutes int        `db:"duration_minutes"`
	BookingID       *string    `db:"booking_id"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r *recordRow) toEntity() *attendance.Record {
	return &attendance.Record{
		ID: r.ID, UserID: r.UserID, SessionID: r.SessionID,
		Status: attendance.RecordStatus(r.Status),
		CheckInTime: r.CheckInTime, CheckOutTime: r.CheckOutTime,
		DurationMinutes: r.DurationMinutes, BookingID: r.BookingID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const recordColumns = `id, user_id, session_id, status, check_in_time, check_out_time, duration_minutes, booking_id, created_at, updated_at`

type AttendanceRecordRepository struct{ db *sqlx.DB }

func NewAttendanceRecordRepository(db *sqlx.DB) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: db}
}

// Create は出席レコードを挿入する
// (user_id, session_id) の一意制約により同時チェックインでも1件しか成功しない
func (r *AttendanceRecordRepository) Create(ctx context.Context, tx transaction.Tx, rec *attendance.Record) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO attendance_records (user_id, session_id, status, check_in_time, check_out_time, duration_minutes, booking_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		rec.UserID, rec.SessionID, string(rec.Status), rec.CheckInTime, rec.CheckOutTime,
		rec.DurationMinutes, rec.BookingID, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return attendance.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("出席レコード作成に失敗: %w", err)
	}
	return nil
}

func (r *AttendanceRecordRepository) GetByID(ctx context.Context, id string) (*attendance.Record, error) {
	var row recordRow
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("出席レコード取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AttendanceRecordRepository) GetByUserAndSession(ctx context.Context, userID, sessionID string) (*attendance.Record, error) {
	var row recordRow
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE user_id = $1 AND session_id = $2`
	if err := r.db.GetContext(ctx, &row, query, userID, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("出席レコード取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AttendanceRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]*attendance.Record, error) {
	var rows []recordRow
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE session_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("出席レコード一覧取得に失敗: %w", err)
	}
	result := make([]*attendance.Record, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *AttendanceRecordRepository) Update(ctx context.Context, tx transaction.Tx, rec *attendance.Record) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE attendance_records SET status = $1, check_out_time = $2, duration_minutes = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlxTx.ExecContext(ctx, query, string(rec.Status), rec.CheckOutTime, rec.DurationMinutes, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("出席レコード更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

var _ attendance.RecordRepository = (*AttendanceRecordRepository)(nil)
