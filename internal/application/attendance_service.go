package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/metrics"
)

// AttendanceService は出席セッションとチェックインのユースケースを編成する
type AttendanceService struct {
	txManager   transaction.Manager
	sessionRepo attendance.SessionRepository
	recordRepo  attendance.RecordRepository
	bookingRepo booking.Repository
	clock       clock.Clock
}

// NewAttendanceService は新しいAttendanceServiceを作成する
func NewAttendanceService(
	txm transaction.Manager,
	sr attendance.SessionRepository,
	rr attendance.RecordRepository,
	br booking.Repository,
	clk clock.Clock,
) *AttendanceService {
	return &AttendanceService{
		txManager:   txm,
		sessionRepo: sr,
		recordRepo:  rr,
		bookingRepo: br,
		clock:       clk,
	}
}

// CreateSessionInput はセッション作成の入力
type CreateSessionInput struct {
	Title           string
	Description     *string
	StartTime       time.Time
	EndTime         time.Time
	CheckInDeadline *time.Time
}

// CreateSession は出席セッションを作成しチェックイントークンを発行する
func (s *AttendanceService) CreateSession(ctx context.Context, input CreateSessionInput) (*attendance.Session, error) {
	session := attendance.NewSession(input.Title, input.Description, input.StartTime, input.EndTime, input.CheckInDeadline)
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CheckIn はトークンによるチェックインを処理する
// トークン不正・セッション時間外は拒否し、締切超過は遅刻として記録する
// 同時間帯に利用中の座席予約があれば出席レコードに紐付ける
func (s *AttendanceService) CheckIn(ctx context.Context, token, userID string) (*attendance.Record, error) {
	now := s.clock.Now()

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, attendance.ErrSessionNotFound) {
			s.countCheckIn("rejected")
			return nil, attendance.ErrInvalidToken
		}
		return nil, err
	}
	if !session.IsActive {
		s.countCheckIn("rejected")
		return nil, attendance.ErrInvalidToken
	}
	if !session.IsOngoing(now) {
		s.countCheckIn("rejected")
		return nil, attendance.ErrSessionClosed
	}

	status := session.StatusAt(now)
	record := attendance.NewCheckedIn(userID, session.ID, status, now, s.linkedBookingID(ctx, userID, now))

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 二重チェックインは (user, session) の一意制約が最終防衛線になる
	if err := s.recordRepo.Create(ctx, tx, record); err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			s.countCheckIn("rejected")
		}
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	s.countCheckIn(string(status))
	return record, nil
}

// linkedBookingID はチェックイン時刻に利用中の座席予約があればそのIDを返す
// 紐付けは付加情報であり、見つからなくてもチェックインは成立する
func (s *AttendanceService) linkedBookingID(ctx context.Context, userID string, at time.Time) *string {
	b, err := s.bookingRepo.GetActiveByUserAt(ctx, userID, at)
	if err != nil {
		return nil
	}
	return &b.ID
}

// CheckOut は出席レコードのチェックアウトを処理し滞在時間を確定する
func (s *AttendanceService) CheckOut(ctx context.Context, recordID string) (*attendance.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := record.CheckOut(s.clock.Now()); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.recordRepo.Update(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}
	return record, nil
}

// GetSession はIDからセッションを取得する
func (s *AttendanceService) GetSession(ctx context.Context, id string) (*attendance.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

// ListSessions はセッション一覧を取得する
func (s *AttendanceService) ListSessions(ctx context.Context, limit, offset int) ([]*attendance.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessionRepo.List(ctx, limit, offset)
}

// DeactivateSession はセッションを手動で無効化する
func (s *AttendanceService) DeactivateSession(ctx context.Context, id string) (*attendance.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Deactivate()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeactivateEndedSessions は終了済みの有効セッションを一括で無効化する
// バックグラウンドワーカーから定期的に呼ばれる
func (s *AttendanceService) DeactivateEndedSessions(ctx context.Context) (int, error) {
	return s.sessionRepo.DeactivateEnded(ctx, s.clock.Now())
}

// SessionStats はセッションの出席集計
type SessionStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
}

// ListSessionRecords はセッションの出席レコード一覧と集計を返す
func (s *AttendanceService) ListSessionRecords(ctx context.Context, sessionID string) ([]*attendance.Record, *SessionStats, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	records, err := s.recordRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	stats := &SessionStats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case attendance.RecordStatusPresent:
			stats.Present++
		case attendance.RecordStatusLate:
			stats.Late++
		case attendance.RecordStatusAbsent:
			stats.Absent++
		case attendance.RecordStatusExcused:
			stats.Excused++
		}
	}
	return records, stats, nil
}

func (s *AttendanceService) countCheckIn(status string) {
	if m := metrics.Get(); m != nil {
		m.CheckInsTotal.WithLabelValues(status).Inc()
	}
}
