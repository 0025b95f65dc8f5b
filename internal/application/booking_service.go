package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-library-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/seatlock"
)

// BookingPolicy は予約作成時の方針値を保持する
type BookingPolicy struct {
	Prices booking.PriceTable
	// GraceWindow は開始時刻の過去方向への許容幅
	// クライアントとサーバーの時計ずれを吸収するための方針値（既定1分）
	GraceWindow time.Duration
}

// DefaultBookingPolicy は既定の方針を返す
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		Prices:      booking.DefaultPriceTable(),
		GraceWindow: 1 * time.Minute,
	}
}

// BookingService は座席予約のユースケースを編成する
// 空き確認と予約書き込みは座席単位のロックとトランザクションの内側で
// 一体として実行され、同一座席への並行予約は直列化される
type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	paymentRepo payment.Repository
	checker     *AvailabilityChecker
	locker      seatlock.Locker
	cache       *redisinfra.AvailabilityCache // nil許容
	clock       clock.Clock
	policy      BookingPolicy
}

// NewBookingService は新しいBookingServiceを作成する
func NewBookingService(
	txm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	pr payment.Repository,
	locker seatlock.Locker,
	cache *redisinfra.AvailabilityCache,
	clk clock.Clock,
	policy BookingPolicy,
) *BookingService {
	return &BookingService{
		txManager:   txm,
		bookingRepo: br,
		seatRepo:    sr,
		paymentRepo: pr,
		checker:     NewAvailabilityChecker(br),
		locker:      locker,
		cache:       cache,
		clock:       clk,
		policy:      policy,
	}
}

// CreateBookingInput は予約作成の入力
type CreateBookingInput struct {
	UserID    *string // 匿名予約を許容するためnull許容
	SeatID    string
	StartTime time.Time
	EndTime   time.Time
	Plan      booking.Plan
	PaymentID *string // 既存の審査待ち支払を紐付ける
	ProofRef  *string // 支払証憑のみ提出された場合、審査待ち支払を合成する
	Purpose   *string
}

// CreateBooking は新しい予約を作成する
// 座席ロック取得 → 空き確認 → 金額算出 → 予約永続化をアトミックに実行する
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	now := s.clock.Now()

	if !input.StartTime.Before(input.EndTime) {
		s.countBooking("validation")
		return nil, &booking.ValidationError{Field: "start_time", Reason: "開始時刻は終了時刻より前である必要があります"}
	}
	if input.StartTime.Before(now.Add(-s.policy.GraceWindow)) {
		s.countBooking("validation")
		return nil, booking.ErrStartTimeTooOld
	}

	se, err := s.seatRepo.GetByID(ctx, input.SeatID)
	if err != nil {
		return nil, err
	}
	if !se.IsBookable() {
		s.countBooking("validation")
		return nil, seat.ErrSeatNotBookable
	}

	// 座席単位の排他。ここから先は同一座席への並行予約が割り込まない
	lock, err := s.acquireSeatLock(ctx, se.ID)
	if err != nil {
		s.countBooking("lock_failed")
		return nil, err
	}
	defer lock.Release(ctx)

	conflicts, err := s.checker.Conflicts(ctx, se.ID, input.StartTime, input.EndTime, "")
	if err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("空き確認に失敗: %w", err)
	}
	if len(conflicts) > 0 {
		s.countBooking("conflict")
		refs := make([]string, len(conflicts))
		for i, c := range conflicts {
			refs[i] = c.Reference
		}
		return nil, &booking.SeatUnavailableError{SeatID: se.ID, ConflictRefs: refs}
	}

	// 最初のライブ予約かどうかでキャッシュ状態の更新要否を決める
	liveCount, err := s.bookingRepo.CountLive(ctx, se.ID, "")
	if err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("ライブ予約数取得に失敗: %w", err)
	}

	amount := s.policy.Prices.Amount(input.Plan, booking.WindowHours(input.StartTime, input.EndTime))
	b := booking.NewBooking(input.UserID, se.ID, input.StartTime, input.EndTime, input.Plan, amount)
	b.Purpose = input.Purpose
	if err := b.Validate(); err != nil {
		s.countBooking("validation")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.attachPayment(ctx, tx, b, input); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.countBooking("error")
		return nil, err
	}
	if liveCount == 0 {
		if err := s.seatRepo.UpdateStatus(ctx, tx, se.ID, seat.StatusOccupied); err != nil {
			s.countBooking("error")
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx)
	s.countBooking("success")
	s.trackTransition("", b.Status)
	return b, nil
}

// attachPayment は支払の紐付けルールを適用する
// 既存支払の指定時はそれが審査待ちであることを要求し、
// 証憑のみ提出された場合は審査待ち支払を合成する（金額は審査者が後から記入）
func (s *BookingService) attachPayment(ctx context.Context, tx transaction.Tx, b *booking.Booking, input CreateBookingInput) error {
	switch {
	case input.PaymentID != nil:
		p, err := s.paymentRepo.GetByID(ctx, *input.PaymentID)
		if err != nil {
			return err
		}
		if !p.IsPending() {
			return payment.ErrPaymentNotPending
		}
		b.AttachPayment(p.ID)
	case input.ProofRef != nil:
		plan := string(b.Plan)
		p := payment.NewPending(input.ProofRef, &plan)
		if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		b.AttachPayment(p.ID)
	}
	return nil
}

// CancelBookingInput は予約キャンセルの入力
type CancelBookingInput struct {
	BookingID   string
	RequestedBy *string
	IsAdmin     bool
}

// CancelBooking は予約をキャンセルし、座席のキャッシュ状態を再導出する
// 他のライブ予約が残っていなければ座席をavailableに戻す
func (s *BookingService) CancelBooking(ctx context.Context, input CancelBookingInput) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != nil && !input.IsAdmin {
		if input.RequestedBy == nil || *input.RequestedBy != *b.UserID {
			return nil, booking.ErrNotBookingOwner
		}
	}

	lock, err := s.acquireSeatLock(ctx, b.SeatID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	from := b.Status
	if err := b.Cancel(); err != nil {
		return nil, err
	}

	if err := s.updateAndRederiveSeat(ctx, b); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.trackTransition(from, b.Status)
	return b, nil
}

// ConfirmBooking は審査待ちの予約を確定する（管理者承認または支払検証による）
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	from := b.Status
	if err := b.Confirm(); err != nil {
		return nil, err
	}
	if err := s.updateInTx(ctx, b); err != nil {
		return nil, err
	}
	s.trackTransition(from, b.Status)
	return b, nil
}

// CheckInBooking は予約をチェックインして利用中にする
func (s *BookingService) CheckInBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	from := b.Status
	if err := b.Activate(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.updateInTx(ctx, b); err != nil {
		return nil, err
	}
	s.trackTransition(from, b.Status)
	return b, nil
}

// CheckOutBooking は予約をチェックアウトして完了し、座席状態を再導出する
func (s *BookingService) CheckOutBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lock, err := s.acquireSeatLock(ctx, b.SeatID)
	if err != nil {
		return nil, err
	}
	defer lock.Release(ctx)

	from := b.Status
	if err := b.Complete(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.updateAndRederiveSeat(ctx, b); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	s.trackTransition(from, b.Status)
	return b, nil
}

// MarkOverdueNoShows はチェックインされないまま終了した確定予約を不参加にする
// バックグラウンドワーカーから定期的に呼ばれる
func (s *BookingService) MarkOverdueNoShows(ctx context.Context) (int, error) {
	overdue, err := s.bookingRepo.GetOverdueConfirmed(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("期限超過予約取得に失敗: %w", err)
	}

	count := 0
	for _, b := range overdue {
		if err := s.markNoShow(ctx, b); err != nil {
			// 1件の失敗で全体を止めない
			continue
		}
		count++
	}
	return count, nil
}

func (s *BookingService) markNoShow(ctx context.Context, b *booking.Booking) error {
	lock, err := s.acquireSeatLock(ctx, b.SeatID)
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	from := b.Status
	if err := b.MarkNoShow(); err != nil {
		return err
	}
	if err := s.updateAndRederiveSeat(ctx, b); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.trackTransition(from, b.Status)
	return nil
}

// IsSeatAvailable は参考値としての空き判定を返す（非トランザクション）
// 正式な判定は予約作成時にロックの内側で改めて行われる
func (s *BookingService) IsSeatAvailable(ctx context.Context, seatID string, start, end time.Time) (bool, error) {
	return s.checker.IsAvailable(ctx, seatID, start, end, "")
}

// GetBooking はIDから予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// GetBookingByReference は参照コードから予約を取得する
func (s *BookingService) GetBookingByReference(ctx context.Context, ref string) (*booking.Booking, error) {
	return s.bookingRepo.GetByReference(ctx, ref)
}

// GetUserBookings はユーザーの予約履歴を取得する
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// acquireSeatLock は座席ロックを取得し、所要時間をメトリクスに記録する
func (s *BookingService) acquireSeatLock(ctx context.Context, seatID string) (seatlock.Lock, error) {
	start := time.Now()
	lock, err := s.locker.Acquire(ctx, seatID)
	status := "success"
	if err != nil {
		status = "failed"
	}
	if m := metrics.Get(); m != nil {
		m.SeatLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, seatlock.ErrNotAcquired) {
			return nil, fmt.Errorf("座席が他のユーザーによって処理中です: %w", err)
		}
		return nil, fmt.Errorf("座席ロック取得に失敗: %w", err)
	}
	return lock, nil
}

// updateInTx は予約更新のみをトランザクションで実行する
func (s *BookingService) updateInTx(ctx context.Context, b *booking.Booking) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return err
	}
	return commit(tx)
}

// updateAndRederiveSeat は予約更新と座席キャッシュ状態の再導出を
// 1つのトランザクションで実行する
func (s *BookingService) updateAndRederiveSeat(ctx context.Context, b *booking.Booking) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return err
	}

	remaining, err := s.bookingRepo.CountLive(ctx, b.SeatID, b.ID)
	if err != nil {
		return fmt.Errorf("ライブ予約数取得に失敗: %w", err)
	}
	if remaining == 0 {
		if err := s.seatRepo.UpdateStatus(ctx, tx, b.SeatID, seat.StatusAvailable); err != nil {
			return err
		}
	}
	return commit(tx)
}

func commit(tx transaction.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (s *BookingService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		// キャッシュはあくまで参考値なので失敗しても処理は続行する
		_ = s.cache.Invalidate(ctx)
	}
}

func (s *BookingService) countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

// trackTransition はライブ予約数ゲージを状態遷移に合わせて増減する
func (s *BookingService) trackTransition(from, to booking.Status) {
	m := metrics.Get()
	if m == nil {
		return
	}
	if from != "" && from.IsLive() {
		m.ActiveBookings.WithLabelValues(string(from)).Dec()
	}
	if to.IsLive() {
		m.ActiveBookings.WithLabelValues(string(to)).Inc()
	}
}
