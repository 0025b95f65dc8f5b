package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// PaymentService は支払審査のユースケースを編成する
// 審査結果は紐付いた予約の状態にも反映される（承認→確定、却下→キャンセル）
type PaymentService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	bookingRepo booking.Repository
	bookings    *BookingService
}

// NewPaymentService は新しいPaymentServiceを作成する
func NewPaymentService(txm transaction.Manager, pr payment.Repository, br booking.Repository, bookings *BookingService) *PaymentService {
	return &PaymentService{txManager: txm, paymentRepo: pr, bookingRepo: br, bookings: bookings}
}

// VerifyPaymentInput は支払承認の入力
type VerifyPaymentInput struct {
	PaymentID     string
	Amount        decimal.Decimal
	TransactionID *string
}

// VerifyPayment は審査者が支払を承認し、紐付く審査待ち予約を確定する
func (s *PaymentService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Verify(input.Amount); err != nil {
		return nil, err
	}
	if input.TransactionID != nil {
		p.TransactionID = input.TransactionID
	}
	if err := s.updatePayment(ctx, p); err != nil {
		return nil, err
	}

	// 予約の確定は支払更新とは別トランザクションになる
	// 失敗してもワーカーや管理者操作でリトライできるため支払承認自体は成立させる
	if err := s.applyToBooking(ctx, p.ID, true); err != nil {
		return p, err
	}
	return p, nil
}

// RejectPayment は審査者が支払を却下し、紐付く審査待ち予約をキャンセルする
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Reject(); err != nil {
		return nil, err
	}
	if err := s.updatePayment(ctx, p); err != nil {
		return nil, err
	}
	if err := s.applyToBooking(ctx, p.ID, false); err != nil {
		return p, err
	}
	return p, nil
}

// GetPayment はIDから支払を取得する
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// ListPendingPayments は審査待ちの支払一覧を取得する
func (s *PaymentService) ListPendingPayments(ctx context.Context, limit, offset int) ([]*payment.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.paymentRepo.ListByStatus(ctx, payment.StatusPending, limit, offset)
}

func (s *PaymentService) updatePayment(ctx context.Context, p *payment.Payment) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.paymentRepo.Update(ctx, tx, p); err != nil {
		return err
	}
	return commit(tx)
}

// applyToBooking は審査結果を紐付く予約に反映する
// 予約が紐付いていない支払（先払い等）は何もしない
func (s *PaymentService) applyToBooking(ctx context.Context, paymentID string, verified bool) error {
	b, err := s.bookingRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return nil
		}
		return err
	}

	if verified {
		_, err = s.bookings.ConfirmBooking(ctx, b.ID)
	} else {
		_, err = s.bookings.CancelBooking(ctx, CancelBookingInput{BookingID: b.ID, IsAdmin: true})
	}
	return err
}
