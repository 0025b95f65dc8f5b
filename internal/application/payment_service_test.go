package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
)

// newTestPaymentService は支払審査と予約反映の連携を検証するための組み立て
// BookingServiceは同じモックリポジトリを共有する
func newTestPaymentService(pr *MockPaymentRepository, br *MockBookingRepository, sr *MockSeatRepository) *PaymentService {
	bookings := newTestBookingService(br, sr, pr)
	return NewPaymentService(&mockTxManager{}, pr, br, bookings)
}

func pendingBookingWithPayment(paymentID string) *booking.Booking {
	start := fixedNow().Add(time.Hour)
	b := booking.NewBooking(nil, "seat-1", start, start.Add(2*time.Hour), booking.PlanHourly, decimal.RequireFromString("20.00"))
	b.ID = "booking-1"
	b.PaymentID = &paymentID
	return b
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("承認すると紐付く予約が確定する", func(t *testing.T) {
		pr := new(MockPaymentRepository)
		br := new(MockBookingRepository)

		p := payment.NewPending(nil, nil)
		p.ID = "payment-1"
		b := pendingBookingWithPayment("payment-1")

		pr.On("GetByID", ctx, "payment-1").Return(p, nil)
		pr.On("Update", ctx, mock.Anything, p).Return(nil)
		br.On("GetByPaymentID", ctx, "payment-1").Return(b, nil)
		br.On("GetByID", ctx, "booking-1").Return(b, nil)
		br.On("Update", ctx, mock.Anything, b).Return(nil)

		svc := newTestPaymentService(pr, br, new(MockSeatRepository))
		txID := "tx-20250601-001"
		got, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
			PaymentID:     "payment-1",
			Amount:        decimal.RequireFromString("20.00"),
			TransactionID: &txID,
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, got.Status)
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, txID, *got.TransactionID)
		assert.Equal(t, booking.StatusConfirmed, b.Status)
	})

	t.Run("予約が紐付いていない支払は承認のみ行う", func(t *testing.T) {
		pr := new(MockPaymentRepository)
		br := new(MockBookingRepository)

		p := payment.NewPending(nil, nil)
		p.ID = "payment-1"

		pr.On("GetByID", ctx, "payment-1").Return(p, nil)
		pr.On("Update", ctx, mock.Anything, p).Return(nil)
		br.On("GetByPaymentID", ctx, "payment-1").Return(nil, booking.ErrBookingNotFound)

		svc := newTestPaymentService(pr, br, new(MockSeatRepository))
		got, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
			PaymentID: "payment-1",
			Amount:    decimal.NewFromInt(50),
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, got.Status)
		br.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("承認済みの支払は再承認できない", func(t *testing.T) {
		pr := new(MockPaymentRepository)

		p := payment.NewPending(nil, nil)
		p.ID = "payment-1"
		require.NoError(t, p.Verify(decimal.NewFromInt(10)))
		pr.On("GetByID", ctx, "payment-1").Return(p, nil)

		svc := newTestPaymentService(pr, new(MockBookingRepository), new(MockSeatRepository))
		_, err := svc.VerifyPayment(ctx, VerifyPaymentInput{PaymentID: "payment-1", Amount: decimal.NewFromInt(20)})

		assert.ErrorIs(t, err, payment.ErrPaymentNotPending)
		pr.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentService_RejectPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("却下すると紐付く予約がキャンセルされ座席が解放される", func(t *testing.T) {
		pr := new(MockPaymentRepository)
		br := new(MockBookingRepository)
		sr := new(MockSeatRepository)

		p := payment.NewPending(nil, nil)
		p.ID = "payment-1"
		b := pendingBookingWithPayment("payment-1")

		pr.On("GetByID", ctx, "payment-1").Return(p, nil)
		pr.On("Update", ctx, mock.Anything, p).Return(nil)
		br.On("GetByPaymentID", ctx, "payment-1").Return(b, nil)
		br.On("GetByID", ctx, "booking-1").Return(b, nil)
		br.On("Update", ctx, mock.Anything, b).Return(nil)
		br.On("CountLive", ctx, "seat-1", "booking-1").Return(0, nil)
		sr.On("UpdateStatus", ctx, mock.Anything, "seat-1", mock.Anything).Return(nil)

		svc := newTestPaymentService(pr, br, sr)
		got, err := svc.RejectPayment(ctx, "payment-1")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusRejected, got.Status)
		assert.Equal(t, booking.StatusCancelled, b.Status)
	})

	t.Run("予約が紐付いていない支払は却下のみ行う", func(t *testing.T) {
		pr := new(MockPaymentRepository)
		br := new(MockBookingRepository)

		p := payment.NewPending(nil, nil)
		p.ID = "payment-1"

		pr.On("GetByID", ctx, "payment-1").Return(p, nil)
		pr.On("Update", ctx, mock.Anything, p).Return(nil)
		br.On("GetByPaymentID", ctx, "payment-1").Return(nil, booking.ErrBookingNotFound)

		svc := newTestPaymentService(pr, br, new(MockSeatRepository))
		got, err := svc.RejectPayment(ctx, "payment-1")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusRejected, got.Status)
	})
}

func TestPaymentService_ListPendingPayments(t *testing.T) {
	ctx := context.Background()
	pr := new(MockPaymentRepository)

	pending := []*payment.Payment{payment.NewPending(nil, nil)}
	// limit未指定はデフォルト20件
	pr.On("ListByStatus", ctx, payment.StatusPending, 20, 0).Return(pending, nil)

	svc := newTestPaymentService(pr, new(MockBookingRepository), new(MockSeatRepository))
	got, err := svc.ListPendingPayments(ctx, 0, 0)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
