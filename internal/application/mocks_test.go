package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// mockTx は transaction.Tx のテスト用実装
type mockTx struct{}

func (t *mockTx) Commit() error   { return nil }
func (t *mockTx) Rollback() error { return nil }

// mockTxManager は transaction.Manager のテスト用実装
type mockTxManager struct{}

func (m *mockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return &mockTx{}, nil
}

// MockBookingRepository は booking.Repository のモック
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, ref string) (*booking.Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByPaymentID(ctx context.Context, paymentID string) (*booking.Booking, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetLiveOverlapping(ctx context.Context, seatID string, start, end time.Time, excludeID string) ([]*booking.Booking, error) {
	args := m.Called(ctx, seatID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountLive(ctx context.Context, seatID string, excludeID string) (int, error) {
	args := m.Called(ctx, seatID, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetOverdueConfirmed(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetActiveByUserAt(ctx context.Context, userID string, at time.Time) (*booking.Booking, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

// MockSeatRepository は seat.Repository のモック
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByNumber(ctx context.Context, number int) (*seat.Seat, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListByStatus(ctx context.Context, status seat.Status) ([]*seat.Seat, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, seatID string, status seat.Status) error {
	args := m.Called(ctx, tx, seatID, status)
	return args.Error(0)
}

func (m *MockSeatRepository) CountByStatus(ctx context.Context, status seat.Status) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

// MockPaymentRepository は payment.Repository のモック
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByStatus(ctx context.Context, status payment.Status, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

// MockSessionRepository は attendance.SessionRepository のモック
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *attendance.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*attendance.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*attendance.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Session), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context, limit, offset int) ([]*attendance.Session, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *attendance.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) DeactivateEnded(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// MockRecordRepository は attendance.RecordRepository のモック
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, tx transaction.Tx, r *attendance.Record) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id string) (*attendance.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) GetByUserAndSession(ctx context.Context, userID, sessionID string) (*attendance.Record, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]*attendance.Record, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Record), args.Error(1)
}

func (m *MockRecordRepository) Update(ctx context.Context, tx transaction.Tx, r *attendance.Record) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}
