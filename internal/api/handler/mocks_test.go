package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
)

// MockSeatService は SeatServiceInterface のモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) CreateSeat(ctx context.Context, input application.CreateSeatInput) (*seat.Seat, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) CreateBulkSeats(ctx context.Context, input application.CreateBulkSeatsInput) ([]*seat.Seat, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) GetSeatByNumber(ctx context.Context, number int) (*seat.Seat, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) ListSeats(ctx context.Context, status seat.Status) ([]*seat.Seat, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatService) SetSeatStatus(ctx context.Context, seatID string, status seat.Status) (*seat.Seat, error) {
	args := m.Called(ctx, seatID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatService) CountAvailable(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockBookingService は BookingServiceInterface のモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBookingByReference(ctx context.Context, ref string) (*booking.Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, input application.CancelBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CheckInBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CheckOutBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) IsSeatAvailable(ctx context.Context, seatID string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, seatID, start, end)
	return args.Bool(0), args.Error(1)
}

// MockAttendanceService は AttendanceServiceInterface のモック
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) CreateSession(ctx context.Context, input application.CreateSessionInput) (*attendance.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Session), args.Error(1)
}

func (m *MockAttendanceService) GetSession(ctx context.Context, id string) (*attendance.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Session), args.Error(1)
}

func (m *MockAttendanceService) ListSessions(ctx context.Context, limit, offset int) ([]*attendance.Session, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Session), args.Error(1)
}

func (m *MockAttendanceService) DeactivateSession(ctx context.Context, id string) (*attendance.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Session), args.Error(1)
}

func (m *MockAttendanceService) ListSessionRecords(ctx context.Context, sessionID string) ([]*attendance.Record, *application.SessionStats, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*attendance.Record), args.Get(1).(*application.SessionStats), args.Error(2)
}

func (m *MockAttendanceService) CheckIn(ctx context.Context, token, userID string) (*attendance.Record, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

func (m *MockAttendanceService) CheckOut(ctx context.Context, recordID string) (*attendance.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Record), args.Error(1)
}

// MockPaymentService は PaymentServiceInterface のモック
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, input application.VerifyPaymentInput) (*payment.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) RejectPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) ListPendingPayments(ctx context.Context, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}
