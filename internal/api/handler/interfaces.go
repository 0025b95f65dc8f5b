package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
)

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	CreateSeat(ctx context.Context, input application.CreateSeatInput) (*seat.Seat, error)
	CreateBulkSeats(ctx context.Context, input application.CreateBulkSeatsInput) ([]*seat.Seat, error)
	GetSeat(ctx context.Context, id string) (*seat.Seat, error)
	GetSeatByNumber(ctx context.Context, number int) (*seat.Seat, error)
	ListSeats(ctx context.Context, status seat.Status) ([]*seat.Seat, error)
	SetSeatStatus(ctx context.Context, seatID string, status seat.Status) (*seat.Seat, error)
	CountAvailable(ctx context.Context) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, input application.CancelBookingInput) (*booking.Booking, error)
	CheckInBooking(ctx context.Context, id string) (*booking.Booking, error)
	CheckOutBooking(ctx context.Context, id string) (*booking.Booking, error)
	IsSeatAvailable(ctx context.Context, seatID string, start, end time.Time) (bool, error)
}

// AttendanceServiceInterface は出席サービスのインターフェース
type AttendanceServiceInterface interface {
	CreateSession(ctx context.Context, input application.CreateSessionInput) (*attendance.Session, error)
	GetSession(ctx context.Context, id string) (*attendance.Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*attendance.Session, error)
	DeactivateSession(ctx context.Context, id string) (*attendance.Session, error)
	ListSessionRecords(ctx context.Context, sessionID string) ([]*attendance.Record, *application.SessionStats, error)
	CheckIn(ctx context.Context, token, userID string) (*attendance.Record, error)
	CheckOut(ctx context.Context, recordID string) (*attendance.Record, error)
}

// PaymentServiceInterface は支払サービスのインターフェース
type PaymentServiceInterface interface {
	VerifyPayment(ctx context.Context, input application.VerifyPaymentInput) (*payment.Payment, error)
	RejectPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	ListPendingPayments(ctx context.Context, limit, offset int) ([]*payment.Payment, error)
}
