package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/seatlock"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      int      `json:"code,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ハンドラーから返されたドメインエラーをHTTPステータスに変換する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code      = http.StatusInternalServerError
		message   = "内部サーバーエラー"
		conflicts []string
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else if status, ok := domainStatus(err); ok {
		code = status
		message = err.Error()
		var unavailable *booking.SeatUnavailableError
		if errors.As(err, &unavailable) {
			conflicts = unavailable.ConflictRefs
		}
	}

	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error:     message,
		Code:      code,
		Conflicts: conflicts,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// domainStatus はドメインエラーに対応するHTTPステータスを返す
func domainStatus(err error) (int, bool) {
	var (
		unavailable *booking.SeatUnavailableError
		transition  *booking.InvalidTransitionError
		validation  *booking.ValidationError
	)

	switch {
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, seat.ErrSeatNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, attendance.ErrSessionNotFound),
		errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, attendance.ErrInvalidToken):
		return http.StatusNotFound, true

	case errors.As(err, &unavailable),
		errors.As(err, &transition),
		errors.Is(err, seat.ErrSeatNotBookable),
		errors.Is(err, seat.ErrSeatNumberAlreadyUsed),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, booking.ErrReferenceAlreadyExists),
		errors.Is(err, seatlock.ErrNotAcquired):
		return http.StatusConflict, true

	case errors.Is(err, booking.ErrNotBookingOwner):
		return http.StatusForbidden, true

	case errors.As(err, &validation),
		errors.Is(err, booking.ErrStartTimeTooOld),
		errors.Is(err, booking.ErrCheckInOutsideWindow),
		errors.Is(err, payment.ErrPaymentNotPending),
		errors.Is(err, attendance.ErrSessionClosed),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrTitleRequired),
		errors.Is(err, attendance.ErrInvalidSessionWindow),
		errors.Is(err, attendance.ErrDeadlineAfterEnd),
		errors.Is(err, seat.ErrInvalidSeatNumber),
		errors.Is(err, seat.ErrInvalidStatus):
		return http.StatusBadRequest, true
	}
	return 0, false
}
