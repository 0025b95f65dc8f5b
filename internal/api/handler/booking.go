package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	SeatID    string  `json:"seat_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartTime string  `json:"start_time" validate:"required" example:"2025-06-01T10:00:00+09:00"`
	EndTime   string  `json:"end_time" validate:"required" example:"2025-06-01T12:00:00+09:00"`
	Plan      string  `json:"plan" validate:"required,oneof=hourly daily monthly" example:"hourly"`
	PaymentID *string `json:"payment_id,omitempty"`
	ProofRef  *string `json:"proof_ref,omitempty"`
	Purpose   *string `json:"purpose,omitempty" example:"試験勉強"`
}

type BookingResponse struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference" example:"BK3F2504F0A9D1"`
	UserID        *string    `json:"user_id,omitempty"`
	SeatID        string     `json:"seat_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Plan          string     `json:"plan"`
	DurationHours string     `json:"duration_hours" example:"2"`
	TotalAmount   string     `json:"total_amount" example:"20.00"`
	Status        string     `json:"status" example:"pending"`
	PaymentID     *string    `json:"payment_id,omitempty"`
	Purpose       *string    `json:"purpose,omitempty"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, Reference: b.Reference, UserID: b.UserID, SeatID: b.SeatID,
		StartTime: b.StartTime, EndTime: b.EndTime, Plan: string(b.Plan),
		DurationHours: b.DurationHours.String(), TotalAmount: b.TotalAmount.String(),
		Status: string(b.Status), PaymentID: b.PaymentID, Purpose: b.Purpose,
		CheckedInAt: b.CheckedInAt, CheckedOutAt: b.CheckedOutAt, CreatedAt: b.CreatedAt,
	}
}

// Create godoc
// @Summary 座席予約を作成
// @Description 指定時間帯の座席予約を作成します（匿名予約可）
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string false "ユーザーID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "時間帯が既存予約と競合"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}

	var userID *string
	if v := c.Request().Header.Get("X-User-ID"); v != "" {
		userID = &v
	}

	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		UserID:    userID,
		SeatID:    req.SeatID,
		StartTime: start,
		EndTime:   end,
		Plan:      booking.Plan(req.Plan),
		PaymentID: req.PaymentID,
		ProofRef:  req.ProofRef,
		Purpose:   req.Purpose,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetByReference godoc
// @Summary 参照コードから予約を取得
// @Tags bookings
// @Produce json
// @Param reference path string true "予約参照コード"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/reference/{reference} [get]
func (h *BookingHandler) GetByReference(c echo.Context) error {
	b, err := h.service.GetBookingByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary ユーザーの予約履歴を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約を確定
// @Description 審査待ちの予約を確定します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	b, err := h.service.ConfirmBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席状態を再計算します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string false "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var requestedBy *string
	if v := c.Request().Header.Get("X-User-ID"); v != "" {
		requestedBy = &v
	}
	isAdmin := c.Request().Header.Get("X-Admin") == "true"

	b, err := h.service.CancelBooking(c.Request().Context(), application.CancelBookingInput{
		BookingID:   c.Param("id"),
		RequestedBy: requestedBy,
		IsAdmin:     isAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CheckIn godoc
// @Summary 予約にチェックイン
// @Description 確定済み予約を利用中にします（予約時間帯の内側のみ）
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c echo.Context) error {
	b, err := h.service.CheckInBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CheckOut godoc
// @Summary 予約をチェックアウト
// @Description 利用中の予約を完了し、実利用時間を確定します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/check-out [post]
func (h *BookingHandler) CheckOut(c echo.Context) error {
	b, err := h.service.CheckOutBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Availability godoc
// @Summary 座席の空き確認
// @Description 指定時間帯 [start, end) に座席が空いているかを返します（参考値）
// @Tags bookings
// @Produce json
// @Param seat_id path string true "座席ID"
// @Param start query string true "開始時刻（RFC3339）"
// @Param end query string true "終了時刻（RFC3339）"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /seats/{seat_id}/availability [get]
func (h *BookingHandler) Availability(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}
	available, err := h.service.IsSeatAvailable(c.Request().Context(), c.Param("seat_id"), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}
