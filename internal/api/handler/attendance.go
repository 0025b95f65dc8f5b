package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/attendance"
)

type AttendanceHandler struct {
	service AttendanceServiceInterface
}

func NewAttendanceHandler(s AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{service: s}
}

type CreateSessionRequest struct {
	Title           string  `json:"title" validate:"required" example:"朝の自習時間"`
	Description     *string `json:"description,omitempty"`
	StartTime       string  `json:"start_time" validate:"required" example:"2025-06-01T09:00:00+09:00"`
	EndTime         string  `json:"end_time" validate:"required" example:"2025-06-01T12:00:00+09:00"`
	CheckInDeadline *string `json:"check_in_deadline,omitempty" example:"2025-06-01T09:15:00+09:00"`
}

type SessionResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	CheckInDeadline *time.Time `json:"check_in_deadline,omitempty"`
	Token           string     `json:"token" example:"ATT3F2504F0A9D1"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toSessionResponse(s *attendance.Session) SessionResponse {
	return SessionResponse{
		ID: s.ID, Title: s.Title, Description: s.Description,
		StartTime: s.StartTime, EndTime: s.EndTime, CheckInDeadline: s.CheckInDeadline,
		Token: s.Token, IsActive: s.IsActive, CreatedAt: s.CreatedAt,
	}
}

type CheckInRequest struct {
	Token string `json:"token" validate:"required" example:"ATT3F2504F0A9D1"`
}

type RecordResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	SessionID       string     `json:"session_id"`
	Status          string     `json:"status" example:"present"`
	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	BookingID       *string    `json:"booking_id,omitempty"`
}

func toRecordResponse(r *attendance.Record) RecordResponse {
	return RecordResponse{
		ID: r.ID, UserID: r.UserID, SessionID: r.SessionID, Status: string(r.Status),
		CheckInTime: r.CheckInTime, CheckOutTime: r.CheckOutTime,
		DurationMinutes: r.DurationMinutes, BookingID: r.BookingID,
	}
}

// CreateSession godoc
// @Summary 出席セッションを作成
// @Description セッションを作成しチェックイントークンを発行します
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "セッション情報"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string
// @Router /attendance/sessions [post]
func (h *AttendanceHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
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
	var deadline *time.Time
	if req.CheckInDeadline != nil {
		d, err := time.Parse(time.RFC3339, *req.CheckInDeadline)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "チェックイン締切の形式が不正です")
		}
		deadline = &d
	}

	session, err := h.service.CreateSession(c.Request().Context(), application.CreateSessionInput{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       start,
		EndTime:         end,
		CheckInDeadline: deadline,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (h *AttendanceHandler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *AttendanceHandler) ListSessions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	sessions, err := h.service.ListSessions(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		resp[i] = toSessionResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeactivateSession はセッションを手動で閉じ、以後のチェックインを拒否する
func (h *AttendanceHandler) DeactivateSession(c echo.Context) error {
	session, err := h.service.DeactivateSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// SessionRecords godoc
// @Summary セッションの出席一覧と集計を取得
// @Tags attendance
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /attendance/sessions/{id}/records [get]
func (h *AttendanceHandler) SessionRecords(c echo.Context) error {
	records, stats, err := h.service.ListSessionRecords(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]RecordResponse, len(records))
	for i, r := range records {
		resp[i] = toRecordResponse(r)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": resp,
		"stats":   stats,
	})
}

// CheckIn godoc
// @Summary トークンでチェックイン
// @Description セッショントークンによる出席チェックインを処理します
// @Tags attendance
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CheckInRequest true "チェックイン情報"
// @Success 201 {object} RecordResponse
// @Failure 400 {object} map[string]string "セッション時間外"
// @Failure 404 {object} map[string]string "無効なトークン"
// @Failure 409 {object} map[string]string "チェックイン済み"
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	record, err := h.service.CheckIn(c.Request().Context(), req.Token, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRecordResponse(record))
}

// CheckOut godoc
// @Summary 出席レコードをチェックアウト
// @Description 滞在時間（分）を確定します
// @Tags attendance
// @Produce json
// @Param id path string true "出席レコードID"
// @Success 200 {object} RecordResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /attendance/records/{id}/check-out [post]
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	record, err := h.service.CheckOut(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponse(record))
}
