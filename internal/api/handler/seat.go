package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type CreateSeatRequest struct {
	Number         int     `json:"number" validate:"required,min=1"`
	HasPowerOutlet bool    `json:"has_power_outlet"`
	IsAccessible   bool    `json:"is_accessible"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

type CreateBulkSeatsRequest struct {
	StartNumber    int  `json:"start_number" validate:"required,min=1"`
	Count          int  `json:"count" validate:"required,min=1,max=1000"`
	HasPowerOutlet bool `json:"has_power_outlet"`
	IsAccessible   bool `json:"is_accessible"`
}

type SetSeatStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied maintenance reserved"`
}

type SeatResponse struct {
	ID             string  `json:"id"`
	Number         int     `json:"number"`
	Status         string  `json:"status"`
	HasPowerOutlet bool    `json:"has_power_outlet"`
	IsAccessible   bool    `json:"is_accessible"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, Number: s.Number, Status: string(s.Status),
		HasPowerOutlet: s.HasPowerOutlet, IsAccessible: s.IsAccessible, PhotoURL: s.PhotoURL,
	}
}

func (h *SeatHandler) Create(c echo.Context) error {
	var req CreateSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.CreateSeat(c.Request().Context(), application.CreateSeatInput{
		Number:         req.Number,
		HasPowerOutlet: req.HasPowerOutlet,
		IsAccessible:   req.IsAccessible,
		PhotoURL:       req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSeatResponse(s))
}

func (h *SeatHandler) CreateBulk(c echo.Context) error {
	var req CreateBulkSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seats, err := h.service.CreateBulkSeats(c.Request().Context(), application.CreateBulkSeatsInput{
		StartNumber:    req.StartNumber,
		Count:          req.Count,
		HasPowerOutlet: req.HasPowerOutlet,
		IsAccessible:   req.IsAccessible,
	})
	if err != nil {
		return err
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusCreated, resp)
}

// List は全座席一覧を返す。status クエリで絞り込みできる
func (h *SeatHandler) List(c echo.Context) error {
	seats, err := h.service.ListSeats(c.Request().Context(), seat.Status(c.QueryParam("status")))
	if err != nil {
		return err
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SeatHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetSeat(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

func (h *SeatHandler) GetByNumber(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "座席番号の形式が不正です")
	}
	s, err := h.service.GetSeatByNumber(c.Request().Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// SetStatus は管理者による座席状態の変更を処理する
func (h *SeatHandler) SetStatus(c echo.Context) error {
	var req SetSeatStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.SetSeatStatus(c.Request().Context(), c.Param("id"), seat.Status(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

func (h *SeatHandler) CountAvailable(c echo.Context) error {
	count, err := h.service.CountAvailable(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
