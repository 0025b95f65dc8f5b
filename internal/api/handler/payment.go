package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type VerifyPaymentRequest struct {
	Amount        string  `json:"amount" validate:"required" example:"20.00"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	Status        string    `json:"status" example:"pending"`
	Amount        *string   `json:"amount,omitempty" example:"20.00"`
	Plan          *string   `json:"plan,omitempty"`
	ProofRef      *string   `json:"proof_ref,omitempty"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	var amount *string
	if p.Amount != nil {
		v := p.Amount.String()
		amount = &v
	}
	return PaymentResponse{
		ID: p.ID, Status: string(p.Status), Amount: amount, Plan: p.Plan,
		ProofRef: p.ProofRef, TransactionID: p.TransactionID, CreatedAt: p.CreatedAt,
	}
}

// Verify godoc
// @Summary 支払を承認
// @Description 審査者が金額を記入して支払を承認し、紐付く予約を確定します
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "支払ID"
// @Param request body VerifyPaymentRequest true "承認情報"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/{id}/verify [post]
func (h *PaymentHandler) Verify(c echo.Context) error {
	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "金額の形式が不正です")
	}
	p, err := h.service.VerifyPayment(c.Request().Context(), application.VerifyPaymentInput{
		PaymentID:     c.Param("id"),
		Amount:        amount,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// Reject godoc
// @Summary 支払を却下
// @Description 審査者が支払を却下し、紐付く予約をキャンセルします
// @Tags payments
// @Produce json
// @Param id path string true "支払ID"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c echo.Context) error {
	p, err := h.service.RejectPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) ListPending(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	payments, err := h.service.ListPendingPayments(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}
