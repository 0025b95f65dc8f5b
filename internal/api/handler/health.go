package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger は依存先の死活確認インターフェース
type Pinger interface {
	Ping() error
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	db Pinger // nil許容（テスト時）
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションの健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
