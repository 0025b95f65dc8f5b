package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-library-seat-booking/internal/api"
	"github.com/sanosuguru/go-library-seat-booking/internal/api/handler"
	custommw "github.com/sanosuguru/go-library-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-library-seat-booking/internal/application"
	"github.com/sanosuguru/go-library-seat-booking/internal/config"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
	"github.com/sanosuguru/go-library-seat-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-library-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/seatlock"
	"github.com/sanosuguru/go-library-seat-booking/internal/worker"
)

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	logger.Info("図書館座席予約サービスを起動します", zap.String("env", cfg.Env))

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis（任意）。接続できない場合はプロセス内ロックに切り替える
	var (
		locker seatlock.Locker
		cache  *redisinfra.AvailabilityCache
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redisに接続できないためプロセス内ロックを使用します", zap.Error(err))
		locker = seatlock.NewLocal()
	} else {
		defer redisClient.Close()
		locker = redisinfra.NewSeatLocker(redisinfra.NewLockManager(redisClient), cfg.Booking.LockTTL)
		cache = redisinfra.NewAvailabilityCache(redisClient)
	}

	// メトリクス
	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	sessionRepo := postgres.NewAttendanceSessionRepository(db)
	recordRepo := postgres.NewAttendanceRecordRepository(db)

	// サービス
	policy := application.BookingPolicy{
		Prices: booking.PriceTable{
			HourlyRate:  cfg.Booking.HourlyRate,
			DailyRate:   cfg.Booking.DailyRate,
			MonthlyRate: cfg.Booking.MonthlyRate,
		},
		GraceWindow: cfg.Booking.GraceWindow,
	}
	clk := clock.Real{}
	bookingService := application.NewBookingService(
		txManager, bookingRepo, seatRepo, paymentRepo, locker, cache, clk, policy)
	seatService := application.NewSeatService(txManager, seatRepo, cache)
	attendanceService := application.NewAttendanceService(txManager, sessionRepo, recordRepo, bookingRepo, clk)
	paymentService := application.NewPaymentService(txManager, paymentRepo, bookingRepo, bookingService)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler(db)
	seatHandler := handler.NewSeatHandler(seatService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/seats", seatHandler.Create)
	v1.POST("/seats/bulk", seatHandler.CreateBulk)
	v1.GET("/seats", seatHandler.List)
	v1.GET("/seats/available/count", seatHandler.CountAvailable)
	v1.GET("/seats/number/:number", seatHandler.GetByNumber)
	v1.GET("/seats/:id", seatHandler.GetByID)
	v1.PATCH("/seats/:id/status", seatHandler.SetStatus)
	v1.GET("/seats/:seat_id/availability", bookingHandler.Availability)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetUserBookings)
	v1.GET("/bookings/reference/:reference", bookingHandler.GetByReference)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	v1.POST("/bookings/:id/check-in", bookingHandler.CheckIn)
	v1.POST("/bookings/:id/check-out", bookingHandler.CheckOut)

	v1.POST("/attendance/sessions", attendanceHandler.CreateSession)
	v1.GET("/attendance/sessions", attendanceHandler.ListSessions)
	v1.GET("/attendance/sessions/:id", attendanceHandler.GetSession)
	v1.POST("/attendance/sessions/:id/deactivate", attendanceHandler.DeactivateSession)
	v1.GET("/attendance/sessions/:id/records", attendanceHandler.SessionRecords)
	v1.POST("/attendance/check-in", attendanceHandler.CheckIn)
	v1.POST("/attendance/records/:id/check-out", attendanceHandler.CheckOut)

	v1.GET("/payments", paymentHandler.ListPending)
	v1.GET("/payments/:id", paymentHandler.GetByID)
	v1.POST("/payments/:id/verify", paymentHandler.Verify)
	v1.POST("/payments/:id/reject", paymentHandler.Reject)

	// Prometheus メトリクス（Basic認証は環境変数設定時のみ）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// バックグラウンドワーカー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	sweeper := worker.NewNoShowSweeper(bookingService, attendanceService, cfg.Worker.NoShowSweepInterval)
	go sweeper.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	workerCancel()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
