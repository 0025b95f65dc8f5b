package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成試行の総数（status: success, conflict, lock_failed, validation, error）
	BookingsTotal *prometheus.CounterVec

	// 座席ロック操作の所要時間（operation: acquire/release, status: success/failed）
	SeatLockDuration *prometheus.HistogramVec

	// ライブ状態の予約数（status: pending, confirmed, active）
	ActiveBookings *prometheus.GaugeVec

	// 出席チェックインの総数（status: present, late, rejected）
	CheckInsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_bookings_total",
				Help: "Total number of seat booking attempts",
			},
			[]string{"status"},
		),
		SeatLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seat_lock_duration_seconds",
				Help:    "Time spent on per-seat lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ActiveBookings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "active_seat_bookings",
				Help: "Current number of live seat bookings",
			},
			[]string{"status"},
		),
		CheckInsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_check_ins_total",
				Help: "Total number of attendance check-in attempts",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.SeatLockDuration,
		m.ActiveBookings,
		m.CheckInsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
