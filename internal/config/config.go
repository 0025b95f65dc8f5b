package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Worker   WorkerConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingConfig は予約エンジンの設定
type BookingConfig struct {
	// GraceWindow は開始時刻の過去方向への許容幅
	// クライアント・サーバー間の時計ずれを吸収するための方針値
	GraceWindow time.Duration
	// LockTTL は座席ロックの有効期限
	LockTTL time.Duration
	// プラン別基準料金
	HourlyRate  decimal.Decimal
	DailyRate   decimal.Decimal
	MonthlyRate decimal.Decimal
}

// WorkerConfig はバックグラウンドワーカーの設定
type WorkerConfig struct {
	// NoShowSweepInterval は不参加予約掃き出しの実行間隔
	NoShowSweepInterval time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "library_seat_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Booking: BookingConfig{
			GraceWindow: getDurationEnv("BOOKING_GRACE_WINDOW", 1*time.Minute),
			LockTTL:     getDurationEnv("BOOKING_LOCK_TTL", 10*time.Second),
			HourlyRate:  getDecimalEnv("BOOKING_HOURLY_RATE", decimal.NewFromInt(10)),
			DailyRate:   getDecimalEnv("BOOKING_DAILY_RATE", decimal.NewFromInt(50)),
			MonthlyRate: getDecimalEnv("BOOKING_MONTHLY_RATE", decimal.NewFromInt(500)),
		},
		Worker: WorkerConfig{
			NoShowSweepInterval: getDurationEnv("NO_SHOW_SWEEP_INTERVAL", 1*time.Minute),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
