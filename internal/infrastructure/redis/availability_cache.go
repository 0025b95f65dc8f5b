package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// AvailabilityCache は空席数の参考値キャッシュを管理する
// 正確性が必要な判定には使わない。一覧表示等の読み取り高速化専用
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

const availableCountKey = "seats:available:count"

// GetAvailableCount は空席数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailableCount(ctx context.Context) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は空席数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailableCount(ctx context.Context, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableCountKey, count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は空席数キャッシュを無効化する
// 予約の作成・キャンセルで座席状態が変わった直後に呼ばれる
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, availableCountKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}
