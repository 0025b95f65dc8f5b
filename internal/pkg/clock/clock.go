package clock

import "time"

// Clock は現在時刻の供給源を抽象化する
// 時刻に依存する判定（空き確認・状態遷移・出席締切）をテスト可能にするための注入点
type Clock interface {
	Now() time.Time
}

// Real はシステム時計をそのまま返すClock実装
type Real struct{}

// NewReal は新しいRealクロックを作成する
func NewReal() *Real {
	return &Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

// Fixed は固定時刻を返すテスト用Clock実装
type Fixed struct {
	now time.Time
}

// NewFixed は指定時刻に固定されたクロックを作成する
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (c *Fixed) Now() time.Time {
	return c.now
}

// Advance は固定時刻を進める
func (c *Fixed) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
