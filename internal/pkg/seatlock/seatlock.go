package seatlock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired はロックを取得できなかったことを表す
var ErrNotAcquired = errors.New("座席ロックを取得できませんでした")

// Lock は取得済みの座席ロックを表す
type Lock interface {
	// Release はロックを解放する
	Release(ctx context.Context) error
}

// Locker は座席単位の排他制御を提供するインターフェース
// 空き確認と予約書き込みの間に同一座席への並行操作が割り込まないことを保証する
// キーは座席ID。異なる座席のロックは互いに干渉しない
type Locker interface {
	Acquire(ctx context.Context, seatID string) (Lock, error)
}

// Local はプロセス内の座席キー付きミューテックスによるLocker実装
// 単一プロセス構成やRedisが利用できない環境で使用する
type Local struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocal は新しいLocalロッカーを作成する
func NewLocal() *Local {
	return &Local{locks: make(map[string]chan struct{})}
}

func (l *Local) slot(seatID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[seatID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[seatID] = ch
	}
	return ch
}

// Acquire は座席ロックを取得する。コンテキストのキャンセルで待機を中断できる
func (l *Local) Acquire(ctx context.Context, seatID string) (Lock, error) {
	ch := l.slot(seatID)
	select {
	case ch <- struct{}{}:
		return &localLock{ch: ch}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type localLock struct {
	ch   chan struct{}
	once sync.Once
}

func (l *localLock) Release(ctx context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}

var _ Locker = (*Local)(nil)
