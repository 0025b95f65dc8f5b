package seatlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_AcquireRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lock, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx))

	// 解放後は再取得できる
	lock2, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)
	require.NoError(t, lock2.Release(ctx))
}

func TestLocal_異なる座席は干渉しない(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lock1, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)
	defer lock1.Release(ctx)

	lock2, err := l.Acquire(ctx, "seat-2")
	require.NoError(t, err)
	defer lock2.Release(ctx)
}

func TestLocal_保持中の取得はコンテキストで中断できる(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lock, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)
	defer lock.Release(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(waitCtx, "seat-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocal_二重解放は安全(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lock, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx))
	require.NoError(t, lock.Release(ctx))

	// 二重解放でスロットが壊れていないことを確認
	lock2, err := l.Acquire(ctx, "seat-1")
	require.NoError(t, err)
	require.NoError(t, lock2.Release(ctx))
}

func TestLocal_並行取得は直列化される(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	const goroutines = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		max     int
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := l.Acquire(ctx, "seat-1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			holders++
			if holders > max {
				max = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			lock.Release(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "同時にロックを保持できるのは1ゴルーチンのみ")
}
