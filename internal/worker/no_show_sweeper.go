package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-library-seat-booking/internal/pkg/logger"
)

// NoShowMarker はチェックインされないまま終了した予約を不参加にするインターフェース
type NoShowMarker interface {
	MarkOverdueNoShows(ctx context.Context) (int, error)
}

// SessionDeactivator は終了済みの出席セッションを無効化するインターフェース
type SessionDeactivator interface {
	DeactivateEndedSessions(ctx context.Context) (int, error)
}

// NoShowSweeper は期限超過の予約とセッションを定期的に掃除するワーカー
type NoShowSweeper struct {
	bookingService    NoShowMarker
	attendanceService SessionDeactivator // nil許容
	interval          time.Duration
	stopCh            chan struct{}
	doneCh            chan struct{}
}

// NewNoShowSweeper は新しいスイーパーを作成
func NewNoShowSweeper(bs NoShowMarker, as SessionDeactivator, interval time.Duration) *NoShowSweeper {
	return &NoShowSweeper{
		bookingService:    bs,
		attendanceService: as,
		interval:          interval,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *NoShowSweeper) Start(ctx context.Context) {
	logger.Info("不参加スイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("不参加スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("不参加スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *NoShowSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限超過の確定予約を不参加にし、終了済みセッションを無効化する
func (s *NoShowSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("不参加スイープ開始")

	count, err := s.bookingService.MarkOverdueNoShows(ctx)
	if err != nil {
		log.Error("不参加スイープ失敗", zap.Error(err))
	} else if count > 0 {
		log.Info("期限超過予約を不参加に更新", zap.Int("count", count))
	} else {
		log.Debug("期限超過予約なし")
	}

	if s.attendanceService == nil {
		return
	}
	deactivated, err := s.attendanceService.DeactivateEndedSessions(ctx)
	if err != nil {
		log.Error("セッション無効化失敗", zap.Error(err))
	} else if deactivated > 0 {
		log.Info("終了済みセッションを無効化", zap.Int("count", deactivated))
	}
}
