package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-library-seat-booking/internal/infrastructure/redis"
)

// SeatService は座席管理のユースケースを編成する
type SeatService struct {
	txManager transaction.Manager
	seatRepo  seat.Repository
	cache     *redisinfra.AvailabilityCache // nil許容
}

// NewSeatService は新しいSeatServiceを作成する
func NewSeatService(txm transaction.Manager, sr seat.Repository, cache *redisinfra.AvailabilityCache) *SeatService {
	return &SeatService{txManager: txm, seatRepo: sr, cache: cache}
}

// CreateSeatInput は座席作成の入力
type CreateSeatInput struct {
	Number         int
	HasPowerOutlet bool
	IsAccessible   bool
	PhotoURL       *string
}

// CreateSeat は新しい座席を登録する
func (s *SeatService) CreateSeat(ctx context.Context, input CreateSeatInput) (*seat.Seat, error) {
	se := seat.NewSeat(input.Number, input.HasPowerOutlet, input.IsAccessible)
	se.PhotoURL = input.PhotoURL
	if err := se.Validate(); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Create(ctx, se); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return se, nil
}

// CreateBulkSeatsInput は座席一括作成の入力
type CreateBulkSeatsInput struct {
	StartNumber    int
	Count          int
	HasPowerOutlet bool
	IsAccessible   bool
}

// CreateBulkSeats は連番の座席を一括登録する（初期セットアップ用）
func (s *SeatService) CreateBulkSeats(ctx context.Context, input CreateBulkSeatsInput) ([]*seat.Seat, error) {
	if input.StartNumber <= 0 || input.Count <= 0 {
		return nil, seat.ErrInvalidSeatNumber
	}
	seats := make([]*seat.Seat, input.Count)
	for i := 0; i < input.Count; i++ {
		seats[i] = seat.NewSeat(input.StartNumber+i, input.HasPowerOutlet, input.IsAccessible)
	}
	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return seats, nil
}

// GetSeat はIDから座席を取得する
func (s *SeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return s.seatRepo.GetByID(ctx, id)
}

// GetSeatByNumber は座席番号から座席を取得する
func (s *SeatService) GetSeatByNumber(ctx context.Context, number int) (*seat.Seat, error) {
	return s.seatRepo.GetByNumber(ctx, number)
}

// ListSeats は全座席を座席番号順に取得する
// status が空でない場合はその状態の座席に絞り込む
func (s *SeatService) ListSeats(ctx context.Context, status seat.Status) ([]*seat.Seat, error) {
	if status == "" {
		return s.seatRepo.List(ctx)
	}
	return s.seatRepo.ListByStatus(ctx, status)
}

// SetSeatStatus は管理者操作として座席の状態を変更する
func (s *SeatService) SetSeatStatus(ctx context.Context, seatID string, status seat.Status) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if err := se.SetAdminStatus(status); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.seatRepo.UpdateStatus(ctx, tx, se.ID, se.Status); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return se, nil
}

// CountAvailable は空席数を返す
// Redisのキャッシュがあれば優先し、ミス時はDBから数えてキャッシュを温める
func (s *SeatService) CountAvailable(ctx context.Context) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			// キャッシュ障害はDBフォールバックで吸収する
			return s.seatRepo.CountByStatus(ctx, seat.StatusAvailable)
		}
	}

	count, err := s.seatRepo.CountByStatus(ctx, seat.StatusAvailable)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetAvailableCount(ctx, count, availableCountTTL)
	}
	return count, nil
}

// availableCountTTL は空席数キャッシュの有効期限
// 無効化漏れがあっても短時間で自己修復する
const availableCountTTL = 30 * time.Second

func (s *SeatService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
