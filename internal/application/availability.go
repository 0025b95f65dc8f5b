package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/booking"
)

// AvailabilityChecker は座席の空き判定を行う
// 判定は常に予約集合から再導出し、座席のキャッシュ状態には依存しない
//
// このチェック単体では競合を防げない点に注意。予約作成時の正式な判定は
// BookingService が座席ロックの内側で改めて実行する
type AvailabilityChecker struct {
	bookingRepo booking.Repository
}

// NewAvailabilityChecker は新しいAvailabilityCheckerを作成する
func NewAvailabilityChecker(br booking.Repository) *AvailabilityChecker {
	return &AvailabilityChecker{bookingRepo: br}
}

// Conflicts は指定座席・時間帯と半開区間で重なるライブ状態の予約を返す
// excludeBookingID が空でない場合、その予約は除外する（予約更新時の自己再検証用）
func (c *AvailabilityChecker) Conflicts(ctx context.Context, seatID string, start, end time.Time, excludeBookingID string) ([]*booking.Booking, error) {
	if !start.Before(end) {
		return nil, &booking.ValidationError{Field: "start_time", Reason: "開始時刻は終了時刻より前である必要があります"}
	}
	return c.bookingRepo.GetLiveOverlapping(ctx, seatID, start, end, excludeBookingID)
}

// IsAvailable は指定座席が時間帯 [start, end) で予約可能かを返す
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, seatID string, start, end time.Time, excludeBookingID string) (bool, error) {
	conflicts, err := c.Conflicts(ctx, seatID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
