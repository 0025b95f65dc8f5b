package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByReference は参照コードから予約を取得する
	GetByReference(ctx context.Context, ref string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する（作成日時の降順）
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// GetByPaymentID は支払IDから予約を取得する
	GetByPaymentID(ctx context.Context, paymentID string) (*Booking, error)

	// GetLiveOverlapping は指定座席・時間帯と半開区間で重なるライブ状態の予約を取得する
	// excludeID が空でない場合、そのIDの予約は除外する（予約自身の時間帯再検証用）
	GetLiveOverlapping(ctx context.Context, seatID string, start, end time.Time, excludeID string) ([]*Booking, error)

	// CountLive は指定座席のライブ状態の予約数を取得する
	// excludeID が空でない場合、そのIDの予約は除外する
	CountLive(ctx context.Context, seatID string, excludeID string) (int, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetOverdueConfirmed はチェックインされないまま終了時刻を過ぎた確定予約を取得する
	GetOverdueConfirmed(ctx context.Context, now time.Time) ([]*Booking, error)

	// GetActiveByUserAt は指定時刻を時間帯に含むユーザーの利用中予約を取得する
	// 存在しない場合は ErrBookingNotFound を返す
	GetActiveByUserAt(ctx context.Context, userID string, at time.Time) (*Booking, error)
}
