package seat

import (
	"context"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// Create は新しい座席を作成する
	Create(ctx context.Context, seat *Seat) error

	// CreateBulk は複数の座席を一括作成する
	CreateBulk(ctx context.Context, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByNumber は座席番号から座席を取得する
	GetByNumber(ctx context.Context, number int) (*Seat, error)

	// List は全座席を座席番号順に取得する
	List(ctx context.Context) ([]*Seat, error)

	// ListByStatus は指定状態の座席一覧を取得する
	ListByStatus(ctx context.Context, status Status) ([]*Seat, error)

	// UpdateStatus は座席のキャッシュ状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, seatID string, status Status) error

	// CountByStatus は指定状態の座席数を取得する
	CountByStatus(ctx context.Context, status Status) (int, error)
}
