package payment

import (
	"context"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// Repository は支払リポジトリのインターフェース
type Repository interface {
	// Create は新しい支払レコードを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, payment *Payment) error

	// GetByID はIDから支払を取得する
	GetByID(ctx context.Context, id string) (*Payment, error)

	// ListByStatus は指定状態の支払一覧を取得する（作成日時の降順）
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Payment, error)

	// Update は支払を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, payment *Payment) error
}
