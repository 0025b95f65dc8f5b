package attendance

import (
	"context"
	"time"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

// SessionRepository は出席セッションリポジトリのインターフェース
type SessionRepository interface {
	// Create は新しいセッションを作成する
	Create(ctx context.Context, session *Session) error

	// GetByID はIDからセッションを取得する
	GetByID(ctx context.Context, id string) (*Session, error)

	// GetByToken はトークンからセッションを取得する
	GetByToken(ctx context.Context, token string) (*Session, error)

	// List はセッション一覧を開始時刻の降順で取得する
	List(ctx context.Context, limit, offset int) ([]*Session, error)

	// Update はセッションを更新する
	Update(ctx context.Context, session *Session) error

	// DeactivateEnded は終了時刻を過ぎた有効セッションを無効化し件数を返す
	DeactivateEnded(ctx context.Context, now time.Time) (int, error)
}

// RecordRepository は出席レコードリポジトリのインターフェース
type RecordRepository interface {
	// Create は出席レコードを作成する（トランザクション必須）
	// (user, session) の一意制約違反時は ErrAlreadyCheckedIn を返す
	Create(ctx context.Context, tx transaction.Tx, record *Record) error

	// GetByID はIDから出席レコードを取得する
	GetByID(ctx context.Context, id string) (*Record, error)

	// GetByUserAndSession は (user, session) の出席レコードを取得する
	GetByUserAndSession(ctx context.Context, userID, sessionID string) (*Record, error)

	// ListBySession はセッションの出席レコード一覧を取得する
	ListBySession(ctx context.Context, sessionID string) ([]*Record, error)

	// Update は出席レコードを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, record *Record) error
}
