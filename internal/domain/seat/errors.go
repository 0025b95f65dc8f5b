package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound          = errors.New("座席が見つかりません")
	ErrSeatNotBookable       = errors.New("座席は予約を受け付けていません")
	ErrInvalidSeatNumber     = errors.New("座席番号は1以上である必要があります")
	ErrInvalidStatus         = errors.New("不正な座席状態です")
	ErrSeatNumberAlreadyUsed = errors.New("同じ座席番号が既に存在します")
)
