package attendance

import "errors"

// Attendance ドメインのエラー定義
var (
	ErrSessionNotFound      = errors.New("セッションが見つかりません")
	ErrRecordNotFound       = errors.New("出席レコードが見つかりません")
	ErrInvalidToken         = errors.New("無効なチェックイントークンです")
	ErrSessionClosed        = errors.New("セッションはチェックインを受け付けていません")
	ErrAlreadyCheckedIn     = errors.New("このセッションには既にチェックイン済みです")
	ErrAlreadyCheckedOut    = errors.New("既にチェックアウト済みです")
	ErrNotCheckedIn         = errors.New("チェックインされていません")
	ErrTitleRequired        = errors.New("タイトルは必須です")
	ErrInvalidSessionWindow = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrDeadlineAfterEnd     = errors.New("チェックイン締切はセッション終了時刻以前である必要があります")
)
