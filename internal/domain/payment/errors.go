package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound   = errors.New("支払が見つかりません")
	ErrPaymentNotPending = errors.New("支払は審査待ちではありません")
)
