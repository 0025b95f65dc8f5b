package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound        = errors.New("予約が見つかりません")
	ErrReferenceAlreadyExists = errors.New("同じ参照コードの予約が既に存在します")
	ErrCheckInOutsideWindow   = errors.New("予約時間帯の外ではチェックインできません")
	ErrNotBookingOwner        = errors.New("予約の所有者ではありません")
	ErrStartTimeTooOld        = errors.New("開始時刻が過去すぎます")
)

// InvalidTransitionError は状態機械で許可されていない遷移を表す
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("不正な状態遷移です: %s から %s へは遷移できません", e.From, e.To)
}

// SeatUnavailableError は指定時間帯に競合する予約が存在することを表す
// ConflictRefs には競合した予約の参照コードが入る
type SeatUnavailableError struct {
	SeatID       string
	ConflictRefs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("座席は指定時間帯に既に予約されています（競合: %s）", strings.Join(e.ConflictRefs, ", "))
}

// ValidationError は呼び出し側の入力不備を表す
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("入力が不正です（%s）: %s", e.Field, e.Reason)
}
