package attendance

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session は出席セッション（自習時間・講座等）を表す
type Session struct {
	ID              string
	Title           string
	Description     *string
	StartTime       time.Time
	EndTime         time.Time
	CheckInDeadline *time.Time // 任意のチェックイン締切。未設定なら終了時刻まで「出席」扱い
	Token           string     // チェックイン用トークン。発行後は再生成しない
	IsActive        bool
	CreatedAt       time.Time
}

// NewSession は新しいセッションを作成しトークンを発行する
func NewSession(title string, description *string, start, end time.Time, deadline *time.Time) *Session {
	return &Session{
		Title:           title,
		Description:     description,
		StartTime:       start,
		EndTime:         end,
		CheckInDeadline: deadline,
		Token:           newToken(),
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
}

// newToken は推測不可能なチェックイントークンを生成する
// uuid v4（crypto/rand由来）の先頭12桁を使用する
func newToken() string {
	return "ATT" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

// Validate はセッションの検証を行う
func (s *Session) Validate() error {
	if s.Title == "" {
		return ErrTitleRequired
	}
	if !s.StartTime.Before(s.EndTime) {
		return ErrInvalidSessionWindow
	}
	if s.CheckInDeadline != nil && s.CheckInDeadline.After(s.EndTime) {
		return ErrDeadlineAfterEnd
	}
	return nil
}

// IsOngoing は現在時刻がセッション時間帯の内側かを返す
func (s *Session) IsOngoing(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// HasEnded はセッションが終了済みかを返す
func (s *Session) HasEnded(now time.Time) bool {
	return now.After(s.EndTime)
}

// Deactivate はセッションを無効化する
func (s *Session) Deactivate() {
	s.IsActive = false
}

// StatusAt はチェックイン時刻に応じた出席状態を返す
func (s *Session) StatusAt(checkIn time.Time) RecordStatus {
	if s.CheckInDeadline != nil && checkIn.After(*s.CheckInDeadline) {
		return RecordStatusLate
	}
	return RecordStatusPresent
}
