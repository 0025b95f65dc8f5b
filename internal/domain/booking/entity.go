package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// LiveStatuses は座席を占有している状態の集合
// この集合に属する予約同士は同一座席で時間帯が重なってはならない
var LiveStatuses = []Status{StatusPending, StatusConfirmed, StatusActive}

// IsLive は状態が座席を占有しているかを返す
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

// IsTerminal は終端状態（以降の遷移を受け付けない）かを返す
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Plan は料金プランを表す
type Plan string

const (
	PlanHourly  Plan = "hourly"
	PlanDaily   Plan = "daily"
	PlanMonthly Plan = "monthly"
)

// IsValid はプランが既知のものかを返す
func (p Plan) IsValid() bool {
	return p == PlanHourly || p == PlanDaily || p == PlanMonthly
}

// Booking は座席予約エンティティを表す
type Booking struct {
	ID            string
	Reference     string // 予約参照コード（生成後は不変）
	UserID        *string
	SeatID        string
	StartTime     time.Time
	EndTime       time.Time
	Plan          Plan
	DurationHours decimal.Decimal
	TotalAmount   decimal.Decimal // 常にPriceTableから導出される。呼び出し側からは受け取らない
	Status        Status
	PaymentID     *string
	Purpose       *string
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBooking は新しい予約をpending状態で作成する
func NewBooking(userID *string, seatID string, start, end time.Time, plan Plan, amount decimal.Decimal) *Booking {
	now := time.Now()
	return &Booking{
		Reference:     newReference(),
		UserID:        userID,
		SeatID:        seatID,
		StartTime:     start,
		EndTime:       end,
		Plan:          plan,
		DurationHours: WindowHours(start, end),
		TotalAmount:   amount,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// newReference は一意な予約参照コードを生成する
func newReference() string {
	return "BK" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

// WindowHours は時間帯の長さを時間単位のdecimalで返す（秒単位で導出）
func WindowHours(start, end time.Time) decimal.Decimal {
	secs := int64(end.Sub(start) / time.Second)
	return decimal.NewFromInt(secs).Div(decimal.NewFromInt(3600))
}

// Overlaps は半開区間 [StartTime, EndTime) が指定区間と重なるかを返す
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// Confirm は予約を確定する（管理者承認または支払検証による）
func (b *Booking) Confirm() error {
	if b.Status != StatusPending {
		return &InvalidTransitionError{From: b.Status, To: StatusConfirmed}
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now()
	return nil
}

// Activate はチェックインにより予約を利用中にする
// 予約時間帯 [StartTime, EndTime] の内側でのみ許可される
func (b *Booking) Activate(now time.Time) error {
	if b.Status != StatusConfirmed {
		return &InvalidTransitionError{From: b.Status, To: StatusActive}
	}
	if now.Before(b.StartTime) || now.After(b.EndTime) {
		return ErrCheckInOutsideWindow
	}
	b.Status = StatusActive
	b.CheckedInAt = &now
	b.UpdatedAt = now
	return nil
}

// Complete はチェックアウトにより予約を完了する
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusActive {
		return &InvalidTransitionError{From: b.Status, To: StatusCompleted}
	}
	b.Status = StatusCompleted
	b.CheckedOutAt = &now
	if b.CheckedInAt != nil {
		// 実利用時間を再計算して保持する
		b.DurationHours = WindowHours(*b.CheckedInAt, now)
	}
	b.UpdatedAt = now
	return nil
}

// Cancel は予約をキャンセルする（activeになる前のみ許可）
func (b *Booking) Cancel() error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return &InvalidTransitionError{From: b.Status, To: StatusCancelled}
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// MarkNoShow はチェックインされないまま終了した確定予約を不参加にする
func (b *Booking) MarkNoShow() error {
	if b.Status != StatusConfirmed {
		return &InvalidTransitionError{From: b.Status, To: StatusNoShow}
	}
	b.Status = StatusNoShow
	b.UpdatedAt = time.Now()
	return nil
}

// AttachPayment は支払レコードを紐付ける
func (b *Booking) AttachPayment(paymentID string) {
	b.PaymentID = &paymentID
	b.UpdatedAt = time.Now()
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.SeatID == "" {
		return &ValidationError{Field: "seat_id", Reason: "座席IDは必須です"}
	}
	if !b.StartTime.Before(b.EndTime) {
		return &ValidationError{Field: "start_time", Reason: "開始時刻は終了時刻より前である必要があります"}
	}
	// プランの選択肢チェックはリクエスト層で行う
	// 未知プランは金額0として扱う既存仕様を保存するためここでは拒否しない
	return nil
}
