package attendance

import "time"

// RecordStatus は出席レコードの状態を表す
type RecordStatus string

const (
	RecordStatusPresent RecordStatus = "present"
	RecordStatusLate    RecordStatus = "late"
	RecordStatusAbsent  RecordStatus = "absent"
	RecordStatusExcused RecordStatus = "excused"
)

// Record はユーザー1人のセッション出席レコードを表す
// (user, session) の組につき最大1件。2回目のチェックインは上書きせず拒否する
type Record struct {
	ID              string
	UserID          string
	SessionID       string
	Status          RecordStatus
	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	DurationMinutes int
	BookingID       *string // 同時間帯に利用中の座席予約があれば紐付く
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewCheckedIn はチェックイン済みの出席レコードを作成する
// 出席/遅刻の判定はセッションの締切に基づいて呼び出し側で行う
func NewCheckedIn(userID, sessionID string, status RecordStatus, checkIn time.Time, bookingID *string) *Record {
	return &Record{
		UserID:      userID,
		SessionID:   sessionID,
		Status:      status,
		CheckInTime: &checkIn,
		BookingID:   bookingID,
		CreatedAt:   checkIn,
		UpdatedAt:   checkIn,
	}
}

// CheckOut はチェックアウト時刻を記録し滞在時間（分）を確定する
// チェックイン済みかつ未チェックアウトのレコードからのみ許可される
func (r *Record) CheckOut(now time.Time) error {
	if r.CheckInTime == nil {
		return ErrNotCheckedIn
	}
	if r.CheckOutTime != nil {
		return ErrAlreadyCheckedOut
	}
	r.CheckOutTime = &now
	r.DurationMinutes = int(now.Sub(*r.CheckInTime) / time.Minute)
	r.UpdatedAt = now
	return nil
}

// IsCheckedOut はチェックアウト済みかを返す
func (r *Record) IsCheckedOut() bool {
	return r.CheckOutTime != nil
}
