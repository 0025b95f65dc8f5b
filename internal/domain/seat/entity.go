package seat

import "time"

// Status は座席の状態を表す
// 予約の有無を示すキャッシュ値であり、競合判定の真実の源ではない点に注意
// （競合判定は常に予約集合から再導出する）
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusReserved    Status = "reserved" // 管理者による確保
)

// Seat は図書館の座席エンティティを表す
type Seat struct {
	ID             string
	Number         int
	Status         Status
	HasPowerOutlet bool
	IsAccessible   bool
	PhotoURL       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(number int, hasPowerOutlet, isAccessible bool) *Seat {
	now := time.Now()
	return &Seat{
		Number:         number,
		Status:         StatusAvailable,
		HasPowerOutlet: hasPowerOutlet,
		IsAccessible:   isAccessible,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsBookable は管理上の状態として予約受付可能かを返す
// occupied は他の予約が存在するだけなので拒否しない（時間帯が重ならなければ予約できる）
func (s *Seat) IsBookable() bool {
	return s.Status != StatusMaintenance && s.Status != StatusReserved
}

// MarkOccupied は座席のキャッシュ状態を使用中にする
func (s *Seat) MarkOccupied() {
	s.Status = StatusOccupied
	s.UpdatedAt = time.Now()
}

// MarkAvailable は座席のキャッシュ状態を空席にする
func (s *Seat) MarkAvailable() {
	s.Status = StatusAvailable
	s.UpdatedAt = time.Now()
}

// SetAdminStatus は管理者操作による状態変更を行う
func (s *Seat) SetAdminStatus(status Status) error {
	switch status {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusReserved:
		s.Status = status
		s.UpdatedAt = time.Now()
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.Number <= 0 {
		return ErrInvalidSeatNumber
	}
	return nil
}
