package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は支払の状態を表す
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

// Payment は支払レコードを表す
// 予約とはゼロまたは1対1の関係を持ち、予約より先に作成されることもある
type Payment struct {
	ID            string
	Status        Status
	Amount        *decimal.Decimal // 審査者が後から記入するためnull許容
	Plan          *string
	ProofRef      *string // 支払証憑（スクリーンショット等）への参照。保存自体は外部の責務
	TransactionID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPending は審査待ちの支払レコードを作成する
// 証憑だけが提出されたケースでは金額を空のまま合成する
func NewPending(proofRef *string, plan *string) *Payment {
	now := time.Now()
	return &Payment{
		Status:    StatusPending,
		Plan:      plan,
		ProofRef:  proofRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending は支払が審査待ちかを返す
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// Verify は審査者が金額を記入して支払を承認する
func (p *Payment) Verify(amount decimal.Decimal) error {
	if p.Status != StatusPending {
		return ErrPaymentNotPending
	}
	p.Status = StatusPaid
	p.Amount = &amount
	p.UpdatedAt = time.Now()
	return nil
}

// Reject は支払を却下する
func (p *Payment) Reject() error {
	if p.Status != StatusPending {
		return ErrPaymentNotPending
	}
	p.Status = StatusRejected
	p.UpdatedAt = time.Now()
	return nil
}
