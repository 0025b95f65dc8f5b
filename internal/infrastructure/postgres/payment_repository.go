package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/payment"
	"github.com/sanosuguru/go-library-seat-booking/internal/domain/transaction"
)

type paymentRow struct {
	ID            string           `db:"id"`
	Status        string           `db:"status"`
	Amount        *decimal.Decimal `db:"amount"`
	Plan          *string          `db:"plan"`
	ProofRef      *string          `db:"proof_ref"`
	TransactionID *string          `db:"transaction_id"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: r.ID, Status: payment.Status(r.Status), Amount: r.Amount,
		Plan: r.Plan, ProofRef: r.ProofRef, TransactionID: r.TransactionID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const paymentColumns = `id, status, amount, plan, proof_ref, transaction_id, created_at, updated_at`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO payments (status, amount, plan, proof_ref, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		string(p.Status), p.Amount, p.Plan, p.ProofRef, p.TransactionID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status payment.Status, limit, offset int) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, string(status), limit, offset); err != nil {
		return nil, fmt.Errorf("支払一覧取得に失敗: %w", err)
	}
	result := make([]*payment.Payment, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE payments SET status = $1, amount = $2, transaction_id = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlxTx.ExecContext(ctx, query, string(p.Status), p.Amount, p.TransactionID, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("支払更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
