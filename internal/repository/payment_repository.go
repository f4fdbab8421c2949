package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shibam-max/payment-processing-platform/internal/models"
)

// ErrStatusConflict is returned when a status update loses the
// compare-and-swap: the row was not in the expected source status.
var ErrStatusConflict = errors.New("payment status changed concurrently")

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			transaction_id VARCHAR(255) UNIQUE NOT NULL,
			user_id BIGINT NOT NULL,
			amount DECIMAL(15,2) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			status VARCHAR(50) NOT NULL,
			payment_method VARCHAR(50) NOT NULL,
			merchant_id VARCHAR(255),
			description TEXT,
			gateway_response TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_transaction_id ON payments(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_merchant_id ON payments(merchant_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payments (transaction_id, user_id, amount, currency, status,
			payment_method, merchant_id, description, gateway_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`, payment.TransactionID, payment.UserID, payment.Amount, payment.Currency,
		payment.Status, payment.PaymentMethod, payment.MerchantID,
		payment.Description, payment.GatewayResponse, payment.CreatedAt,
	).Scan(&payment.ID)
}

// UpdateStatus commits a transition only if the row is still in the expected
// source status. Zero rows affected means another writer got there first.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, transactionID string, from, to models.PaymentStatus, gatewayResponse string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, gateway_response = $2, updated_at = NOW()
		WHERE transaction_id = $3 AND status = $4
	`, to, gatewayResponse, transactionID, from)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, selectPayment+` WHERE transaction_id = $1`, transactionID)

	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectPayment+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) FindByUserIDAndStatus(ctx context.Context, userID int64, status models.PaymentStatus) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectPayment+` WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) FindByMerchantID(ctx context.Context, merchantID string) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectPayment+` WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments WHERE user_id = $1 AND created_at > $2
	`, userID, since).Scan(&count)
	return count, err
}

func (r *PaymentRepository) TotalAmountByMerchantAndStatus(ctx context.Context, merchantID string, status models.PaymentStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE merchant_id = $1 AND status = $2
	`, merchantID, status).Scan(&total)
	return total, err
}

func (r *PaymentRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM payments WHERE transaction_id = $1)
	`, transactionID).Scan(&exists)
	return exists, err
}

const selectPayment = `
	SELECT id, transaction_id, user_id, amount, currency, status,
		payment_method, merchant_id, description, gateway_response,
		created_at, updated_at
	FROM payments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var merchantID, description, gatewayResponse sql.NullString
	err := row.Scan(&p.ID, &p.TransactionID, &p.UserID, &p.Amount, &p.Currency,
		&p.Status, &p.PaymentMethod, &merchantID, &description, &gatewayResponse,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.MerchantID = merchantID.String
	p.Description = description.String
	p.GatewayResponse = gatewayResponse.String
	return &p, nil
}

func collectPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
