package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shibam-max/payment-processing-platform/internal/models"
)

type MerchantRepository struct {
	db *sql.DB
}

func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS merchants (
			id SERIAL PRIMARY KEY,
			merchant_id VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			address TEXT,
			country VARCHAR(3),
			currency VARCHAR(3),
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merchants_merchant_id ON merchants(merchant_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	// Seed a few merchants so the service is usable out of the box.
	_, err := r.db.Exec(`
		INSERT INTO merchants (merchant_id, name, email, country, currency, is_active)
		VALUES
			('M1', 'Acme Retail', 'billing@acme.example', 'USA', 'USD', true),
			('M2', 'Globex Online', 'pay@globex.example', 'GBR', 'GBP', true),
			('M3', 'Initech Legacy', 'ap@initech.example', 'USA', 'USD', false)
		ON CONFLICT (merchant_id) DO NOTHING
	`)
	return err
}

func (r *MerchantRepository) FindByMerchantID(ctx context.Context, merchantID string) (*models.Merchant, error) {
	row := r.db.QueryRowContext(ctx, selectMerchant+` WHERE merchant_id = $1`, merchantID)

	merchant, err := scanMerchant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return merchant, nil
}

func (r *MerchantRepository) FindActive(ctx context.Context) ([]models.Merchant, error) {
	rows, err := r.db.QueryContext(ctx, selectMerchant+` WHERE is_active = true ORDER BY merchant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMerchants(rows)
}

func (r *MerchantRepository) FindByCountry(ctx context.Context, country string) ([]models.Merchant, error) {
	rows, err := r.db.QueryContext(ctx, selectMerchant+` WHERE country = $1 ORDER BY merchant_id`, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMerchants(rows)
}

// IsActiveMerchant reports whether the merchant exists and is active; an
// unknown merchant is simply inactive.
func (r *MerchantRepository) IsActiveMerchant(ctx context.Context, merchantID string) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `
		SELECT is_active FROM merchants WHERE merchant_id = $1
	`, merchantID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

const selectMerchant = `
	SELECT id, merchant_id, name, email, phone, address, country, currency,
		is_active, created_at, updated_at
	FROM merchants`

func scanMerchant(row rowScanner) (*models.Merchant, error) {
	var m models.Merchant
	var email, phone, address, country, currency sql.NullString
	err := row.Scan(&m.ID, &m.MerchantID, &m.Name, &email, &phone, &address,
		&country, &currency, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Email = email.String
	m.Phone = phone.String
	m.Address = address.String
	m.Country = country.String
	m.Currency = currency.String
	return &m, nil
}

func collectMerchants(rows *sql.Rows) ([]models.Merchant, error) {
	var merchants []models.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, *m)
	}
	return merchants, rows.Err()
}
