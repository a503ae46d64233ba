package database

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettingKey is the key of the singleton configuration row.
const SettingKey = "app_config"

// DefaultMaxTicketNumber is the ceiling of the ticket ring when no
// configuration exists yet.
const DefaultMaxTicketNumber = 30

// DefaultPaymentMethods are the accepted payment methods seeded on first
// read.
var DefaultPaymentMethods = []string{"現金", "クレジットカード", "PayPay", "交通系IC"}

// DefaultCustomizations are the customization options seeded on first read.
// Price is the surcharge added to the line amount; zero-priced entries are
// preparation notes.
var DefaultCustomizations = []CustomOption{
	{Name: "氷少なめ", Price: decimal.Zero},
	{Name: "ネギ抜き", Price: decimal.Zero},
	{Name: "大盛り", Price: decimal.NewFromInt(100)},
	{Name: "テイクアウト", Price: decimal.Zero},
}

const getSetting = `
SELECT key, max_ticket_number, payment_methods, customizations, created_at, updated_at
FROM settings
WHERE key = $1
`

func (q *Queries) GetSetting(ctx context.Context) (Setting, error) {
	var s Setting
	err := q.db.QueryRow(ctx, getSetting, SettingKey).Scan(
		&s.Key,
		&s.MaxTicketNumber,
		&s.PaymentMethods,
		&s.Customizations,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

const insertDefaultSetting = `
INSERT INTO settings (key, max_ticket_number, payment_methods, customizations)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO NOTHING
`

// EnsureSetting lazily creates the singleton configuration with defaults
// and returns it. ON CONFLICT DO NOTHING makes concurrent first reads
// converge on a single row.
func (q *Queries) EnsureSetting(ctx context.Context) (Setting, error) {
	_, err := q.db.Exec(ctx, insertDefaultSetting,
		SettingKey,
		int32(DefaultMaxTicketNumber),
		DefaultPaymentMethods,
		DefaultCustomizations,
	)
	if err != nil {
		return Setting{}, err
	}
	return q.GetSetting(ctx)
}

const updateSetting = `
INSERT INTO settings (key, max_ticket_number, payment_methods, customizations)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
SET max_ticket_number = EXCLUDED.max_ticket_number,
    payment_methods   = EXCLUDED.payment_methods,
    customizations    = EXCLUDED.customizations,
    updated_at        = now()
RETURNING key, max_ticket_number, payment_methods, customizations, created_at, updated_at
`

type UpdateSettingParams struct {
	MaxTicketNumber int32
	PaymentMethods  []string
	Customizations  []CustomOption
}

func (q *Queries) UpdateSetting(ctx context.Context, arg UpdateSettingParams) (Setting, error) {
	var s Setting
	err := q.db.QueryRow(ctx, updateSetting,
		SettingKey,
		arg.MaxTicketNumber,
		arg.PaymentMethods,
		arg.Customizations,
	).Scan(
		&s.Key,
		&s.MaxTicketNumber,
		&s.PaymentMethods,
		&s.Customizations,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}
