package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuItem is a name/price pair used for menu seeding.
type MenuItem struct {
	Name  string
	Price decimal.Decimal
}

// DefaultMenu is the six-item menu a fresh install starts with.
var DefaultMenu = []MenuItem{
	{Name: "ブレンドコーヒー", Price: decimal.NewFromInt(450)},
	{Name: "アイスコーヒー", Price: decimal.NewFromInt(450)},
	{Name: "カフェラテ", Price: decimal.NewFromInt(550)},
	{Name: "オレンジジュース", Price: decimal.NewFromInt(400)},
	{Name: "ミックスサンド", Price: decimal.NewFromInt(650)},
	{Name: "チーズケーキ", Price: decimal.NewFromInt(500)},
}

// DefaultMenuParams returns DefaultMenu in seed-query form.
func DefaultMenuParams() SeedDefaultProductsParams {
	names := make([]string, len(DefaultMenu))
	prices := make([]pgtype.Numeric, len(DefaultMenu))
	for i, m := range DefaultMenu {
		names[i] = m.Name
		prices[i] = pgtype.Numeric{Int: m.Price.BigInt(), Valid: true}
	}
	return SeedDefaultProductsParams{Names: names, Prices: prices}
}

const listProducts = `
SELECT id, name, price, created_at, updated_at
FROM products
ORDER BY created_at ASC
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const createProduct = `
INSERT INTO products (name, price)
VALUES ($1, $2)
RETURNING id, name, price, created_at, updated_at
`

type CreateProductParams struct {
	Name  string
	Price pgtype.Numeric
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, createProduct, arg.Name, arg.Price).
		Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const updateProduct = `
UPDATE products
SET name = $2, price = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, price, created_at, updated_at
`

type UpdateProductParams struct {
	ID    uuid.UUID
	Name  string
	Price pgtype.Numeric
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, updateProduct, arg.ID, arg.Name, arg.Price).
		Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteProduct, id).Scan(&deleted)
	return deleted, err
}

const seedDefaultProducts = `
INSERT INTO products (name, price)
SELECT n, p
FROM unnest($1::text[], $2::numeric[]) AS d(n, p)
WHERE NOT EXISTS (SELECT 1 FROM products)
`

type SeedDefaultProductsParams struct {
	Names  []string
	Prices []pgtype.Numeric
}

// SeedDefaultProducts inserts the default menu only when the table is
// empty. The single-statement NOT EXISTS guard keeps two concurrent first
// polls from double-seeding.
func (q *Queries) SeedDefaultProducts(ctx context.Context, arg SeedDefaultProductsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, seedDefaultProducts, arg.Names, arg.Prices)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
