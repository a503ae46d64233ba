package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (ticket_number, items, total_amount, status, payment_method, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, ticket_number, items, total_amount, status, payment_method, note, created_at, updated_at
`

type CreateOrderParams struct {
	TicketNumber  string
	Items         []OrderItem
	TotalAmount   pgtype.Numeric
	Status        OrderStatus
	PaymentMethod string
	Note          string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.TicketNumber,
		arg.Items,
		arg.TotalAmount,
		arg.Status,
		arg.PaymentMethod,
		arg.Note,
	)
	return scanOrder(row)
}

const getOrder = `
SELECT id, ticket_number, items, total_amount, status, payment_method, note, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const listOrders = `
SELECT id, ticket_number, items, total_amount, status, payment_method, note, created_at, updated_at
FROM orders
ORDER BY created_at DESC
`

// ListOrders returns every order, newest first. The data scale of a single
// stall keeps this unbounded read cheap; the kitchen and history screens
// poll it whole.
func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listSalesOrdersByRange = `
SELECT id, ticket_number, items, total_amount, status, payment_method, note, created_at, updated_at
FROM orders
WHERE created_at >= $1
  AND created_at < $2
  AND status IN ('active', 'completed')
ORDER BY created_at ASC
`

type ListSalesOrdersByRangeParams struct {
	StartDate time.Time
	EndDate   time.Time
}

// ListSalesOrdersByRange returns the orders that count as sales within
// [StartDate, EndDate). Pending orders are held, not sold, so they are
// excluded.
func (q *Queries) ListSalesOrdersByRange(ctx context.Context, arg ListSalesOrdersByRangeParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listSalesOrdersByRange, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listActiveTicketNumbers = `
SELECT ticket_number
FROM orders
WHERE status IN ('active', 'pending')
`

// ListActiveTicketNumbers returns the ticket numbers currently checked out
// (orders in active or pending state). Duplicates are possible: several
// order submissions may share one physical ticket.
func (q *Queries) ListActiveTicketNumbers(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listActiveTicketNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

const getLastTicketNumber = `
SELECT ticket_number
FROM orders
ORDER BY created_at DESC
LIMIT 1
`

// GetLastTicketNumber returns the ticket number of the most recent order.
// Returns pgx.ErrNoRows when no order has ever been placed.
func (q *Queries) GetLastTicketNumber(ctx context.Context) (string, error) {
	var t string
	err := q.db.QueryRow(ctx, getLastTicketNumber).Scan(&t)
	return t, err
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
  AND status <> 'completed'
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status OrderStatus
}

// UpdateOrderStatus moves a single order to the given state. Completed
// orders are immutable and a missing id is a no-op; the affected row count
// is returned so callers can tell, but neither case is an error.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateOrderStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const updateOrdersStatusByTicket = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE ticket_number = $1
  AND status <> 'completed'
`

type UpdateOrdersStatusByTicketParams struct {
	TicketNumber string
	Status       OrderStatus
}

// UpdateOrdersStatusByTicket moves every open order under a ticket number
// to the given state. A ticket number is reused after completion, so the
// status guard keeps historical completed orders out of the update.
func (q *Queries) UpdateOrdersStatusByTicket(ctx context.Context, arg UpdateOrdersStatusByTicketParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateOrdersStatusByTicket, arg.TicketNumber, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteAllOrders = `DELETE FROM orders`

// DeleteAllOrders wipes the orders table. Development use only.
func (q *Queries) DeleteAllOrders(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllOrders)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.TicketNumber,
		&o.Items,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentMethod,
		&o.Note,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

type rowsIter interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func collectOrders(rows rowsIter) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
