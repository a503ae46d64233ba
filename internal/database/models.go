package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. Orders are created active, may
// be parked as pending (customer absent) and restored, and end completed.
// Completed is terminal.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

func (s *OrderStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*s = OrderStatus(v)
	case string:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// IsValid reports whether s is one of the three known lifecycle states.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusActive, OrderStatusPending, OrderStatusCompleted:
		return true
	}
	return false
}

// CustomOption is a named add-on with a price delta. The delta may be
// negative (e.g. a discount for omitting an ingredient).
type CustomOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem is a line of an order. Amount is the already-computed line
// total including option surcharges, snapshotted at order time.
type OrderItem struct {
	ProductName     string          `json:"product_name"`
	Quantity        int32           `json:"quantity"`
	Amount          decimal.Decimal `json:"amount"`
	Detail          string          `json:"detail,omitempty"`
	SelectedOptions []CustomOption  `json:"selected_options,omitempty"`
}

// Order is a stored order. TicketNumber is a string-encoded positive
// integer and is reused across time once the order completes.
type Order struct {
	ID            uuid.UUID
	TicketNumber  string
	Items         []OrderItem
	TotalAmount   pgtype.Numeric
	Status        OrderStatus
	PaymentMethod string
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Product is a menu item. Orders copy name and price at creation time, so
// products can be edited or deleted without rewriting history.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Setting is the singleton application configuration, keyed app_config.
type Setting struct {
	Key             string
	MaxTicketNumber int32
	PaymentMethods  []string
	Customizations  []CustomOption
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// User is a staff login record.
type User struct {
	ID             uuid.UUID
	UserID         string
	HashedPassword string
	CreatedAt      time.Time
}
