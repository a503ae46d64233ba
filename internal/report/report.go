// Package report computes daily sales summaries. Everything is a full
// recomputation over the day's orders; at stall scale there is nothing to
// gain from incremental aggregation.
package report

import (
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/yatai-pos/api/internal/database"
)

// Summary is the aggregated view of one day's sales. Money values are
// strings with two decimal places.
type Summary struct {
	TotalRevenue      string        `json:"total_revenue"`
	OrderCount        int           `json:"order_count"`
	AverageOrderValue string        `json:"average_order_value"`
	ProductSales      []ProductSale `json:"product_sales"`
	PaymentSales      []PaymentSale `json:"payment_sales"`
	HourlySales       []HourlySale  `json:"hourly_sales"`
}

// ProductSale is one product's quantity and revenue for the day.
type ProductSale struct {
	ProductName  string `json:"product_name"`
	QuantitySold int64  `json:"quantity_sold"`
	TotalRevenue string `json:"total_revenue"`
}

// PaymentSale is one payment method's order count and revenue for the day.
type PaymentSale struct {
	PaymentMethod string `json:"payment_method"`
	OrderCount    int64  `json:"order_count"`
	TotalRevenue  string `json:"total_revenue"`
}

// HourlySale is one local-hour bucket of the 24-bucket revenue histogram.
type HourlySale struct {
	Hour         int    `json:"hour"`
	OrderCount   int64  `json:"order_count"`
	TotalRevenue string `json:"total_revenue"`
}

type nameAgg struct {
	name    string
	count   int64
	revenue decimal.Decimal
}

// Build reduces a day's sales orders into a Summary. Hour buckets are in
// loc local time. Callers pass orders already filtered to sales statuses
// (active and completed); Build does not re-filter.
func Build(orders []database.Order, loc *time.Location) Summary {
	total := decimal.Zero
	products := make(map[string]*nameAgg)
	payments := make(map[string]*nameAgg)

	var hourRevenue [24]decimal.Decimal
	var hourCount [24]int64

	for _, o := range orders {
		amount := numericToDecimal(o.TotalAmount)
		total = total.Add(amount)

		hour := o.CreatedAt.In(loc).Hour()
		hourRevenue[hour] = hourRevenue[hour].Add(amount)
		hourCount[hour]++

		pay := aggFor(payments, o.PaymentMethod)
		pay.count++
		pay.revenue = pay.revenue.Add(amount)

		for _, item := range o.Items {
			prod := aggFor(products, item.ProductName)
			prod.count += int64(item.Quantity)
			prod.revenue = prod.revenue.Add(item.Amount)
		}
	}

	s := Summary{
		TotalRevenue:      total.StringFixed(2),
		OrderCount:        len(orders),
		AverageOrderValue: "0.00",
		ProductSales:      []ProductSale{},
		PaymentSales:      []PaymentSale{},
		HourlySales:       make([]HourlySale, 24),
	}

	if len(orders) > 0 {
		avg := total.Div(decimal.NewFromInt(int64(len(orders)))).Round(0)
		s.AverageOrderValue = avg.StringFixed(2)
	}

	for _, agg := range ranked(products) {
		s.ProductSales = append(s.ProductSales, ProductSale{
			ProductName:  agg.name,
			QuantitySold: agg.count,
			TotalRevenue: agg.revenue.StringFixed(2),
		})
	}

	for _, agg := range ranked(payments) {
		s.PaymentSales = append(s.PaymentSales, PaymentSale{
			PaymentMethod: agg.name,
			OrderCount:    agg.count,
			TotalRevenue:  agg.revenue.StringFixed(2),
		})
	}

	for h := 0; h < 24; h++ {
		s.HourlySales[h] = HourlySale{
			Hour:         h,
			OrderCount:   hourCount[h],
			TotalRevenue: hourRevenue[h].StringFixed(2),
		}
	}

	return s
}

func aggFor(m map[string]*nameAgg, name string) *nameAgg {
	agg := m[name]
	if agg == nil {
		agg = &nameAgg{name: name, revenue: decimal.Zero}
		m[name] = agg
	}
	return agg
}

// ranked flattens an aggregation map into a slice ordered by revenue
// descending, ties broken by name ascending so output is deterministic.
func ranked(m map[string]*nameAgg) []*nameAgg {
	out := make([]*nameAgg, 0, len(m))
	for _, agg := range m {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].revenue.Cmp(out[j].revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].name < out[j].name
	})
	return out
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
