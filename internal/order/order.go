// Package order derives per-order features: delivery timing, review
// outcome, basket composition, price and seller-customer distance.
package order

import (
	"time"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/matching"
	"github.com/leapstack-labs/olist/pkg/core"
)

// Metrics computes order features over a loaded dataset. It never
// modifies its inputs and is safe for concurrent use.
type Metrics struct {
	data     *core.Dataset
	matching matching.Table
}

// New returns order Metrics over data and its matching table.
func New(data *core.Dataset, mt matching.Table) *Metrics {
	return &Metrics{data: data, matching: mt}
}

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 {
	return d.Seconds() / 3600 / 24
}

// WaitTime returns delivery timing per order, in orders-table order.
// Orders lacking a purchase, customer delivery or estimated delivery
// timestamp are dropped. With deliveredOnly, only delivered orders count.
func (m *Metrics) WaitTime(deliveredOnly bool) WaitTimes {
	var out WaitTimes
	for _, o := range m.data.Orders {
		if deliveredOnly && o.Status != core.OrderStatusDelivered {
			continue
		}
		if o.Status == "" || o.PurchaseTimestamp == nil || o.DeliveredCustomerDate == nil || o.EstimatedDeliveryDate == nil {
			continue
		}

		delay := 0.0
		if !o.DeliveredCustomerDate.Before(*o.EstimatedDeliveryDate) {
			delay = Days(o.DeliveredCustomerDate.Sub(*o.EstimatedDeliveryDate))
		}

		out = append(out, WaitTime{
			OrderID:           o.OrderID,
			WaitTime:          Days(o.DeliveredCustomerDate.Sub(*o.PurchaseTimestamp)),
			ExpectedWaitTime:  Days(o.EstimatedDeliveryDate.Sub(*o.PurchaseTimestamp)),
			DelayVsExpected:   delay,
			Status:            o.Status,
			PurchaseTimestamp: *o.PurchaseTimestamp,
		})
	}
	return out
}

// ReviewScore returns one row per review with five- and one-star indicators.
func (m *Metrics) ReviewScore() ReviewScores {
	out := make(ReviewScores, len(m.data.OrderReviews))
	for i, r := range m.data.OrderReviews {
		out[i] = ReviewScore{
			OrderID:       r.OrderID,
			DimIsFiveStar: indicator(r.ReviewScore == 5),
			DimIsOneStar:  indicator(r.ReviewScore == 1),
			ReviewScore:   r.ReviewScore,
		}
	}
	return out
}

func indicator(b bool) int {
	if b {
		return 1
	}
	return 0
}

func itemsByOrder(items []core.OrderItem) []agg.Group[string, core.OrderItem] {
	return agg.GroupBy(items, func(it core.OrderItem) (string, bool) { return agg.ID(it.OrderID) })
}

// NumberOfProducts counts item rows per order.
func (m *Metrics) NumberOfProducts() ProductCounts {
	groups := itemsByOrder(m.data.OrderItems)
	out := make(ProductCounts, len(groups))
	for i, g := range groups {
		out[i] = ProductCount{OrderID: g.Key, NumberOfProducts: len(g.Rows)}
	}
	return out
}

// NumberOfSellers counts distinct sellers per order.
func (m *Metrics) NumberOfSellers() SellerCounts {
	groups := itemsByOrder(m.data.OrderItems)
	out := make(SellerCounts, len(groups))
	for i, g := range groups {
		out[i] = SellerCount{
			OrderID:         g.Key,
			NumberOfSellers: agg.CountDistinct(g.Rows, func(it core.OrderItem) string { return it.SellerID }),
		}
	}
	return out
}

// PriceAndFreight sums item price and freight per order.
func (m *Metrics) PriceAndFreight() PricesAndFreight {
	groups := itemsByOrder(m.data.OrderItems)
	out := make(PricesAndFreight, len(groups))
	for i, g := range groups {
		out[i] = PriceAndFreight{
			OrderID:      g.Key,
			Price:        agg.Sum(agg.Floats(g.Rows, func(it core.OrderItem) float64 { return it.Price })),
			FreightValue: agg.Sum(agg.Floats(g.Rows, func(it core.OrderItem) float64 { return it.FreightValue })),
		}
	}
	return out
}

// CostOfBadReview is the penalty attached to a review score.
func CostOfBadReview(score int) float64 {
	switch score {
	case 1:
		return 100
	case 2:
		return 50
	case 3:
		return 40
	default:
		return 0
	}
}
