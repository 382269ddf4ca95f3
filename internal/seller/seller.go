// Package seller derives per-seller features: delay to carrier, active
// window, review outcome, quantity, sales, and revenue and profit after
// the monthly platform fee.
package seller

import (
	"time"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/matching"
	"github.com/leapstack-labs/olist/internal/order"
	"github.com/leapstack-labs/olist/pkg/core"
)

// Metrics computes seller features. It is safe for concurrent use.
type Metrics struct {
	data     *core.Dataset
	matching matching.Table
	orders   *order.Metrics
}

// New returns seller Metrics. orders supplies review scores.
func New(data *core.Dataset, mt matching.Table, orders *order.Metrics) *Metrics {
	return &Metrics{data: data, matching: mt, orders: orders}
}

func bySeller(r matching.Row) (string, bool) { return agg.ID(r.SellerID) }

// Features passes through seller location.
func (m *Metrics) Features() FeatureTable {
	out := make(FeatureTable, len(m.data.Sellers))
	for i, s := range m.data.Sellers {
		out[i] = Features{SellerID: s.SellerID, City: s.City, State: s.State}
	}
	return out
}

// DelayWaitTime averages, per seller, the wait time of delivered orders
// and the delay between the shipping limit and the carrier hand-off. Each
// matching row fans out over every item of its order. A negative or
// unknown carrier delay counts as zero; rows without a wait time are dropped.
func (m *Metrics) DelayWaitTime() DelayWaitTimes {
	delivered := agg.Unique(m.data.Orders, func(o core.Order) (string, bool) {
		return o.OrderID, o.OrderID != "" && o.Status == core.OrderStatusDelivered
	})
	items := agg.Index(m.data.OrderItems, func(it core.OrderItem) (string, bool) { return agg.ID(it.OrderID) })

	type sample struct {
		sellerID string
		wait     float64
		delay    float64
	}
	var samples []sample
	for _, r := range m.matching {
		o, ok := delivered[r.OrderID]
		if !ok {
			continue
		}
		for _, it := range items[r.OrderID] {
			if o.PurchaseTimestamp == nil || o.DeliveredCustomerDate == nil {
				continue
			}
			samples = append(samples, sample{
				sellerID: r.SellerID,
				wait:     order.Days(o.DeliveredCustomerDate.Sub(*o.PurchaseTimestamp)),
				delay:    carrierDelay(o.DeliveredCarrierDate, it.ShippingLimitDate),
			})
		}
	}

	groups := agg.GroupBy(samples, func(s sample) (string, bool) { return agg.ID(s.sellerID) })
	out := make(DelayWaitTimes, len(groups))
	for i, g := range groups {
		out[i] = DelayWaitTime{
			SellerID:       g.Key,
			WaitTime:       agg.Mean(agg.Floats(g.Rows, func(s sample) float64 { return s.wait })),
			DelayToCarrier: agg.Mean(agg.Floats(g.Rows, func(s sample) float64 { return s.delay })),
		}
	}
	return out
}

func carrierDelay(carrier, limit *time.Time) float64 {
	if carrier == nil || limit == nil {
		return 0
	}
	if d := order.Days(carrier.Sub(*limit)); d > 0 {
		return d
	}
	return 0
}

// ActiveDates returns each seller's first and last approved sale. Null
// approval timestamps are skipped; both dates are nil when none is known.
func (m *Metrics) ActiveDates() ActiveDatesTable {
	approved := agg.Unique(m.data.Orders, func(o core.Order) (string, bool) { return agg.ID(o.OrderID) })

	groups := agg.GroupBy(m.matching, bySeller)
	out := make(ActiveDatesTable, 0, len(groups))
	for _, g := range groups {
		row := ActiveDates{SellerID: g.Key}
		matched := false
		for _, r := range g.Rows {
			o, ok := approved[r.OrderID]
			if !ok {
				continue
			}
			matched = true
			if o.ApprovedAt == nil {
				continue
			}
			if row.FirstSale == nil || o.ApprovedAt.Before(*row.FirstSale) {
				row.FirstSale = o.ApprovedAt
			}
			if row.LastSale == nil || o.ApprovedAt.After(*row.LastSale) {
				row.LastSale = o.ApprovedAt
			}
		}
		if matched {
			out = append(out, row)
		}
	}
	return out
}

// ReviewScore joins the (order, seller) rows of the matching table with
// order reviews and aggregates per seller: mean star shares, mean score
// and the summed cost of bad reviews.
func (m *Metrics) ReviewScore() ReviewScores {
	reviews := agg.Index(m.orders.ReviewScore(), func(r order.ReviewScore) (string, bool) { return agg.ID(r.OrderID) })

	type scored struct {
		sellerID string
		review   order.ReviewScore
	}
	var rows []scored
	for _, r := range m.matching {
		for _, rev := range reviews[r.OrderID] {
			rows = append(rows, scored{sellerID: r.SellerID, review: rev})
		}
	}

	groups := agg.GroupBy(rows, func(s scored) (string, bool) { return agg.ID(s.sellerID) })
	out := make(ReviewScores, len(groups))
	for i, g := range groups {
		out[i] = ReviewScore{
			SellerID:         g.Key,
			ShareOfFiveStars: agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.DimIsFiveStar) })),
			ShareOfOneStars:  agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.DimIsOneStar) })),
			ReviewScore:      agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.ReviewScore) })),
			Costs:            agg.Sum(agg.Floats(g.Rows, func(s scored) float64 { return order.CostOfBadReview(s.review.ReviewScore) })),
		}
	}
	return out
}

// Quantity counts, per seller, distinct orders, matched product rows and
// the mean number of product rows per order. Sellers without a single
// known order_id are skipped.
func (m *Metrics) Quantity() Quantities {
	groups := agg.GroupBy(m.matching, bySeller)
	out := make(Quantities, 0, len(groups))
	for _, g := range groups {
		perOrder := agg.GroupBy(g.Rows, func(r matching.Row) (string, bool) { return agg.ID(r.OrderID) })
		if len(perOrder) == 0 {
			continue
		}
		counts := make([]float64, 0, len(perOrder))
		quantity := 0
		for _, o := range perOrder {
			n := 0
			for _, r := range o.Rows {
				if r.ProductID != "" {
					n++
				}
			}
			counts = append(counts, float64(n))
			quantity += n
		}
		for _, r := range g.Rows {
			if r.OrderID == "" && r.ProductID != "" {
				quantity++
			}
		}

		out = append(out, Quantity{
			SellerID:         g.Key,
			NOrders:          len(perOrder),
			Quantity:         quantity,
			QuantityPerOrder: agg.Mean(counts),
		})
	}
	return out
}

// Sales sums item price per seller.
func (m *Metrics) Sales() SalesTable {
	groups := agg.GroupBy(m.data.OrderItems, func(it core.OrderItem) (string, bool) { return agg.ID(it.SellerID) })
	out := make(SalesTable, len(groups))
	for i, g := range groups {
		out[i] = Sales{
			SellerID: g.Key,
			Sales:    agg.Sum(agg.Floats(g.Rows, func(it core.OrderItem) float64 { return it.Price })),
		}
	}
	return out
}
