// Package product derives per-product features: catalog attributes,
// pricing, delivery time, review outcome, quantity, sales and profit, and
// their per-category rollup.
package product

import (
	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/matching"
	"github.com/leapstack-labs/olist/internal/order"
	"github.com/leapstack-labs/olist/pkg/core"
)

// SalesCut is the share of sales the marketplace keeps as revenue.
const SalesCut = 0.1

// Metrics computes product features. It is safe for concurrent use.
type Metrics struct {
	data     *core.Dataset
	matching matching.Table
	orders   *order.Metrics
}

// New returns product Metrics. orders supplies wait times and review scores.
func New(data *core.Dataset, mt matching.Table, orders *order.Metrics) *Metrics {
	return &Metrics{data: data, matching: mt, orders: orders}
}

// Features joins products with their English category. Products whose
// category has no translation are dropped.
func (m *Metrics) Features() FeatureTable {
	translations := agg.Unique(m.data.CategoryTranslations, func(c core.CategoryTranslation) (string, bool) {
		return agg.ID(c.CategoryName)
	})

	var out FeatureTable
	for _, p := range m.data.Products {
		tr, ok := translations[p.CategoryName]
		if !ok {
			continue
		}
		out = append(out, Features{
			ProductID:         p.ProductID,
			NameLength:        p.NameLength,
			DescriptionLength: p.DescriptionLength,
			PhotosQty:         p.PhotosQty,
			WeightG:           p.WeightG,
			LengthCm:          p.LengthCm,
			HeightCm:          p.HeightCm,
			WidthCm:           p.WidthCm,
			Category:          tr.CategoryNameEnglish,
		})
	}
	return out
}

func itemsByProduct(items []core.OrderItem) []agg.Group[string, core.OrderItem] {
	return agg.GroupBy(items, func(it core.OrderItem) (string, bool) { return agg.ID(it.ProductID) })
}

func itemPrice(it core.OrderItem) float64 { return it.Price }

// Price returns the mean item price per product.
func (m *Metrics) Price() Prices {
	groups := itemsByProduct(m.data.OrderItems)
	out := make(Prices, len(groups))
	for i, g := range groups {
		out[i] = Price{ProductID: g.Key, Price: agg.Mean(agg.Floats(g.Rows, itemPrice))}
	}
	return out
}

// WaitTime averages delivered-order wait time per product over every
// matching row of the order, so review fanout weighs in.
func (m *Metrics) WaitTime() WaitTimes {
	waits := agg.Unique(m.orders.WaitTime(true), func(w order.WaitTime) (string, bool) { return agg.ID(w.OrderID) })

	type sample struct {
		productID string
		days      float64
	}
	var samples []sample
	for _, r := range m.matching {
		if w, ok := waits[r.OrderID]; ok {
			samples = append(samples, sample{productID: r.ProductID, days: w.WaitTime})
		}
	}

	groups := agg.GroupBy(samples, func(s sample) (string, bool) { return agg.ID(s.productID) })
	out := make(WaitTimes, len(groups))
	for i, g := range groups {
		out[i] = WaitTime{
			ProductID: g.Key,
			WaitTime:  agg.Mean(agg.Floats(g.Rows, func(s sample) float64 { return s.days })),
		}
	}
	return out
}

// ReviewScore joins the distinct (order, product) pairs of the matching
// table with order reviews and aggregates per product: mean star shares,
// mean score and the summed cost of bad reviews.
func (m *Metrics) ReviewScore() ReviewScores {
	reviews := agg.Index(m.orders.ReviewScore(), func(r order.ReviewScore) (string, bool) { return agg.ID(r.OrderID) })

	type pair struct{ orderID, productID string }
	type scored struct {
		productID string
		review    order.ReviewScore
	}

	seen := make(map[pair]struct{})
	var rows []scored
	for _, r := range m.matching {
		p := pair{r.OrderID, r.ProductID}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		for _, rev := range reviews[r.OrderID] {
			rows = append(rows, scored{productID: r.ProductID, review: rev})
		}
	}

	groups := agg.GroupBy(rows, func(s scored) (string, bool) { return agg.ID(s.productID) })
	out := make(ReviewScores, len(groups))
	for i, g := range groups {
		out[i] = ReviewScore{
			ProductID:        g.Key,
			ShareOfOneStars:  agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.DimIsOneStar) })),
			ShareOfFiveStars: agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.DimIsFiveStar) })),
			ReviewScore:      agg.Mean(agg.Floats(g.Rows, func(s scored) float64 { return float64(s.review.ReviewScore) })),
			Cost:             agg.Sum(agg.Floats(g.Rows, func(s scored) float64 { return order.CostOfBadReview(s.review.ReviewScore) })),
		}
	}
	return out
}

// Quantity counts distinct orders and item rows per product.
func (m *Metrics) Quantity() Quantities {
	groups := itemsByProduct(m.data.OrderItems)
	out := make(Quantities, len(groups))
	for i, g := range groups {
		out[i] = Quantity{
			ProductID: g.Key,
			NOrders:   agg.CountDistinct(g.Rows, func(it core.OrderItem) string { return it.OrderID }),
			Quantity:  len(g.Rows),
		}
	}
	return out
}

// Sales sums item price per product.
func (m *Metrics) Sales() SalesTable {
	groups := itemsByProduct(m.data.OrderItems)
	out := make(SalesTable, len(groups))
	for i, g := range groups {
		out[i] = Sales{ProductID: g.Key, Sales: agg.Sum(agg.Floats(g.Rows, itemPrice))}
	}
	return out
}

// TrainingData inner-joins features, wait time, price, review score,
// quantity and sales on product_id and derives revenues and profits.
func (m *Metrics) TrainingData() TrainingData {
	waits := agg.Unique(m.WaitTime(), func(r WaitTime) (string, bool) { return agg.ID(r.ProductID) })
	prices := agg.Unique(m.Price(), func(r Price) (string, bool) { return agg.ID(r.ProductID) })
	reviews := agg.Unique(m.ReviewScore(), func(r ReviewScore) (string, bool) { return agg.ID(r.ProductID) })
	quantities := agg.Unique(m.Quantity(), func(r Quantity) (string, bool) { return agg.ID(r.ProductID) })
	sales := agg.Unique(m.Sales(), func(r Sales) (string, bool) { return agg.ID(r.ProductID) })

	var out TrainingData
	for _, f := range m.Features() {
		w, ok := waits[f.ProductID]
		if !ok {
			continue
		}
		p, ok := prices[f.ProductID]
		if !ok {
			continue
		}
		r, ok := reviews[f.ProductID]
		if !ok {
			continue
		}
		q, ok := quantities[f.ProductID]
		if !ok {
			continue
		}
		s, ok := sales[f.ProductID]
		if !ok {
			continue
		}

		revenues := SalesCut * s.Sales
		out = append(out, Training{
			Features:         f,
			WaitTime:         w.WaitTime,
			Price:            p.Price,
			ShareOfOneStars:  r.ShareOfOneStars,
			ShareOfFiveStars: r.ShareOfFiveStars,
			ReviewScore:      r.ReviewScore,
			Cost:             r.Cost,
			NOrders:          q.NOrders,
			Quantity:         q.Quantity,
			Sales:            s.Sales,
			Revenues:         revenues,
			Profits:          revenues - r.Cost,
		})
	}
	return out
}
