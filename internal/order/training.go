package order

import (
	"github.com/leapstack-labs/olist/internal/agg"
)

// Options selects the order training set variant.
type Options struct {
	DeliveredOnly bool
	WithDistance  bool
}

// DefaultOptions matches the usual training set: delivered orders, no distance.
func DefaultOptions() Options {
	return Options{DeliveredOnly: true}
}

// Training is one row of the order training set.
type Training struct {
	WaitTime
	NumberOfSellers  int     `json:"number_of_sellers"`
	NumberOfProducts int     `json:"number_of_products"`
	DimIsFiveStar    int     `json:"dim_is_five_star"`
	DimIsOneStar     int     `json:"dim_is_one_star"`
	ReviewScore      int     `json:"review_score"`
	Price            float64 `json:"price"`
	FreightValue     float64 `json:"freight_value"`
	// DistanceSellerCustomer is nil unless the distance was requested.
	DistanceSellerCustomer *float64 `json:"distance_seller_customer,omitempty"`
}

// TrainingData is the order training set.
type TrainingData struct {
	Rows         []Training
	WithDistance bool
}

// TrainingData inner-joins wait time, seller count, product count, review
// score and price on order_id, plus the distance when requested. Orders
// missing any component drop out; orders with several reviews fan out.
func (m *Metrics) TrainingData(opts Options) *TrainingData {
	sellers := agg.Unique(m.NumberOfSellers(), func(r SellerCount) (string, bool) { return r.OrderID, true })
	products := agg.Unique(m.NumberOfProducts(), func(r ProductCount) (string, bool) { return r.OrderID, true })
	reviews := agg.Index(m.ReviewScore(), func(r ReviewScore) (string, bool) { return agg.ID(r.OrderID) })
	prices := agg.Unique(m.PriceAndFreight(), func(r PriceAndFreight) (string, bool) { return r.OrderID, true })

	var distances map[string]Distance
	if opts.WithDistance {
		distances = agg.Unique(m.DistanceSellerCustomer(), func(r Distance) (string, bool) { return r.OrderID, true })
	}

	out := &TrainingData{WithDistance: opts.WithDistance}
	for _, w := range m.WaitTime(opts.DeliveredOnly) {
		s, ok := sellers[w.OrderID]
		if !ok {
			continue
		}
		p, ok := products[w.OrderID]
		if !ok {
			continue
		}
		price, ok := prices[w.OrderID]
		if !ok {
			continue
		}
		var dist *float64
		if opts.WithDistance {
			d, ok := distances[w.OrderID]
			if !ok {
				continue
			}
			dist = &d.DistanceSellerCustomer
		}

		for _, r := range reviews[w.OrderID] {
			out.Rows = append(out.Rows, Training{
				WaitTime:               w,
				NumberOfSellers:        s.NumberOfSellers,
				NumberOfProducts:       p.NumberOfProducts,
				DimIsFiveStar:          r.DimIsFiveStar,
				DimIsOneStar:           r.DimIsOneStar,
				ReviewScore:            r.ReviewScore,
				Price:                  price.Price,
				FreightValue:           price.FreightValue,
				DistanceSellerCustomer: dist,
			})
		}
	}
	return out
}

// Columns implements core.Table.
func (t *TrainingData) Columns() []string {
	cols := append(WaitTimes(nil).Columns(),
		"number_of_sellers", "number_of_products",
		"dim_is_five_star", "dim_is_one_star", "review_score",
		"price", "freight_value")
	if t.WithDistance {
		cols = append(cols, "distance_seller_customer")
	}
	return cols
}

// Len implements core.Table.
func (t *TrainingData) Len() int { return len(t.Rows) }

// Row implements core.Table.
func (t *TrainingData) Row(i int) []any {
	r := t.Rows[i]
	row := append(WaitTimes{r.WaitTime}.Row(0),
		r.NumberOfSellers, r.NumberOfProducts,
		r.DimIsFiveStar, r.DimIsOneStar, r.ReviewScore,
		r.Price, r.FreightValue)
	if t.WithDistance {
		row = append(row, *r.DistanceSellerCustomer)
	}
	return row
}
