package seller

import (
	"math"
	"time"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/shopspring/decimal"
)

const (
	// SalesCut is the share of sales the marketplace keeps as revenue.
	SalesCut = 0.1

	// MonthlyFee is the fixed platform fee charged per active month.
	MonthlyFee = 80.0

	// DaysPerMonth is the mean Gregorian month length.
	DaysPerMonth = 30.436875
)

// ActiveMonths is the number of whole months between first and last sale,
// with a floor of one month.
func ActiveMonths(first, last time.Time) float64 {
	days := last.Sub(first).Hours() / 24
	months := math.Floor(days / DaysPerMonth)
	if months == 0 {
		return 1
	}
	return months
}

// roundMoney rounds to cents the way numpy does: the binary value is
// scaled by 100, rounded half to even, and scaled back. Cents are shifted
// back exactly so the result is the float nearest to whole cents.
func roundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	cents := math.RoundToEven(v * 100)
	return decimal.NewFromFloat(cents).Shift(-2).InexactFloat64()
}

// TrainingData inner-joins features, delay and wait time, active dates,
// review score, quantity and sales on seller_id. Revenues are the sales
// cut plus the monthly fee over the active window; profits subtract the
// cost of bad reviews. Sellers without known active dates are dropped.
func (m *Metrics) TrainingData() TrainingData {
	delays := agg.Unique(m.DelayWaitTime(), func(r DelayWaitTime) (string, bool) { return agg.ID(r.SellerID) })
	active := agg.Unique(m.ActiveDates(), func(r ActiveDates) (string, bool) {
		return r.SellerID, r.SellerID != "" && r.FirstSale != nil && r.LastSale != nil
	})
	reviews := agg.Unique(m.ReviewScore(), func(r ReviewScore) (string, bool) { return agg.ID(r.SellerID) })
	quantities := agg.Unique(m.Quantity(), func(r Quantity) (string, bool) { return agg.ID(r.SellerID) })
	sales := agg.Unique(m.Sales(), func(r Sales) (string, bool) { return agg.ID(r.SellerID) })

	var out TrainingData
	for _, f := range m.Features() {
		d, ok := delays[f.SellerID]
		if !ok {
			continue
		}
		a, ok := active[f.SellerID]
		if !ok {
			continue
		}
		r, ok := reviews[f.SellerID]
		if !ok {
			continue
		}
		q, ok := quantities[f.SellerID]
		if !ok {
			continue
		}
		s, ok := sales[f.SellerID]
		if !ok {
			continue
		}

		costMonthly := ActiveMonths(*a.FirstSale, *a.LastSale) * MonthlyFee
		revenues := roundMoney(SalesCut*s.Sales + costMonthly)
		out = append(out, Training{
			Features:         f,
			WaitTime:         d.WaitTime,
			DelayToCarrier:   d.DelayToCarrier,
			FirstSale:        *a.FirstSale,
			LastSale:         *a.LastSale,
			ShareOfFiveStars: r.ShareOfFiveStars,
			ShareOfOneStars:  r.ShareOfOneStars,
			ReviewScore:      r.ReviewScore,
			Costs:            r.Costs,
			NOrders:          q.NOrders,
			Quantity:         q.Quantity,
			QuantityPerOrder: q.QuantityPerOrder,
			Sales:            s.Sales,
			Revenues:         revenues,
			Profits:          revenues - r.Costs,
		})
	}
	return out
}
