package order

import (
	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/geo"
	"github.com/leapstack-labs/olist/pkg/core"
)

// DistanceSellerCustomer returns the mean great-circle distance in km
// between customer and seller zip centroids per order. Matching rows whose
// customer, seller or either zip centroid is unknown are dropped.
func (m *Metrics) DistanceSellerCustomer() Distances {
	centroids := geo.Centroids(m.data.Geolocation)
	customers := agg.Unique(m.data.Customers, func(c core.Customer) (string, bool) { return agg.ID(c.CustomerID) })
	sellers := agg.Unique(m.data.Sellers, func(s core.Seller) (string, bool) { return agg.ID(s.SellerID) })

	type leg struct {
		orderID string
		km      float64
	}
	var legs []leg
	for _, r := range m.matching {
		c, ok := customers[r.CustomerID]
		if !ok {
			continue
		}
		s, ok := sellers[r.SellerID]
		if !ok {
			continue
		}
		cp, ok := centroids[c.ZipCodePrefix]
		if !ok {
			continue
		}
		sp, ok := centroids[s.ZipCodePrefix]
		if !ok {
			continue
		}
		legs = append(legs, leg{orderID: r.OrderID, km: geo.Distance(cp, sp)})
	}

	groups := agg.GroupBy(legs, func(l leg) (string, bool) { return agg.ID(l.orderID) })
	out := make(Distances, len(groups))
	for i, g := range groups {
		out[i] = Distance{
			OrderID:                g.Key,
			DistanceSellerCustomer: agg.Mean(agg.Floats(g.Rows, func(l leg) float64 { return l.km })),
		}
	}
	return out
}
