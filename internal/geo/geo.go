// Package geo computes zip code centroids and great-circle distances.
package geo

import (
	"math"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/pkg/core"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Point is a coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Haversine returns the great-circle distance in kilometres between
// (lng1, lat1) and (lng2, lat2), all in degrees.
func Haversine(lng1, lat1, lng2, lat2 float64) float64 {
	lng1, lat1 = radians(lng1), radians(lat1)
	lng2, lat2 = radians(lng2), radians(lat2)

	dlng := lng2 - lng1
	dlat := lat2 - lat1

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlng/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Distance is Haversine between two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lng, a.Lat, b.Lng, b.Lat)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Centroids averages latitude and longitude per zip code prefix. Each
// coordinate skips null samples; prefixes lacking either are left out.
func Centroids(rows []core.Geolocation) map[string]Point {
	groups := agg.Index(rows, func(g core.Geolocation) (string, bool) { return agg.ID(g.ZipCodePrefix) })

	out := make(map[string]Point, len(groups))
	for zip, samples := range groups {
		lats := make([]*float64, len(samples))
		lngs := make([]*float64, len(samples))
		for i, s := range samples {
			lats[i], lngs[i] = s.Lat, s.Lng
		}
		lat := agg.Nullable(agg.Mean, lats)
		lng := agg.Nullable(agg.Mean, lngs)
		if lat == nil || lng == nil {
			continue
		}
		out[zip] = Point{Lat: *lat, Lng: *lng}
	}
	return out
}
