package order

import (
	"time"

	"github.com/leapstack-labs/olist/pkg/core"
)

// WaitTime is the delivery timing of one order, in days.
type WaitTime struct {
	OrderID           string           `json:"order_id"`
	WaitTime          float64          `json:"wait_time"`
	ExpectedWaitTime  float64          `json:"expected_wait_time"`
	DelayVsExpected   float64          `json:"delay_vs_expected"`
	Status            core.OrderStatus `json:"order_status"`
	PurchaseTimestamp time.Time        `json:"order_purchase_timestamp"`
}

// WaitTimes is the wait_time table.
type WaitTimes []WaitTime

// Columns implements core.Table.
func (t WaitTimes) Columns() []string {
	return []string{"order_id", "wait_time", "expected_wait_time", "delay_vs_expected", "order_status", "order_purchase_timestamp"}
}

// Len implements core.Table.
func (t WaitTimes) Len() int { return len(t) }

// Row implements core.Table.
func (t WaitTimes) Row(i int) []any {
	r := t[i]
	return []any{r.OrderID, r.WaitTime, r.ExpectedWaitTime, r.DelayVsExpected, string(r.Status), r.PurchaseTimestamp}
}

// ReviewScore flags one review as five-star and/or one-star.
type ReviewScore struct {
	OrderID       string `json:"order_id"`
	DimIsFiveStar int    `json:"dim_is_five_star"`
	DimIsOneStar  int    `json:"dim_is_one_star"`
	ReviewScore   int    `json:"review_score"`
}

// ReviewScores is the review_score table.
type ReviewScores []ReviewScore

// Columns implements core.Table.
func (t ReviewScores) Columns() []string {
	return []string{"order_id", "dim_is_five_star", "dim_is_one_star", "review_score"}
}

// Len implements core.Table.
func (t ReviewScores) Len() int { return len(t) }

// Row implements core.Table.
func (t ReviewScores) Row(i int) []any {
	r := t[i]
	return []any{r.OrderID, r.DimIsFiveStar, r.DimIsOneStar, r.ReviewScore}
}

// ProductCount is the number of item rows of one order.
type ProductCount struct {
	OrderID          string `json:"order_id"`
	NumberOfProducts int    `json:"number_of_products"`
}

// ProductCounts is the number_of_products table.
type ProductCounts []ProductCount

// Columns implements core.Table.
func (t ProductCounts) Columns() []string { return []string{"order_id", "number_of_products"} }

// Len implements core.Table.
func (t ProductCounts) Len() int { return len(t) }

// Row implements core.Table.
func (t ProductCounts) Row(i int) []any { return []any{t[i].OrderID, t[i].NumberOfProducts} }

// SellerCount is the number of distinct sellers of one order.
type SellerCount struct {
	OrderID         string `json:"order_id"`
	NumberOfSellers int    `json:"number_of_sellers"`
}

// SellerCounts is the number_of_sellers table.
type SellerCounts []SellerCount

// Columns implements core.Table.
func (t SellerCounts) Columns() []string { return []string{"order_id", "number_of_sellers"} }

// Len implements core.Table.
func (t SellerCounts) Len() int { return len(t) }

// Row implements core.Table.
func (t SellerCounts) Row(i int) []any { return []any{t[i].OrderID, t[i].NumberOfSellers} }

// PriceAndFreight is the summed item price and freight of one order.
type PriceAndFreight struct {
	OrderID      string  `json:"order_id"`
	Price        float64 `json:"price"`
	FreightValue float64 `json:"freight_value"`
}

// PricesAndFreight is the price_and_freight table.
type PricesAndFreight []PriceAndFreight

// Columns implements core.Table.
func (t PricesAndFreight) Columns() []string { return []string{"order_id", "price", "freight_value"} }

// Len implements core.Table.
func (t PricesAndFreight) Len() int { return len(t) }

// Row implements core.Table.
func (t PricesAndFreight) Row(i int) []any {
	return []any{t[i].OrderID, t[i].Price, t[i].FreightValue}
}

// Distance is the mean seller-customer distance of one order, in km.
type Distance struct {
	OrderID                string  `json:"order_id"`
	DistanceSellerCustomer float64 `json:"distance_seller_customer"`
}

// Distances is the distance_seller_customer table.
type Distances []Distance

// Columns implements core.Table.
func (t Distances) Columns() []string { return []string{"order_id", "distance_seller_customer"} }

// Len implements core.Table.
func (t Distances) Len() int { return len(t) }

// Row implements core.Table.
func (t Distances) Row(i int) []any { return []any{t[i].OrderID, t[i].DistanceSellerCustomer} }

var (
	_ core.Table = WaitTimes(nil)
	_ core.Table = ReviewScores(nil)
	_ core.Table = ProductCounts(nil)
	_ core.Table = SellerCounts(nil)
	_ core.Table = PricesAndFreight(nil)
	_ core.Table = Distances(nil)
	_ core.Table = (*TrainingData)(nil)
)
