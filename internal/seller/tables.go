package seller

import (
	"time"

	"github.com/leapstack-labs/olist/pkg/core"
)

// Features is the location of a seller.
type Features struct {
	SellerID string `json:"seller_id"`
	City     string `json:"seller_city"`
	State    string `json:"seller_state"`
}

// FeatureTable is the seller_features table.
type FeatureTable []Features

// Columns implements core.Table.
func (t FeatureTable) Columns() []string { return []string{"seller_id", "seller_city", "seller_state"} }

// Len implements core.Table.
func (t FeatureTable) Len() int { return len(t) }

// Row implements core.Table.
func (t FeatureTable) Row(i int) []any { return []any{t[i].SellerID, t[i].City, t[i].State} }

// DelayWaitTime is the mean wait time and carrier delay of a seller, in days.
type DelayWaitTime struct {
	SellerID       string  `json:"seller_id"`
	WaitTime       float64 `json:"wait_time"`
	DelayToCarrier float64 `json:"delay_to_carrier"`
}

// DelayWaitTimes is the delay_wait_time table.
type DelayWaitTimes []DelayWaitTime

// Columns implements core.Table.
func (t DelayWaitTimes) Columns() []string {
	return []string{"seller_id", "wait_time", "delay_to_carrier"}
}

// Len implements core.Table.
func (t DelayWaitTimes) Len() int { return len(t) }

// Row implements core.Table.
func (t DelayWaitTimes) Row(i int) []any {
	return []any{t[i].SellerID, t[i].WaitTime, t[i].DelayToCarrier}
}

// ActiveDates bounds the approved sales of a seller.
type ActiveDates struct {
	SellerID  string     `json:"seller_id"`
	FirstSale *time.Time `json:"date_first_sale"`
	LastSale  *time.Time `json:"date_last_sale"`
}

// ActiveDatesTable is the active_dates table.
type ActiveDatesTable []ActiveDates

// Columns implements core.Table.
func (t ActiveDatesTable) Columns() []string {
	return []string{"seller_id", "date_first_sale", "date_last_sale"}
}

// Len implements core.Table.
func (t ActiveDatesTable) Len() int { return len(t) }

// Row implements core.Table.
func (t ActiveDatesTable) Row(i int) []any {
	return []any{t[i].SellerID, timeCell(t[i].FirstSale), timeCell(t[i].LastSale)}
}

func timeCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// ReviewScore aggregates the reviews of a seller.
type ReviewScore struct {
	SellerID         string  `json:"seller_id"`
	ShareOfFiveStars float64 `json:"share_of_five_stars"`
	ShareOfOneStars  float64 `json:"share_of_one_stars"`
	ReviewScore      float64 `json:"review_score"`
	Costs            float64 `json:"costs"`
}

// ReviewScores is the review_score table.
type ReviewScores []ReviewScore

// Columns implements core.Table.
func (t ReviewScores) Columns() []string {
	return []string{"seller_id", "share_of_five_stars", "share_of_one_stars", "review_score", "costs"}
}

// Len implements core.Table.
func (t ReviewScores) Len() int { return len(t) }

// Row implements core.Table.
func (t ReviewScores) Row(i int) []any {
	r := t[i]
	return []any{r.SellerID, r.ShareOfFiveStars, r.ShareOfOneStars, r.ReviewScore, r.Costs}
}

// Quantity counts the orders and units of a seller.
type Quantity struct {
	SellerID         string  `json:"seller_id"`
	NOrders          int     `json:"n_orders"`
	Quantity         int     `json:"quantity"`
	QuantityPerOrder float64 `json:"quantity_per_order"`
}

// Quantities is the quantity table.
type Quantities []Quantity

// Columns implements core.Table.
func (t Quantities) Columns() []string {
	return []string{"seller_id", "n_orders", "quantity", "quantity_per_order"}
}

// Len implements core.Table.
func (t Quantities) Len() int { return len(t) }

// Row implements core.Table.
func (t Quantities) Row(i int) []any {
	r := t[i]
	return []any{r.SellerID, r.NOrders, r.Quantity, r.QuantityPerOrder}
}

// Sales is the summed item price of a seller.
type Sales struct {
	SellerID string  `json:"seller_id"`
	Sales    float64 `json:"sales"`
}

// SalesTable is the sales table.
type SalesTable []Sales

// Columns implements core.Table.
func (t SalesTable) Columns() []string { return []string{"seller_id", "sales"} }

// Len implements core.Table.
func (t SalesTable) Len() int { return len(t) }

// Row implements core.Table.
func (t SalesTable) Row(i int) []any { return []any{t[i].SellerID, t[i].Sales} }

// Training is one row of the seller training set.
type Training struct {
	Features
	WaitTime         float64   `json:"wait_time"`
	DelayToCarrier   float64   `json:"delay_to_carrier"`
	FirstSale        time.Time `json:"date_first_sale"`
	LastSale         time.Time `json:"date_last_sale"`
	ShareOfFiveStars float64   `json:"share_of_five_stars"`
	ShareOfOneStars  float64   `json:"share_of_one_stars"`
	ReviewScore      float64   `json:"review_score"`
	Costs            float64   `json:"costs"`
	NOrders          int       `json:"n_orders"`
	Quantity         int       `json:"quantity"`
	QuantityPerOrder float64   `json:"quantity_per_order"`
	Sales            float64   `json:"sales"`
	Revenues         float64   `json:"revenues"`
	Profits          float64   `json:"profits"`
}

// TrainingData is the seller training set.
type TrainingData []Training

// Columns implements core.Table.
func (t TrainingData) Columns() []string {
	return []string{
		"seller_id", "seller_city", "seller_state", "wait_time", "delay_to_carrier",
		"date_first_sale", "date_last_sale", "share_of_five_stars", "share_of_one_stars",
		"review_score", "costs", "n_orders", "quantity", "quantity_per_order",
		"sales", "revenues", "profits",
	}
}

// Len implements core.Table.
func (t TrainingData) Len() int { return len(t) }

// Row implements core.Table.
func (t TrainingData) Row(i int) []any {
	r := t[i]
	return []any{
		r.SellerID, r.City, r.State, r.WaitTime, r.DelayToCarrier,
		r.FirstSale, r.LastSale, r.ShareOfFiveStars, r.ShareOfOneStars,
		r.ReviewScore, r.Costs, r.NOrders, r.Quantity, r.QuantityPerOrder,
		r.Sales, r.Revenues, r.Profits,
	}
}

var (
	_ core.Table = FeatureTable(nil)
	_ core.Table = DelayWaitTimes(nil)
	_ core.Table = ActiveDatesTable(nil)
	_ core.Table = ReviewScores(nil)
	_ core.Table = Quantities(nil)
	_ core.Table = SalesTable(nil)
	_ core.Table = TrainingData(nil)
	_ core.Table = HistoryTable(nil)
)
