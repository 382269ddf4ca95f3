package product

import "github.com/leapstack-labs/olist/pkg/core"

// Features are the catalog attributes of a product with its English category.
type Features struct {
	ProductID         string   `json:"product_id"`
	NameLength        *float64 `json:"product_name_length"`
	DescriptionLength *float64 `json:"product_description_length"`
	PhotosQty         *float64 `json:"product_photos_qty"`
	WeightG           *float64 `json:"product_weight_g"`
	LengthCm          *float64 `json:"product_length_cm"`
	HeightCm          *float64 `json:"product_height_cm"`
	WidthCm           *float64 `json:"product_width_cm"`
	Category          string   `json:"category"`
}

var featureColumns = []string{
	"product_id", "product_name_length", "product_description_length", "product_photos_qty",
	"product_weight_g", "product_length_cm", "product_height_cm", "product_width_cm", "category",
}

func (f Features) dimensions() []*float64 {
	return []*float64{f.NameLength, f.DescriptionLength, f.PhotosQty, f.WeightG, f.LengthCm, f.HeightCm, f.WidthCm}
}

func (f Features) row() []any {
	row := []any{f.ProductID}
	for _, d := range f.dimensions() {
		row = append(row, cell(d))
	}
	return append(row, f.Category)
}

func cell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// FeatureTable is the product_features table.
type FeatureTable []Features

// Columns implements core.Table.
func (t FeatureTable) Columns() []string { return featureColumns }

// Len implements core.Table.
func (t FeatureTable) Len() int { return len(t) }

// Row implements core.Table.
func (t FeatureTable) Row(i int) []any { return t[i].row() }

// Price is the mean item price of a product.
type Price struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
}

// Prices is the price table.
type Prices []Price

// Columns implements core.Table.
func (t Prices) Columns() []string { return []string{"product_id", "price"} }

// Len implements core.Table.
func (t Prices) Len() int { return len(t) }

// Row implements core.Table.
func (t Prices) Row(i int) []any { return []any{t[i].ProductID, t[i].Price} }

// WaitTime is the mean delivery wait of a product, in days.
type WaitTime struct {
	ProductID string  `json:"product_id"`
	WaitTime  float64 `json:"wait_time"`
}

// WaitTimes is the wait_time table.
type WaitTimes []WaitTime

// Columns implements core.Table.
func (t WaitTimes) Columns() []string { return []string{"product_id", "wait_time"} }

// Len implements core.Table.
func (t WaitTimes) Len() int { return len(t) }

// Row implements core.Table.
func (t WaitTimes) Row(i int) []any { return []any{t[i].ProductID, t[i].WaitTime} }

// ReviewScore aggregates the reviews of a product.
type ReviewScore struct {
	ProductID        string  `json:"product_id"`
	ShareOfOneStars  float64 `json:"share_of_one_stars"`
	ShareOfFiveStars float64 `json:"share_of_five_stars"`
	ReviewScore      float64 `json:"review_score"`
	Cost             float64 `json:"cost"`
}

// ReviewScores is the review_score table.
type ReviewScores []ReviewScore

// Columns implements core.Table.
func (t ReviewScores) Columns() []string {
	return []string{"product_id", "share_of_one_stars", "share_of_five_stars", "review_score", "cost"}
}

// Len implements core.Table.
func (t ReviewScores) Len() int { return len(t) }

// Row implements core.Table.
func (t ReviewScores) Row(i int) []any {
	r := t[i]
	return []any{r.ProductID, r.ShareOfOneStars, r.ShareOfFiveStars, r.ReviewScore, r.Cost}
}

// Quantity counts the orders and units of a product.
type Quantity struct {
	ProductID string `json:"product_id"`
	NOrders   int    `json:"n_orders"`
	Quantity  int    `json:"quantity"`
}

// Quantities is the quantity table.
type Quantities []Quantity

// Columns implements core.Table.
func (t Quantities) Columns() []string { return []string{"product_id", "n_orders", "quantity"} }

// Len implements core.Table.
func (t Quantities) Len() int { return len(t) }

// Row implements core.Table.
func (t Quantities) Row(i int) []any { return []any{t[i].ProductID, t[i].NOrders, t[i].Quantity} }

// Sales is the summed item price of a product.
type Sales struct {
	ProductID string  `json:"product_id"`
	Sales     float64 `json:"sales"`
}

// SalesTable is the sales table.
type SalesTable []Sales

// Columns implements core.Table.
func (t SalesTable) Columns() []string { return []string{"product_id", "sales"} }

// Len implements core.Table.
func (t SalesTable) Len() int { return len(t) }

// Row implements core.Table.
func (t SalesTable) Row(i int) []any { return []any{t[i].ProductID, t[i].Sales} }

// Training is one row of the product training set.
type Training struct {
	Features
	WaitTime         float64 `json:"wait_time"`
	Price            float64 `json:"price"`
	ShareOfOneStars  float64 `json:"share_of_one_stars"`
	ShareOfFiveStars float64 `json:"share_of_five_stars"`
	ReviewScore      float64 `json:"review_score"`
	Cost             float64 `json:"cost"`
	NOrders          int     `json:"n_orders"`
	Quantity         int     `json:"quantity"`
	Sales            float64 `json:"sales"`
	Revenues         float64 `json:"revenues"`
	Profits          float64 `json:"profits"`
}

// measures lists the numeric columns after the features, in column order.
var measures = []string{
	"wait_time", "price", "share_of_one_stars", "share_of_five_stars", "review_score", "cost",
	"n_orders", "quantity", "sales", "revenues", "profits",
}

// numeric returns every numeric column of the row in column order.
func (r Training) numeric() []*float64 {
	vals := r.Features.dimensions()
	for _, v := range []float64{
		r.WaitTime, r.Price, r.ShareOfOneStars, r.ShareOfFiveStars, r.ReviewScore, r.Cost,
		float64(r.NOrders), float64(r.Quantity), r.Sales, r.Revenues, r.Profits,
	} {
		vals = append(vals, &v)
	}
	return vals
}

// TrainingData is the product training set.
type TrainingData []Training

// Columns implements core.Table.
func (t TrainingData) Columns() []string {
	return append(append([]string{}, featureColumns...), measures...)
}

// Len implements core.Table.
func (t TrainingData) Len() int { return len(t) }

// Row implements core.Table.
func (t TrainingData) Row(i int) []any {
	r := t[i]
	return append(r.Features.row(),
		r.WaitTime, r.Price, r.ShareOfOneStars, r.ShareOfFiveStars, r.ReviewScore, r.Cost,
		r.NOrders, r.Quantity, r.Sales, r.Revenues, r.Profits)
}

var (
	_ core.Table = FeatureTable(nil)
	_ core.Table = Prices(nil)
	_ core.Table = WaitTimes(nil)
	_ core.Table = ReviewScores(nil)
	_ core.Table = Quantities(nil)
	_ core.Table = SalesTable(nil)
	_ core.Table = TrainingData(nil)
	_ core.Table = Categories{}
)
