package product

import (
	"slices"

	"github.com/leapstack-labs/olist/internal/agg"
)

// DefaultAgg is the category aggregation used when none is given.
const DefaultAgg = "median"

// categoryMeasures are the aggregated columns of a category row.
var categoryMeasures = append(append([]string{}, featureColumns[1:len(featureColumns)-1]...), measures...)

var quantityColumn = slices.Index(categoryMeasures, "quantity")

// Category is the rollup of one product category. Values align with the
// numeric columns of the training set; a value is nil when every product
// of the category lacks it.
type Category struct {
	Category string
	Values   []*float64
}

// Value returns the aggregated value of column, or nil.
func (c Category) Value(column string) *float64 {
	i := slices.Index(categoryMeasures, column)
	if i < 0 {
		return nil
	}
	return c.Values[i]
}

// Categories is the per-category product table.
type Categories struct {
	Agg  string
	Rows []Category
}

// Categories aggregates the training set per category with the named
// aggregation. quantity is always the category total, whatever aggName is.
func (m *Metrics) Categories(aggName string) (Categories, error) {
	return Rollup(m.TrainingData(), aggName)
}

// Rollup groups td by category, applying aggName to every numeric column
// and summing quantity.
func Rollup(td TrainingData, aggName string) (Categories, error) {
	if aggName == "" {
		aggName = DefaultAgg
	}
	f, err := agg.Lookup(aggName)
	if err != nil {
		return Categories{}, err
	}

	groups := agg.GroupBy(td, func(r Training) (string, bool) { return agg.ID(r.Category) })
	out := Categories{Agg: aggName, Rows: make([]Category, len(groups))}
	for i, g := range groups {
		columns := make([][]*float64, len(categoryMeasures))
		for _, r := range g.Rows {
			for j, v := range r.numeric() {
				columns[j] = append(columns[j], v)
			}
		}

		values := make([]*float64, len(categoryMeasures))
		for j, col := range columns {
			values[j] = agg.Nullable(f, col)
		}
		values[quantityColumn] = agg.Nullable(agg.Sum, columns[quantityColumn])

		out.Rows[i] = Category{Category: g.Key, Values: values}
	}
	return out, nil
}

// Columns implements core.Table.
func (c Categories) Columns() []string {
	return append([]string{"category"}, categoryMeasures...)
}

// Len implements core.Table.
func (c Categories) Len() int { return len(c.Rows) }

// Row implements core.Table.
func (c Categories) Row(i int) []any {
	r := c.Rows[i]
	row := []any{r.Category}
	for _, v := range r.Values {
		row = append(row, cell(v))
	}
	return row
}
