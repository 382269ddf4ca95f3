package seller

import (
	"cmp"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/pkg/core"
)

// CategoryHistory rolls up the sellers whose dominant category is Category.
type CategoryHistory struct {
	Category    string  `json:"category"`
	NSellers    int     `json:"n_sellers"`
	Quantity    int     `json:"quantity"`
	Sales       float64 `json:"sales"`
	Revenues    float64 `json:"revenues"`
	Profits     float64 `json:"profits"`
	ReviewScore float64 `json:"review_score"`
}

// HistoryTable is the seller_history table, sorted by category.
type HistoryTable []CategoryHistory

// DominantCategories maps each seller to the category with the most item
// rows, breaking ties by category name. categories maps product_id to its
// English category; items of uncategorised products are ignored.
func DominantCategories(items []core.OrderItem, categories map[string]string) map[string]string {
	counts := make(map[string]map[string]int)
	for _, it := range items {
		cat, ok := categories[it.ProductID]
		if !ok || it.SellerID == "" {
			continue
		}
		if counts[it.SellerID] == nil {
			counts[it.SellerID] = make(map[string]int)
		}
		counts[it.SellerID][cat]++
	}

	out := make(map[string]string, len(counts))
	for sellerID, byCat := range counts {
		best, bestN := "", 0
		for cat, n := range byCat {
			if n > bestN || (n == bestN && cmp.Less(cat, best)) {
				best, bestN = cat, n
			}
		}
		out[sellerID] = best
	}
	return out
}

// History groups the seller training set by each seller's dominant
// category. Sellers without a dominant category are skipped.
func (m *Metrics) History(td TrainingData, categories map[string]string) HistoryTable {
	dominant := DominantCategories(m.data.OrderItems, categories)

	groups := agg.GroupBy(td, func(r Training) (string, bool) {
		cat, ok := dominant[r.SellerID]
		return cat, ok
	})
	out := make(HistoryTable, len(groups))
	for i, g := range groups {
		h := CategoryHistory{Category: g.Key, NSellers: len(g.Rows)}
		for _, r := range g.Rows {
			h.Quantity += r.Quantity
			h.Sales += r.Sales
			h.Revenues += r.Revenues
			h.Profits += r.Profits
		}
		h.ReviewScore = agg.Mean(agg.Floats(g.Rows, func(r Training) float64 { return r.ReviewScore }))
		out[i] = h
	}
	return out
}

// Columns implements core.Table.
func (t HistoryTable) Columns() []string {
	return []string{"category", "n_sellers", "quantity", "sales", "revenues", "profits", "review_score"}
}

// Len implements core.Table.
func (t HistoryTable) Len() int { return len(t) }

// Row implements core.Table.
func (t HistoryTable) Row(i int) []any {
	h := t[i]
	return []any{h.Category, h.NSellers, h.Quantity, h.Sales, h.Revenues, h.Profits, h.ReviewScore}
}
