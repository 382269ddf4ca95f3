// Package matching builds the matching table: the bridge between the
// order, review, customer, product and seller granularities that every
// per-product and per-seller rollup is computed through.
package matching

import (
	"slices"

	"github.com/leapstack-labs/olist/pkg/core"
)

// Row is one matching combination. Missing identifiers are "".
type Row struct {
	OrderID    string `json:"order_id"`
	ReviewID   string `json:"review_id"`
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	SellerID   string `json:"seller_id"`
}

// Table is the matching table, sorted by order_id.
type Table []Row

// Columns implements core.Table.
func (t Table) Columns() []string {
	return []string{"order_id", "review_id", "customer_id", "product_id", "seller_id"}
}

// Len implements core.Table.
func (t Table) Len() int { return len(t) }

// Row implements core.Table.
func (t Table) Row(i int) []any {
	r := t[i]
	return []any{nullable(r.OrderID), nullable(r.ReviewID), nullable(r.CustomerID), nullable(r.ProductID), nullable(r.SellerID)}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Build full-outer-joins the orders projection (order_id, customer_id) with
// the reviews projection (review_id, order_id), then the result with the
// items projection (order_id, product_id, seller_id), all on order_id.
// Orders without reviews or items are kept with empty identifiers, and an
// order with several items and reviews fans out to their cross product.
func Build(ds *core.Dataset) (Table, error) {
	switch {
	case len(ds.Orders) == 0:
		return nil, &core.EmptyInputError{Entity: core.EntityOrders}
	case len(ds.OrderReviews) == 0:
		return nil, &core.EmptyInputError{Entity: core.EntityOrderReviews}
	case len(ds.OrderItems) == 0:
		return nil, &core.EmptyInputError{Entity: core.EntityOrderItems}
	}

	orders := make([]Row, len(ds.Orders))
	for i, o := range ds.Orders {
		orders[i] = Row{OrderID: o.OrderID, CustomerID: o.CustomerID}
	}
	reviews := make([]Row, len(ds.OrderReviews))
	for i, r := range ds.OrderReviews {
		reviews[i] = Row{OrderID: r.OrderID, ReviewID: r.ReviewID}
	}
	items := make([]Row, len(ds.OrderItems))
	for i, it := range ds.OrderItems {
		items[i] = Row{OrderID: it.OrderID, ProductID: it.ProductID, SellerID: it.SellerID}
	}

	return outerJoin(outerJoin(orders, reviews), items), nil
}

// outerJoin full-outer-joins left and right on OrderID. Output is grouped
// by ascending key; within a key, rows are the cross product in input order.
func outerJoin(left, right []Row) []Row {
	l := groupByOrder(left)
	r := groupByOrder(right)

	keys := make([]string, 0, len(l)+len(r))
	for k := range l {
		keys = append(keys, k)
	}
	for k := range r {
		if _, ok := l[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	out := make([]Row, 0, max(len(left), len(right)))
	for _, k := range keys {
		ls, rs := l[k], r[k]
		switch {
		case len(rs) == 0:
			out = append(out, ls...)
		case len(ls) == 0:
			out = append(out, rs...)
		default:
			for _, a := range ls {
				for _, b := range rs {
					out = append(out, merge(a, b))
				}
			}
		}
	}
	return out
}

func groupByOrder(rows []Row) map[string][]Row {
	g := make(map[string][]Row, len(rows))
	for _, r := range rows {
		g[r.OrderID] = append(g[r.OrderID], r)
	}
	return g
}

// merge combines two rows whose projections share only OrderID.
func merge(a, b Row) Row {
	if a.ReviewID == "" {
		a.ReviewID = b.ReviewID
	}
	if a.CustomerID == "" {
		a.CustomerID = b.CustomerID
	}
	if a.ProductID == "" {
		a.ProductID = b.ProductID
	}
	if a.SellerID == "" {
		a.SellerID = b.SellerID
	}
	return a
}

// Coverage counts distinct order ids by which sides of the join they matched.
type Coverage struct {
	Orders         int `json:"orders"`
	WithoutReviews int `json:"without_reviews"`
	WithoutItems   int `json:"without_items"`
	ReviewsNoOrder int `json:"reviews_without_order"`
	ItemsNoOrder   int `json:"items_without_order"`
}

// Coverage summarises how completely orders matched reviews and items.
// Rows coming from the orders side are recognised by their customer_id.
func (t Table) Coverage() Coverage {
	type flags struct{ order, review, item bool }
	seen := make(map[string]*flags)
	for _, r := range t {
		f, ok := seen[r.OrderID]
		if !ok {
			f = &flags{}
			seen[r.OrderID] = f
		}
		f.order = f.order || r.CustomerID != ""
		f.review = f.review || r.ReviewID != ""
		f.item = f.item || r.ProductID != "" || r.SellerID != ""
	}

	var c Coverage
	for _, f := range seen {
		switch {
		case f.order:
			c.Orders++
			if !f.review {
				c.WithoutReviews++
			}
			if !f.item {
				c.WithoutItems++
			}
		case f.review:
			c.ReviewsNoOrder++
		}
		if !f.order && f.item {
			c.ItemsNoOrder++
		}
	}
	return c
}

var _ core.Table = Table(nil)
