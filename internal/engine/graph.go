package engine

import (
	"fmt"

	"github.com/leapstack-labs/olist/internal/dag"
)

// Derivation names.
const (
	Matching          = "matching"
	Orders            = "orders"
	Products          = "products"
	ProductCategories = "product_categories"
	Sellers           = "sellers"
	SellerHistory     = "seller_history"
)

// DefaultDerivation is built when no derivation is requested.
const DefaultDerivation = Orders

var derivations = []struct {
	name        string
	description string
	deps        []string
}{
	{Matching, "order/review/customer/product/seller key table", nil},
	{Orders, "order-level training set", []string{Matching}},
	{Products, "product-level training set", []string{Matching}},
	{Sellers, "seller-level training set", []string{Matching}},
	{ProductCategories, "product training set rolled up per category", []string{Products}},
	{SellerHistory, "seller training set rolled up per dominant category", []string{Sellers, Products}},
}

// Graph returns the derivation dependency graph.
func Graph() *dag.Graph {
	g := dag.NewGraph()
	for _, d := range derivations {
		g.AddNode(d.name, d.description)
	}
	for _, d := range derivations {
		for _, dep := range d.deps {
			if err := g.AddEdge(dep, d.name); err != nil {
				panic(fmt.Sprintf("derivation graph: %v", err))
			}
		}
	}
	return g
}

// Names returns every derivation name, sorted.
func Names() []string {
	return Graph().Names()
}
