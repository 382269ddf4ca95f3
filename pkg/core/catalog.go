package core

import "strings"

// Logical entity names.
const (
	EntityGeolocation          = "geolocation"
	EntityCategoryTranslations = "product_category_name_translation"
	EntityCustomers            = "customers"
	EntitySellers              = "sellers"
	EntityOrderPayments        = "order_payments"
	EntityOrders               = "orders"
	EntityOrderReviews         = "order_reviews"
	EntityOrderItems           = "order_items"
	EntityProducts             = "products"
)

// ColumnKind is the scalar type a source column is coerced to.
type ColumnKind int

// Column kinds.
const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
	KindTimestamp
)

// ColumnSpec declares one column an entity requires.
type ColumnSpec struct {
	Name string
	Kind ColumnKind
	// Aliases are alternate header spellings accepted for this column.
	Aliases []string
}

// EntitySpec is the static catalog entry for one source table.
type EntitySpec struct {
	Name    string
	File    string
	Columns []ColumnSpec
}

// Column returns the spec of the named column.
func (e EntitySpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

func str(name string) ColumnSpec { return ColumnSpec{Name: name, Kind: KindString} }
func num(name string) ColumnSpec { return ColumnSpec{Name: name, Kind: KindFloat} }
func integer(name string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindInt}
}
func ts(name string) ColumnSpec { return ColumnSpec{Name: name, Kind: KindTimestamp} }

// Entities is the catalog of the nine source tables in load order.
var Entities = []EntitySpec{
	{
		Name: EntityGeolocation,
		File: "olist_geolocation_dataset.csv",
		Columns: []ColumnSpec{
			str("geolocation_zip_code_prefix"), num("geolocation_lat"), num("geolocation_lng"),
		},
	},
	{
		Name: EntityCategoryTranslations,
		File: "product_category_name_translation.csv",
		Columns: []ColumnSpec{
			str("product_category_name"), str("product_category_name_english"),
		},
	},
	{
		Name: EntityCustomers,
		File: "olist_customers_dataset.csv",
		Columns: []ColumnSpec{
			str("customer_id"), str("customer_unique_id"), str("customer_zip_code_prefix"),
			str("customer_city"), str("customer_state"),
		},
	},
	{
		Name: EntitySellers,
		File: "olist_sellers_dataset.csv",
		Columns: []ColumnSpec{
			str("seller_id"), str("seller_zip_code_prefix"), str("seller_city"), str("seller_state"),
		},
	},
	{
		Name: EntityOrderPayments,
		File: "olist_order_payments_dataset.csv",
		Columns: []ColumnSpec{
			str("order_id"), integer("payment_sequential"), str("payment_type"),
			integer("payment_installments"), num("payment_value"),
		},
	},
	{
		Name: EntityOrders,
		File: "olist_orders_dataset.csv",
		Columns: []ColumnSpec{
			str("order_id"), str("customer_id"), str("order_status"),
			ts("order_purchase_timestamp"), ts("order_approved_at"),
			ts("order_delivered_carrier_date"), ts("order_delivered_customer_date"),
			ts("order_estimated_delivery_date"),
		},
	},
	{
		Name: EntityOrderReviews,
		File: "olist_order_reviews_dataset.csv",
		Columns: []ColumnSpec{
			str("review_id"), str("order_id"), integer("review_score"),
		},
	},
	{
		Name: EntityOrderItems,
		File: "olist_order_items_dataset.csv",
		Columns: []ColumnSpec{
			str("order_id"), integer("order_item_id"), str("product_id"), str("seller_id"),
			ts("shipping_limit_date"), num("price"), num("freight_value"),
		},
	},
	{
		Name: EntityProducts,
		File: "olist_products_dataset.csv",
		Columns: []ColumnSpec{
			str("product_id"), str("product_category_name"),
			{Name: "product_name_length", Kind: KindFloat, Aliases: []string{"product_name_lenght"}},
			{Name: "product_description_length", Kind: KindFloat, Aliases: []string{"product_description_lenght"}},
			num("product_photos_qty"), num("product_weight_g"),
			num("product_length_cm"), num("product_height_cm"), num("product_width_cm"),
		},
	},
}

// LookupEntity returns the catalog entry for a logical name.
func LookupEntity(name string) (EntitySpec, bool) {
	for _, e := range Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntitySpec{}, false
}

// EntityName derives the logical entity name from a source file name by
// stripping the "_dataset.csv" and ".csv" suffixes and the "olist_" prefix.
func EntityName(file string) string {
	name := strings.Replace(file, "_dataset.csv", "", 1)
	name = strings.Replace(name, ".csv", "", 1)
	return strings.Replace(name, "olist_", "", 1)
}
