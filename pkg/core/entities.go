package core

import "time"

// TimestampLayout is the literal layout of every timestamp column in the source files.
const TimestampLayout = "2006-01-02 15:04:05"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses found in the dataset.
const (
	OrderStatusCreated     OrderStatus = "created"
	OrderStatusApproved    OrderStatus = "approved"
	OrderStatusInvoiced    OrderStatus = "invoiced"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCanceled    OrderStatus = "canceled"
	OrderStatusUnavailable OrderStatus = "unavailable"
	OrderStatusProcessing  OrderStatus = "processing"
)

// Order is one row of the orders table.
// Timestamps are nil when absent or unparseable; monotonicity is not enforced.
type Order struct {
	OrderID               string      `mapstructure:"order_id" json:"order_id"`
	CustomerID            string      `mapstructure:"customer_id" json:"customer_id"`
	Status                OrderStatus `mapstructure:"order_status" json:"order_status"`
	PurchaseTimestamp     *time.Time  `mapstructure:"order_purchase_timestamp" json:"order_purchase_timestamp"`
	ApprovedAt            *time.Time  `mapstructure:"order_approved_at" json:"order_approved_at"`
	DeliveredCarrierDate  *time.Time  `mapstructure:"order_delivered_carrier_date" json:"order_delivered_carrier_date"`
	DeliveredCustomerDate *time.Time  `mapstructure:"order_delivered_customer_date" json:"order_delivered_customer_date"`
	EstimatedDeliveryDate *time.Time  `mapstructure:"order_estimated_delivery_date" json:"order_estimated_delivery_date"`
}

// OrderItem is one line of an order, keyed by (OrderID, ItemSequence).
type OrderItem struct {
	OrderID           string     `mapstructure:"order_id" json:"order_id"`
	ItemSequence      int        `mapstructure:"order_item_id" json:"order_item_id"`
	ProductID         string     `mapstructure:"product_id" json:"product_id"`
	SellerID          string     `mapstructure:"seller_id" json:"seller_id"`
	ShippingLimitDate *time.Time `mapstructure:"shipping_limit_date" json:"shipping_limit_date"`
	Price             float64    `mapstructure:"price" json:"price"`
	FreightValue      float64    `mapstructure:"freight_value" json:"freight_value"`
}

// OrderReview is a customer review attached to an order. Score is 1..5.
type OrderReview struct {
	ReviewID    string `mapstructure:"review_id" json:"review_id"`
	OrderID     string `mapstructure:"order_id" json:"order_id"`
	ReviewScore int    `mapstructure:"review_score" json:"review_score"`
}

// OrderPayment is one payment instalment plan of an order.
type OrderPayment struct {
	OrderID             string  `mapstructure:"order_id" json:"order_id"`
	PaymentSequential   int     `mapstructure:"payment_sequential" json:"payment_sequential"`
	PaymentType         string  `mapstructure:"payment_type" json:"payment_type"`
	PaymentInstallments int     `mapstructure:"payment_installments" json:"payment_installments"`
	PaymentValue        float64 `mapstructure:"payment_value" json:"payment_value"`
}

// Product describes a catalog product. CategoryName is the raw (untranslated) name.
type Product struct {
	ProductID         string   `mapstructure:"product_id" json:"product_id"`
	CategoryName      string   `mapstructure:"product_category_name" json:"product_category_name"`
	NameLength        *float64 `mapstructure:"product_name_length" json:"product_name_length"`
	DescriptionLength *float64 `mapstructure:"product_description_length" json:"product_description_length"`
	PhotosQty         *float64 `mapstructure:"product_photos_qty" json:"product_photos_qty"`
	WeightG           *float64 `mapstructure:"product_weight_g" json:"product_weight_g"`
	LengthCm          *float64 `mapstructure:"product_length_cm" json:"product_length_cm"`
	HeightCm          *float64 `mapstructure:"product_height_cm" json:"product_height_cm"`
	WidthCm           *float64 `mapstructure:"product_width_cm" json:"product_width_cm"`
}

// Seller is a marketplace seller.
type Seller struct {
	SellerID      string `mapstructure:"seller_id" json:"seller_id"`
	ZipCodePrefix string `mapstructure:"seller_zip_code_prefix" json:"seller_zip_code_prefix"`
	City          string `mapstructure:"seller_city" json:"seller_city"`
	State         string `mapstructure:"seller_state" json:"seller_state"`
}

// Customer is the per-order customer identity.
type Customer struct {
	CustomerID       string `mapstructure:"customer_id" json:"customer_id"`
	CustomerUniqueID string `mapstructure:"customer_unique_id" json:"customer_unique_id"`
	ZipCodePrefix    string `mapstructure:"customer_zip_code_prefix" json:"customer_zip_code_prefix"`
	City             string `mapstructure:"customer_city" json:"customer_city"`
	State            string `mapstructure:"customer_state" json:"customer_state"`
}

// Geolocation is one coordinate sample for a zip code prefix.
// Many rows share a prefix.
type Geolocation struct {
	ZipCodePrefix string   `mapstructure:"geolocation_zip_code_prefix" json:"geolocation_zip_code_prefix"`
	Lat           *float64 `mapstructure:"geolocation_lat" json:"geolocation_lat"`
	Lng           *float64 `mapstructure:"geolocation_lng" json:"geolocation_lng"`
}

// CategoryTranslation maps a raw category name to its English label.
type CategoryTranslation struct {
	CategoryName        string `mapstructure:"product_category_name" json:"product_category_name"`
	CategoryNameEnglish string `mapstructure:"product_category_name_english" json:"product_category_name_english"`
}

// Dataset holds the nine raw tables. It is read-only after load.
type Dataset struct {
	Geolocation          []Geolocation
	CategoryTranslations []CategoryTranslation
	Customers            []Customer
	Sellers              []Seller
	OrderPayments        []OrderPayment
	Orders               []Order
	OrderReviews         []OrderReview
	OrderItems           []OrderItem
	Products             []Product
}

// Counts returns the number of rows per entity name.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		EntityGeolocation:          len(d.Geolocation),
		EntityCategoryTranslations: len(d.CategoryTranslations),
		EntityCustomers:            len(d.Customers),
		EntitySellers:              len(d.Sellers),
		EntityOrderPayments:        len(d.OrderPayments),
		EntityOrders:               len(d.Orders),
		EntityOrderReviews:         len(d.OrderReviews),
		EntityOrderItems:           len(d.OrderItems),
		EntityProducts:             len(d.Products),
	}
}
