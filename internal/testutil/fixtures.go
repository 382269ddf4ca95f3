package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/olist/pkg/core"
)

// Time parses a timestamp in the dataset layout. It panics on bad input.
func Time(s string) *time.Time {
	t, err := time.Parse(core.TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// SampleCSV holds a small, consistent copy of the nine source files.
//
// Orders: o1 delivered two days before its estimate, o2 delivered three
// days late, o3 still shipped. Product p3 has no category.
var SampleCSV = map[string]string{
	"olist_geolocation_dataset.csv": `geolocation_zip_code_prefix,geolocation_lat,geolocation_lng,geolocation_city,geolocation_state
01046,-23.5,-46.6,sao paulo,SP
01046,-23.6,-46.7,sao paulo,SP
13023,-22.9,-47.06,campinas,SP
20010,-22.9,-43.17,rio de janeiro,RJ
`,
	"product_category_name_translation.csv": `product_category_name,product_category_name_english
beleza_saude,health_beauty
informatica_acessorios,computers_accessories
`,
	"olist_customers_dataset.csv": `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
c1,u1,20010,rio de janeiro,RJ
c2,u2,01046,sao paulo,SP
c3,u3,13023,campinas,SP
`,
	"olist_sellers_dataset.csv": `seller_id,seller_zip_code_prefix,seller_city,seller_state
s1,01046,sao paulo,SP
s2,13023,campinas,SP
`,
	"olist_order_payments_dataset.csv": `order_id,payment_sequential,payment_type,payment_installments,payment_value
o1,1,credit_card,2,165.00
o2,1,boleto,1,132.00
o3,1,voucher,1,33.00
`,
	"olist_orders_dataset.csv": `order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2018-01-01 10:00:00,2018-01-01 11:00:00,2018-01-03 10:00:00,2018-01-06 10:00:00,2018-01-08 10:00:00
o2,c2,delivered,2018-02-01 00:00:00,2018-02-01 06:00:00,2018-02-05 00:00:00,2018-02-13 00:00:00,2018-02-10 00:00:00
o3,c3,shipped,2018-03-01 00:00:00,2018-03-02 00:00:00,2018-03-03 00:00:00,,2018-03-20 00:00:00
`,
	"olist_order_reviews_dataset.csv": `review_id,order_id,review_score,review_comment_title,review_comment_message,review_creation_date,review_answer_timestamp
r1,o1,5,,,2018-01-07 00:00:00,2018-01-08 00:00:00
r2,o2,1,,atrasou,2018-02-14 00:00:00,2018-02-15 00:00:00
r3,o3,3,,,2018-03-21 00:00:00,2018-03-22 00:00:00
`,
	"olist_order_items_dataset.csv": `order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value
o1,1,p1,s1,2018-01-04 10:00:00,100.00,10.00
o1,2,p2,s2,2018-01-02 10:00:00,50.00,5.00
o2,1,p1,s1,2018-02-03 00:00:00,120.00,12.00
o3,1,p3,s2,2018-03-05 00:00:00,30.00,3.00
`,
	"olist_products_dataset.csv": `product_id,product_category_name,product_name_lenght,product_description_lenght,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm
p1,beleza_saude,40,300,2,500,20,10,15
p2,informatica_acessorios,55,800,4,1200,30,8,25
p3,,,,,250,10,10,10
`,
}

// WriteSampleCSV writes SampleCSV into dir.
func WriteSampleCSV(t testing.TB, dir string) {
	t.Helper()
	for name, content := range SampleCSV {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// SampleDataset returns the records SampleCSV decodes to.
func SampleDataset() *core.Dataset {
	return &core.Dataset{
		Geolocation: []core.Geolocation{
			{ZipCodePrefix: "01046", Lat: Float(-23.5), Lng: Float(-46.6)},
			{ZipCodePrefix: "01046", Lat: Float(-23.6), Lng: Float(-46.7)},
			{ZipCodePrefix: "13023", Lat: Float(-22.9), Lng: Float(-47.06)},
			{ZipCodePrefix: "20010", Lat: Float(-22.9), Lng: Float(-43.17)},
		},
		CategoryTranslations: []core.CategoryTranslation{
			{CategoryName: "beleza_saude", CategoryNameEnglish: "health_beauty"},
			{CategoryName: "informatica_acessorios", CategoryNameEnglish: "computers_accessories"},
		},
		Customers: []core.Customer{
			{CustomerID: "c1", CustomerUniqueID: "u1", ZipCodePrefix: "20010", City: "rio de janeiro", State: "RJ"},
			{CustomerID: "c2", CustomerUniqueID: "u2", ZipCodePrefix: "01046", City: "sao paulo", State: "SP"},
			{CustomerID: "c3", CustomerUniqueID: "u3", ZipCodePrefix: "13023", City: "campinas", State: "SP"},
		},
		Sellers: []core.Seller{
			{SellerID: "s1", ZipCodePrefix: "01046", City: "sao paulo", State: "SP"},
			{SellerID: "s2", ZipCodePrefix: "13023", City: "campinas", State: "SP"},
		},
		OrderPayments: []core.OrderPayment{
			{OrderID: "o1", PaymentSequential: 1, PaymentType: "credit_card", PaymentInstallments: 2, PaymentValue: 165},
			{OrderID: "o2", PaymentSequential: 1, PaymentType: "boleto", PaymentInstallments: 1, PaymentValue: 132},
			{OrderID: "o3", PaymentSequential: 1, PaymentType: "voucher", PaymentInstallments: 1, PaymentValue: 33},
		},
		Orders: []core.Order{
			{
				OrderID: "o1", CustomerID: "c1", Status: core.OrderStatusDelivered,
				PurchaseTimestamp:     Time("2018-01-01 10:00:00"),
				ApprovedAt:            Time("2018-01-01 11:00:00"),
				DeliveredCarrierDate:  Time("2018-01-03 10:00:00"),
				DeliveredCustomerDate: Time("2018-01-06 10:00:00"),
				EstimatedDeliveryDate: Time("2018-01-08 10:00:00"),
			},
			{
				OrderID: "o2", CustomerID: "c2", Status: core.OrderStatusDelivered,
				PurchaseTimestamp:     Time("2018-02-01 00:00:00"),
				ApprovedAt:            Time("2018-02-01 06:00:00"),
				DeliveredCarrierDate:  Time("2018-02-05 00:00:00"),
				DeliveredCustomerDate: Time("2018-02-13 00:00:00"),
				EstimatedDeliveryDate: Time("2018-02-10 00:00:00"),
			},
			{
				OrderID: "o3", CustomerID: "c3", Status: core.OrderStatusShipped,
				PurchaseTimestamp:     Time("2018-03-01 00:00:00"),
				ApprovedAt:            Time("2018-03-02 00:00:00"),
				DeliveredCarrierDate:  Time("2018-03-03 00:00:00"),
				EstimatedDeliveryDate: Time("2018-03-20 00:00:00"),
			},
		},
		OrderReviews: []core.OrderReview{
			{ReviewID: "r1", OrderID: "o1", ReviewScore: 5},
			{ReviewID: "r2", OrderID: "o2", ReviewScore: 1},
			{ReviewID: "r3", OrderID: "o3", ReviewScore: 3},
		},
		OrderItems: []core.OrderItem{
			{OrderID: "o1", ItemSequence: 1, ProductID: "p1", SellerID: "s1", ShippingLimitDate: Time("2018-01-04 10:00:00"), Price: 100, FreightValue: 10},
			{OrderID: "o1", ItemSequence: 2, ProductID: "p2", SellerID: "s2", ShippingLimitDate: Time("2018-01-02 10:00:00"), Price: 50, FreightValue: 5},
			{OrderID: "o2", ItemSequence: 1, ProductID: "p1", SellerID: "s1", ShippingLimitDate: Time("2018-02-03 00:00:00"), Price: 120, FreightValue: 12},
			{OrderID: "o3", ItemSequence: 1, ProductID: "p3", SellerID: "s2", ShippingLimitDate: Time("2018-03-05 00:00:00"), Price: 30, FreightValue: 3},
		},
		Products: []core.Product{
			{
				ProductID: "p1", CategoryName: "beleza_saude",
				NameLength: Float(40), DescriptionLength: Float(300), PhotosQty: Float(2),
				WeightG: Float(500), LengthCm: Float(20), HeightCm: Float(10), WidthCm: Float(15),
			},
			{
				ProductID: "p2", CategoryName: "informatica_acessorios",
				NameLength: Float(55), DescriptionLength: Float(800), PhotosQty: Float(4),
				WeightG: Float(1200), LengthCm: Float(30), HeightCm: Float(8), WidthCm: Float(25),
			},
			{
				ProductID: "p3",
				WeightG:   Float(250), LengthCm: Float(10), HeightCm: Float(10), WidthCm: Float(10),
			},
		},
	}
}
