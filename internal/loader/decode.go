package loader

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/olist/pkg/core"
)

// decodeRecords decodes coerced records into a slice of T using the
// mapstructure tags on the core record types.
func decodeRecords[T any](records []map[string]any) ([]T, error) {
	out := make([]T, 0, len(records))
	if len(records) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(records); err != nil {
		return nil, err
	}
	return out, nil
}

// assign decodes records into the Dataset field for entity.
func assign(ds *core.Dataset, entity string, records []map[string]any) error {
	var err error
	switch entity {
	case core.EntityGeolocation:
		ds.Geolocation, err = decodeRecords[core.Geolocation](records)
	case core.EntityCategoryTranslations:
		ds.CategoryTranslations, err = decodeRecords[core.CategoryTranslation](records)
	case core.EntityCustomers:
		ds.Customers, err = decodeRecords[core.Customer](records)
	case core.EntitySellers:
		ds.Sellers, err = decodeRecords[core.Seller](records)
	case core.EntityOrderPayments:
		ds.OrderPayments, err = decodeRecords[core.OrderPayment](records)
	case core.EntityOrders:
		ds.Orders, err = decodeRecords[core.Order](records)
	case core.EntityOrderReviews:
		ds.OrderReviews, err = decodeRecords[core.OrderReview](records)
	case core.EntityOrderItems:
		ds.OrderItems, err = decodeRecords[core.OrderItem](records)
	case core.EntityProducts:
		ds.Products, err = decodeRecords[core.Product](records)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	return err
}
