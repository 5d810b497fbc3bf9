package clean

import (
	"strconv"

	"salesetl/internal/records"
)

// Order is a cleaned orders_table (fact) row. Every string field is a foreign
// key into one of the dimension tables.
type Order struct {
	DateUUID        string
	UserUUID        string
	CardNumber      string
	StoreCode       string
	ProductCode     string
	ProductQuantity int
}

// OrderColumns is the canonical orders_table column order.
var OrderColumns = []string{
	"date_uuid", "user_uuid", "card_number", "store_code", "product_code",
	"product_quantity",
}

var orderInputColumns = []string{
	"date_uuid", "user_uuid", "card_number", "store_code", "product_code",
	"product_quantity",
}

// OrderRows projects orders into warehouse rows in OrderColumns order.
func OrderRows(os []Order) [][]any {
	rows := make([][]any, len(os))
	for i, o := range os {
		rows[i] = []any{
			o.DateUUID, o.UserUUID, o.CardNumber, o.StoreCode, o.ProductCode,
			o.ProductQuantity,
		}
	}
	return rows
}

// Orders cleans a raw order batch. The source table arrives pre-deduplicated;
// cleaning is a projection that discards the staging columns (row indexes,
// denormalized names, the unnamed "1" column) and coerces the quantity.
func Orders(in []records.Record) ([]Order, error) {
	if err := requireColumns("order", in, orderInputColumns...); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(in))
	for _, r := range in {
		qty, err := strconv.Atoi(r.String("product_quantity"))
		if err != nil {
			continue
		}
		out = append(out, Order{
			DateUUID:        r.String("date_uuid"),
			UserUUID:        r.String("user_uuid"),
			CardNumber:      r.String("card_number"),
			StoreCode:       r.String("store_code"),
			ProductCode:     r.String("product_code"),
			ProductQuantity: qty,
		})
	}
	return out, nil
}
