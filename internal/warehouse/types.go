package warehouse

// Destination table names. orders_table is the fact table; the dim_ tables
// are the dimensions its foreign keys reference.
const (
	TableUsers    = "dim_users"
	TableCards    = "dim_card_details"
	TableStores   = "dim_store_details"
	TableProducts = "dim_products"
	TableDates    = "dim_date_times"
	TableOrders   = "orders_table"
)

// Declared column types per table. Only columns listed here are cast;
// the rest keep their provisional load types.

// UserColumnTypes declares the dim_users schema.
func UserColumnTypes() map[string]string {
	return map[string]string{
		"first_name":    "VARCHAR(255)",
		"last_name":     "VARCHAR(255)",
		"country_code":  TypeVarcharAuto,
		"user_uuid":     "UUID",
		"join_date":     "DATE",
		"date_of_birth": "DATE",
	}
}

// CardColumnTypes declares the dim_card_details schema.
func CardColumnTypes() map[string]string {
	return map[string]string{
		"card_number":            TypeVarcharAuto,
		"expiry_date":            TypeVarcharAuto,
		"date_payment_confirmed": "DATE",
	}
}

// StoreColumnTypes declares the dim_store_details schema.
func StoreColumnTypes() map[string]string {
	return map[string]string{
		"store_type":    "VARCHAR(255)",
		"locality":      "VARCHAR(255)",
		"continent":     "VARCHAR(255)",
		"country_code":  TypeVarcharAuto,
		"store_code":    TypeVarcharAuto,
		"staff_numbers": "SMALLINT",
		"opening_date":  "DATE",
		"longitude":     "FLOAT",
		"latitude":      "FLOAT",
	}
}

// ProductColumnTypes declares the dim_products schema.
func ProductColumnTypes() map[string]string {
	return map[string]string{
		"product_price_£": "FLOAT",
		"weight_kg":       "FLOAT",
		"int_article_no":  TypeVarcharAuto,
		"product_code":    TypeVarcharAuto,
		"weight_class":    TypeVarcharAuto,
		"date_added":      "DATE",
		"uuid":            "UUID",
		"still_available": "BOOL",
	}
}

// DateColumnTypes declares the dim_date_times schema.
func DateColumnTypes() map[string]string {
	return map[string]string{
		"month":       TypeVarcharAuto,
		"year":        TypeVarcharAuto,
		"day":         TypeVarcharAuto,
		"time_period": TypeVarcharAuto,
		"date_uuid":   "UUID",
	}
}

// OrderColumnTypes declares the orders_table schema.
func OrderColumnTypes() map[string]string {
	return map[string]string{
		"date_uuid":        "UUID",
		"user_uuid":        "UUID",
		"card_number":      TypeVarcharAuto,
		"store_code":       TypeVarcharAuto,
		"product_code":     TypeVarcharAuto,
		"product_quantity": "SMALLINT",
	}
}

// OrderForeignKeys wires the fact table to its dimensions: each local column
// references the same-named primary-key column in the dimension table.
func OrderForeignKeys() map[string]string {
	return map[string]string{
		TableDates:    "date_uuid",
		TableUsers:    "user_uuid",
		TableCards:    "card_number",
		TableStores:   "store_code",
		TableProducts: "product_code",
	}
}
