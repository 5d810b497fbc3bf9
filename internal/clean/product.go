package clean

import (
	"strconv"
	"strings"
	"time"

	"salesetl/internal/records"
)

// Product is a cleaned dim_products row.
type Product struct {
	ProductCode      string
	ProductName      string
	PriceGBP         float64
	WeightKG         float64
	WeightClass      string
	Category         string
	ArticleNo        string
	DateAdded        time.Time
	UUID             string
	StillAvailable   bool
	ArticleNoCheck   bool
	ProductCodeCheck bool
	UUIDCheck        bool
}

// ProductColumns is the canonical dim_products column order. The price column
// keeps its currency-suffixed name; downstream reports depend on it.
var ProductColumns = []string{
	"product_code", "product_name", "product_price_£", "weight_kg",
	"weight_class", "category", "int_article_no", "date_added", "uuid",
	"still_available", "int_article_no_check", "product_code_check", "uuid_check",
}

var productInputColumns = []string{
	"product_name", "product_price", "weight", "category", "EAN",
	"date_added", "uuid", "removed", "product_code",
}

// ProductRows projects products into warehouse rows in ProductColumns order.
func ProductRows(ps []Product) [][]any {
	rows := make([][]any, len(ps))
	for i, p := range ps {
		rows[i] = []any{
			p.ProductCode, p.ProductName, p.PriceGBP, p.WeightKG,
			p.WeightClass, p.Category, p.ArticleNo, p.DateAdded, p.UUID,
			p.StillAvailable, p.ArticleNoCheck, p.ProductCodeCheck, p.UUIDCheck,
		}
	}
	return rows
}

// Products cleans a raw product batch. Duplicates and rows with missing
// fields or alphabetic prices are dropped, weights are normalized to
// kilograms and bucketed, the '£' symbol is stripped from prices, the
// "removed" flag becomes a boolean, and the article-number / product-code /
// uuid check columns are computed on the final values.
func Products(in []records.Record) ([]Product, error) {
	if err := requireColumns("product", in, productInputColumns...); err != nil {
		return nil, err
	}
	in = dedupe(in, productInputColumns)

	out := make([]Product, 0, len(in))
	for _, r := range in {
		incomplete := false
		for _, c := range productInputColumns {
			if r.Empty(c) {
				incomplete = true
				break
			}
		}
		if incomplete {
			continue
		}

		rawPrice := r.String("product_price")
		if hasLetter(rawPrice) {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(rawPrice, "£", ""), 64)
		if err != nil {
			continue
		}

		kg, ok := parseWeightKG(r.String("weight"))
		if !ok {
			continue
		}

		added, ok := parseDate(r.String("date_added"))
		if !ok {
			continue
		}

		var available bool
		switch r.String("removed") {
		case "Still_avaliable": // the source carries this typo
			available = true
		case "Removed":
			available = false
		default:
			continue
		}

		p := Product{
			ProductCode:    r.String("product_code"),
			ProductName:    r.String("product_name"),
			PriceGBP:       price,
			WeightKG:       kg,
			WeightClass:    weightClass(kg),
			Category:       r.String("category"),
			ArticleNo:      r.String("EAN"),
			DateAdded:      added,
			UUID:           r.String("uuid"),
			StillAvailable: available,
		}
		p.ArticleNoCheck = eanRe.MatchString(p.ArticleNo)
		p.ProductCodeCheck = productCodeRe.MatchString(p.ProductCode)
		p.UUIDCheck = uuidRe.MatchString(p.UUID)

		out = append(out, p)
	}
	return out, nil
}
