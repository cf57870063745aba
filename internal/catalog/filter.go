package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Query narrows the catalog the way the search screen does.
type Query struct {
	Text     string
	Category string
	// AllLabel is the category value that disables category filtering.
	AllLabel string
	Language language.Tag
	// MaxPrice, when valid, drops products priced above it.
	MaxPrice decimal.NullDecimal
}

// Filter returns the products matching q, preserving input order.
// Category filtering is skipped when q.Category equals q.AllLabel. Text
// filtering is skipped for an empty query; otherwise a product matches when
// the query appears in its title, description, any tag, or seller name,
// compared under the lowercasing rules of q.Language.
func Filter(products []Product, q Query) []Product {
	filtered := products
	if q.MaxPrice.Valid {
		filtered = filterBy(filtered, func(p Product) bool {
			return p.Price.LessThanOrEqual(q.MaxPrice.Decimal)
		})
	}
	if q.Category != q.AllLabel {
		filtered = filterBy(filtered, func(p Product) bool {
			return p.Category == q.Category
		})
	}

	if q.Text != "" {
		lower := cases.Lower(q.Language)
		needle := lower.String(q.Text)
		contains := func(haystack string) bool {
			return strings.Contains(lower.String(haystack), needle)
		}
		filtered = filterBy(filtered, func(p Product) bool {
			if contains(p.Title) || contains(p.Description) || contains(p.SellerName) {
				return true
			}
			for _, tag := range p.Tags {
				if contains(tag) {
					return true
				}
			}
			return false
		})
	}

	out := make([]Product, 0, len(filtered))
	for _, p := range filtered {
		out = append(out, p.Clone())
	}
	return out
}

func filterBy(products []Product, keep func(Product) bool) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
