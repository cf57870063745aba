package cart

import (
	"github.com/angelmondragon/hobilik/internal/catalog"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/shopspring/decimal"
)

// LineItem is one cart entry. Product is a copy taken when the line was
// created; later catalog changes do not reach it.
type LineItem struct {
	ID              string          `json:"id"`
	Product         catalog.Product `json:"product"`
	Quantity        int             `json:"quantity"`
	SelectedOptions types.Options   `json:"selected_options,omitempty"`
}

// ProductID returns the id of the referenced product.
func (l LineItem) ProductID() string {
	return l.Product.ID
}

// LineTotal is price times quantity for this line.
func (l LineItem) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Product.Price, l.Quantity)
}

func (l LineItem) matches(productID string, options types.Options) bool {
	return l.Product.ID == productID && l.SelectedOptions.Equal(options)
}

func (l LineItem) clone() LineItem {
	out := l
	out.Product = l.Product.Clone()
	out.SelectedOptions = l.SelectedOptions.Clone()
	return out
}

// Snapshot is a read-only copy of the cart state.
type Snapshot struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Line returns the line with the given id.
func (s Snapshot) Line(id string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}
