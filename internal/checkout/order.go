package checkout

import (
	"time"

	"github.com/angelmondragon/hobilik/internal/cart"
	"github.com/angelmondragon/hobilik/pkg/enums"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDetails is the card form. Nothing is charged; the fields are only
// checked for presence.
type PaymentDetails struct {
	CardNumber     string `json:"card_number" validate:"required"`
	ExpiryDate     string `json:"expiry_date" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
	CardholderName string `json:"cardholder_name,omitempty"`
}

// Order is the record produced by a successful checkout.
type Order struct {
	ID              uuid.UUID         `json:"id"`
	UserID          string            `json:"user_id,omitempty"`
	Items           []cart.LineItem   `json:"items"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	ItemCount       int               `json:"item_count"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress types.Address     `json:"shipping_address"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// SummaryLine is one row of the order summary.
type SummaryLine struct {
	LineID    string          `json:"line_id"`
	Title     string          `json:"title"`
	Options   string          `json:"options,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Summary renders the order summary rows for a cart snapshot.
func Summary(snap cart.Snapshot) []SummaryLine {
	out := make([]SummaryLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		out = append(out, SummaryLine{
			LineID:    item.ID,
			Title:     item.Product.Title,
			Options:   item.SelectedOptions.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			LineTotal: money.LineTotal(item.Product.Price, item.Quantity),
		})
	}
	return out
}
