package catalog

import (
	"slices"
	"time"

	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/validate"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level under which the product page warns
// that only a few pieces are left.
const LowStockThreshold = 10

// Product is a handmade listing as shown in the catalog.
type Product struct {
	ID           string          `json:"id" yaml:"id" validate:"required"`
	Title        string          `json:"title" yaml:"title" validate:"required"`
	Description  string          `json:"description" yaml:"description"`
	Price        decimal.Decimal `json:"price" yaml:"price"`
	Images       []string        `json:"images" yaml:"images"`
	Category     string          `json:"category" yaml:"category" validate:"required"`
	SellerID     string          `json:"seller_id" yaml:"seller_id" validate:"required"`
	SellerName   string          `json:"seller_name" yaml:"seller_name" validate:"required"`
	Tags         []string        `json:"tags" yaml:"tags"`
	Materials    []string        `json:"materials" yaml:"materials"`
	Dimensions   string          `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Weight       string          `json:"weight,omitempty" yaml:"weight,omitempty"`
	Customizable bool            `json:"customizable" yaml:"customizable"`
	Stock        int             `json:"stock" yaml:"stock" validate:"gte=0"`
	Rating       float64         `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	ReviewCount  int             `json:"review_count" yaml:"review_count" validate:"gte=0"`
	Featured     bool            `json:"featured" yaml:"featured"`
	CreatedAt    time.Time       `json:"created_at" yaml:"created_at"`
}

// Validate checks the record before it enters a catalog or a cart.
func (p Product) Validate() error {
	if err := validate.Struct(p, "product is invalid"); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is invalid").WithDetails(map[string]string{
			"price": "must be greater than or equal to 0",
		})
	}
	return nil
}

// Clone returns a deep copy so later catalog edits cannot leak into holders
// of the copy.
func (p Product) Clone() Product {
	out := p
	out.Images = slices.Clone(p.Images)
	out.Tags = slices.Clone(p.Tags)
	out.Materials = slices.Clone(p.Materials)
	return out
}

// LowStock reports whether the product page should show a scarcity warning.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// Review is a shopper review attached to a product.
type Review struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	UserName  string    `json:"user_name" yaml:"user_name"`
	ProductID string    `json:"product_id" yaml:"product_id" validate:"required"`
	Rating    int       `json:"rating" yaml:"rating" validate:"gte=1,lte=5"`
	Comment   string    `json:"comment" yaml:"comment"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func validateReview(r Review) error {
	return validate.Struct(r, "review is invalid")
}
