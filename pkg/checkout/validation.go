package checkout

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
)

// StockValidationInput is the total quantity of one product across the cart.
type StockValidationInput struct {
	ProductID   string
	ProductName string
	Stock       int
	Quantity    int
}

// StockViolationDetail exposes the data returned to callers when a validation fails.
type StockViolationDetail struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	Available    int    `json:"available"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateStock ensures no product is ordered beyond its available stock.
func ValidateStock(items []StockValidationInput) error {
	var violations []StockViolationDetail
	for _, item := range items {
		if item.Quantity <= item.Stock {
			continue
		}
		violations = append(violations, StockViolationDetail{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Available:    item.Stock,
			RequestedQty: item.Quantity,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("not enough stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
