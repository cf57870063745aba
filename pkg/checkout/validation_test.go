package checkout

import (
	"testing"

	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
)

func TestValidateStock_NoViolations(t *testing.T) {
	items := []StockValidationInput{
		{ProductID: "1", ProductName: "Exact Stock", Stock: 3, Quantity: 3},
		{ProductID: "2", ProductName: "Plenty", Stock: 10, Quantity: 1},
	}
	if err := ValidateStock(items); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStock_Violations(t *testing.T) {
	items := []StockValidationInput{
		{ProductID: "1", ProductName: "Short", Stock: 2, Quantity: 5},
		{ProductID: "2", ProductName: "Fine", Stock: 4, Quantity: 4},
		{ProductID: "3", ProductName: "Sold Out", Stock: 0, Quantity: 1},
	}

	err := ValidateStock(items)
	if err == nil {
		t.Fatal("expected an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeStateConflict, typed.Code())
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	violations, ok := details["violations"].([]StockViolationDetail)
	if !ok {
		t.Fatalf("expected violation slice, got %T", details["violations"])
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(violations))
	}
	if violations[0].ProductID != "1" || violations[0].Available != 2 || violations[0].RequestedQty != 5 {
		t.Fatalf("unexpected first violation %+v", violations[0])
	}
	if violations[1].ProductID != "3" {
		t.Fatalf("unexpected second violation %+v", violations[1])
	}
}
