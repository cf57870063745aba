package storefront

import (
	"context"
	"fmt"

	"github.com/angelmondragon/hobilik/internal/cart"
	"github.com/angelmondragon/hobilik/internal/catalog"
	"github.com/angelmondragon/hobilik/internal/checkout"
	checkoutrules "github.com/angelmondragon/hobilik/pkg/checkout"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/types"
)

// SessionParams wires a storefront session.
type SessionParams struct {
	ID       string
	Catalog  *catalog.Catalog
	Cart     *cart.Aggregator
	Checkout checkout.Service
	Logger   *logger.Logger
}

// Session is one shopper's storefront: the catalog they browse, their cart,
// and the checkout that drains it.
type Session struct {
	id       string
	catalog  *catalog.Catalog
	cart     *cart.Aggregator
	checkout checkout.Service
	logg     *logger.Logger
}

func NewSession(params SessionParams) (*Session, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	s := &Session{
		id:       params.ID,
		catalog:  params.Catalog,
		cart:     params.Cart,
		checkout: params.Checkout,
		logg:     params.Logger,
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.cart == nil {
		s.cart = cart.NewAggregator(cart.WithLogger(s.logg))
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Cart returns a copy of the current cart.
func (s *Session) Cart() cart.Snapshot {
	return s.cart.Snapshot()
}

// AddToCart adds quantity units of a catalog product. The quantity must lie
// between one and the product's stock, as on the product page.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int, options types.Options) (cart.LineItem, error) {
	ctx = s.ctx(ctx)

	product, ok := s.catalog.Get(productID)
	if !ok {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", productID))
	}
	if quantity < 1 {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").WithDetails(map[string]any{
			"quantity": quantity,
		})
	}
	if quantity > product.Stock {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeConflict, "not enough stock").WithDetails(map[string]any{
			"quantity": quantity,
			"stock":    product.Stock,
		})
	}

	line, err := s.cart.Add(ctx, product, quantity, options)
	if err != nil {
		return cart.LineItem{}, err
	}
	s.logg.Info(s.logg.WithLineID(s.logg.WithProductID(ctx, productID), line.ID), "added to cart")
	return line, nil
}

// ChangeQuantity sets a line's quantity; zero or less removes the line.
func (s *Session) ChangeQuantity(ctx context.Context, lineID string, quantity int) error {
	ctx = s.ctx(ctx)

	var found bool
	if quantity <= 0 {
		found = s.cart.Remove(ctx, lineID)
	} else {
		found = s.cart.UpdateQuantity(ctx, lineID, quantity)
	}
	if !found {
		return lineNotFound(lineID)
	}
	return nil
}

func (s *Session) RemoveLine(ctx context.Context, lineID string) error {
	if !s.cart.Remove(s.ctx(ctx), lineID) {
		return lineNotFound(lineID)
	}
	return nil
}

func (s *Session) ClearCart(ctx context.Context) {
	s.cart.Clear(s.ctx(ctx))
}

// Checkout places an order from the cart. Every product's total quantity
// across lines must still fit the catalog stock; the check runs on the same
// contents the order is built from. The cart is emptied only when the order
// is placed.
func (s *Session) Checkout(ctx context.Context, input checkout.PlaceOrderInput) (*checkout.Order, error) {
	guard := input.Guard
	input.Guard = func(snap cart.Snapshot) error {
		if err := s.validateStock(snap); err != nil {
			return err
		}
		if guard != nil {
			return guard(snap)
		}
		return nil
	}
	return s.checkout.PlaceOrder(s.ctx(ctx), s.cart, input)
}

func (s *Session) validateStock(snap cart.Snapshot) error {
	var inputs []checkoutrules.StockValidationInput
	byProduct := map[string]int{}
	for _, item := range snap.Items {
		idx, seen := byProduct[item.ProductID()]
		if !seen {
			stock := 0
			if current, ok := s.catalog.Get(item.ProductID()); ok {
				stock = current.Stock
			}
			idx = len(inputs)
			byProduct[item.ProductID()] = idx
			inputs = append(inputs, checkoutrules.StockValidationInput{
				ProductID:   item.ProductID(),
				ProductName: item.Product.Title,
				Stock:       stock,
			})
		}
		inputs[idx].Quantity += item.Quantity
	}
	return checkoutrules.ValidateStock(inputs)
}

func (s *Session) ctx(ctx context.Context) context.Context {
	if s.id == "" {
		return ctx
	}
	return s.logg.WithSessionID(ctx, s.id)
}

func lineNotFound(lineID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart line %q not found", lineID))
}
