package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/hobilik/internal/cart"
	"github.com/angelmondragon/hobilik/pkg/enums"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/metrics"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/angelmondragon/hobilik/pkg/validate"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	outcomePlaced   = "placed"
	outcomeRejected = "rejected"
	outcomeEmpty    = "empty_cart"

	shippingMessage = "please fill in all shipping address fields"
	paymentMessage  = "please fill in all payment details"
)

// CartSource is the cart a checkout drains.
type CartSource interface {
	Len() int
	Take(ctx context.Context, check func(cart.Snapshot) error) (cart.Snapshot, error)
}

// Service places orders from a cart.
type Service interface {
	PlaceOrder(ctx context.Context, source CartSource, input PlaceOrderInput) (*Order, error)
}

// PlaceOrderInput is the checkout form. Guard, when set, runs on the cart
// contents under the cart's lock right before they are taken; an error from
// it aborts the checkout and leaves the cart as it was. Guard must not call
// back into the cart.
type PlaceOrderInput struct {
	UserID   string
	Shipping types.Address
	Payment  PaymentDetails
	Guard    func(cart.Snapshot) error
}

// ServiceParams wires a checkout service. Logger, Metrics, Clock and NewID
// are optional.
type ServiceParams struct {
	DefaultCountry string
	CurrencySymbol string
	Logger         *logger.Logger
	Metrics        *metrics.CartMetrics
	Clock          func() time.Time
	NewID          func() uuid.UUID
}

type service struct {
	defaultCountry string
	currencySymbol string
	logg           *logger.Logger
	metrics        *metrics.CartMetrics
	now            func() time.Time
	newID          func() uuid.UUID
}

// NewService builds a checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.CurrencySymbol == "" {
		return nil, fmt.Errorf("currency symbol required")
	}
	svc := &service{
		defaultCountry: params.DefaultCountry,
		currencySymbol: params.CurrencySymbol,
		logg:           params.Logger,
		metrics:        params.Metrics,
		now:            params.Clock,
		newID:          params.NewID,
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.New
	}
	return svc, nil
}

// PlaceOrder validates the form, turns the cart into a pending order, and
// empties the cart. The cart is left untouched when anything fails.
func (s *service) PlaceOrder(ctx context.Context, source CartSource, input PlaceOrderInput) (*Order, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart is required")
	}
	if source.Len() == 0 {
		s.metrics.IncCheckout(outcomeEmpty)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	shipping := input.Shipping.Normalized(s.defaultCountry)
	if err := validateForm(shipping, input.Payment); err != nil {
		s.metrics.IncCheckout(outcomeRejected)
		s.logg.Warn(s.logg.WithField(ctx, "fields", validate.Fields(err)), "checkout rejected")
		return nil, err
	}

	var emptied bool
	snap, err := source.Take(ctx, func(snap cart.Snapshot) error {
		if snap.IsEmpty() {
			emptied = true
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		if input.Guard != nil {
			return input.Guard(snap)
		}
		return nil
	})
	if err != nil {
		if emptied {
			s.metrics.IncCheckout(outcomeEmpty)
		} else {
			s.metrics.IncCheckout(outcomeRejected)
			s.logg.Warn(ctx, "checkout rejected by cart guard")
		}
		return nil, err
	}

	now := s.now().UTC()
	order := &Order{
		ID:              s.newID(),
		UserID:          input.UserID,
		Items:           snap.Items,
		TotalAmount:     snap.Total,
		ItemCount:       snap.ItemCount,
		Status:          enums.OrderStatusPending,
		ShippingAddress: shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.metrics.IncCheckout(outcomePlaced)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":   order.ID.String(),
		"item_count": order.ItemCount,
		"total":      money.Format(order.TotalAmount, s.currencySymbol),
	}), "order placed")

	return order, nil
}

// validateForm checks shipping and payment together. The returned error
// carries every failing field under a "shipping." or "payment." prefix and
// names the shipping problem first.
func validateForm(shipping types.Address, payment PaymentDetails) error {
	shippingErr := validate.Struct(shipping, shippingMessage)
	paymentErr := validate.Struct(payment, paymentMessage)
	combined := multierr.Combine(shippingErr, paymentErr)
	if combined == nil {
		return nil
	}

	details := map[string]string{}
	for field, msg := range validate.Fields(shippingErr) {
		details["shipping."+field] = msg
	}
	for field, msg := range validate.Fields(paymentErr) {
		details["payment."+field] = msg
	}

	message := paymentMessage
	if shippingErr != nil {
		message = shippingMessage
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, message).WithDetails(details)
}
