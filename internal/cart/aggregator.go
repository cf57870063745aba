package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/angelmondragon/hobilik/internal/catalog"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/metrics"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opAdd            = "add"
	opRemove         = "remove"
	opUpdateQuantity = "update_quantity"
	opClear          = "clear"
	opTake           = "take"
)

// IDGenerator returns a new line id for a product. Ids must be unique
// within one cart.
type IDGenerator func(productID string) string

// DefaultIDGenerator joins the product id and a random UUID.
func DefaultIDGenerator(productID string) string {
	return productID + "-" + uuid.NewString()
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

func WithLogger(logg *logger.Logger) Option {
	return func(a *Aggregator) {
		if logg != nil {
			a.logg = logg
		}
	}
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(a *Aggregator) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// Aggregator owns the cart lines and keeps Total and ItemCount in step with
// them. Every mutation recomputes both from the full line list. All methods
// are safe for concurrent use.
type Aggregator struct {
	mu sync.Mutex

	items     []LineItem
	total     decimal.Decimal
	itemCount int

	newID   IDGenerator
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewAggregator returns an empty cart.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		total: money.Zero,
		newID: DefaultIDGenerator,
		logg:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add puts quantity units of product in the cart. When a line for the same
// product with an equal option set exists its quantity grows and it keeps
// its position; otherwise a new line is appended. Stock limits are not
// checked here.
func (a *Aggregator) Add(ctx context.Context, product catalog.Product, quantity int, options types.Options) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").WithDetails(map[string]any{
			"quantity": quantity,
		})
	}
	if product.ID == "" {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.Price.IsNegative() {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx = a.logg.WithProductID(ctx, product.ID)

	idx := slices.IndexFunc(a.items, func(item LineItem) bool {
		return item.matches(product.ID, options)
	})
	if idx >= 0 {
		a.items[idx].Quantity += quantity
	} else {
		id := a.newID(product.ID)
		if a.indexOf(id) >= 0 {
			return LineItem{}, pkgerrors.New(pkgerrors.CodeInternal, "generated line id already in cart")
		}
		a.items = append(a.items, LineItem{
			ID:              id,
			Product:         product.Clone(),
			Quantity:        quantity,
			SelectedOptions: options.Clone(),
		})
		idx = len(a.items) - 1
	}

	a.recompute()
	line := a.items[idx].clone()
	a.observe(a.logg.WithLineID(ctx, line.ID), opAdd, "cart line added")
	return line, nil
}

// Remove drops the line with the given id. It reports whether a line was
// removed; an unknown id leaves the cart untouched.
func (a *Aggregator) Remove(ctx context.Context, lineID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.removeLocked(lineID) {
		return false
	}
	a.observe(a.logg.WithLineID(ctx, lineID), opRemove, "cart line removed")
	return true
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line. It reports whether a line was found.
func (a *Aggregator) UpdateQuantity(ctx context.Context, lineID string, quantity int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx = a.logg.WithLineID(ctx, lineID)

	if quantity <= 0 {
		if !a.removeLocked(lineID) {
			return false
		}
		a.observe(ctx, opRemove, "cart line removed by zero quantity")
		return true
	}

	idx := a.indexOf(lineID)
	if idx < 0 {
		return false
	}
	a.items[idx].Quantity = quantity
	a.recompute()
	a.observe(ctx, opUpdateQuantity, "cart line quantity updated")
	return true
}

// Clear empties the cart.
func (a *Aggregator) Clear(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = nil
	a.total = money.Zero
	a.itemCount = 0
	a.observe(ctx, opClear, "cart cleared")
}

// Take empties the cart and returns what it held, in one step, so no line
// added concurrently can be dropped without being returned. When check is
// non-nil it sees a copy of the contents under the same lock first; an error
// from it leaves the cart untouched and is returned as is. check must not
// call back into the Aggregator.
func (a *Aggregator) Take(ctx context.Context, check func(Snapshot) error) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if check != nil {
		if err := check(a.snapshotLocked()); err != nil {
			return Snapshot{}, err
		}
	}

	snap := Snapshot{Items: a.items, Total: a.total, ItemCount: a.itemCount}
	if snap.Items == nil {
		snap.Items = []LineItem{}
	}
	a.items = nil
	a.total = money.Zero
	a.itemCount = 0
	a.observe(ctx, opTake, "cart taken")
	return snap, nil
}

// Snapshot returns a deep copy of the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	items := make([]LineItem, 0, len(a.items))
	for _, item := range a.items {
		items = append(items, item.clone())
	}
	return Snapshot{Items: items, Total: a.total, ItemCount: a.itemCount}
}

func (a *Aggregator) Items() []LineItem {
	return a.Snapshot().Items
}

func (a *Aggregator) Total() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

func (a *Aggregator) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.itemCount
}

func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Line returns a copy of the line with the given id.
func (a *Aggregator) Line(lineID string) (LineItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.indexOf(lineID)
	if idx < 0 {
		return LineItem{}, false
	}
	return a.items[idx].clone(), true
}

func (a *Aggregator) removeLocked(lineID string) bool {
	idx := a.indexOf(lineID)
	if idx < 0 {
		return false
	}
	a.items = slices.Delete(a.items, idx, idx+1)
	a.recompute()
	return true
}

func (a *Aggregator) indexOf(lineID string) int {
	return slices.IndexFunc(a.items, func(item LineItem) bool {
		return item.ID == lineID
	})
}

func (a *Aggregator) recompute() {
	count := 0
	total := money.Zero
	for _, item := range a.items {
		count += item.Quantity
		total = total.Add(item.LineTotal())
	}
	a.itemCount = count
	a.total = total
}

func (a *Aggregator) observe(ctx context.Context, op, msg string) {
	a.metrics.ObserveMutation(op, a.itemCount, a.total)
	ctx = a.logg.WithFields(ctx, map[string]any{
		"op":         op,
		"item_count": a.itemCount,
		"total":      a.total.String(),
	})
	a.logg.Debug(ctx, msg)
}
