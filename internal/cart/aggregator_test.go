package cart

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/angelmondragon/hobilik/internal/catalog"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/metrics"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, price string) catalog.Product {
	return catalog.Product{
		ID:         id,
		Title:      "Product " + id,
		Price:      decimal.RequireFromString(price),
		Category:   "Seramik",
		SellerID:   "s1",
		SellerName: "Kil Atölyesi",
		Tags:       []string{"el yapımı"},
		Stock:      50,
	}
}

func sequentialIDs() IDGenerator {
	n := 0
	return func(productID string) string {
		n++
		return fmt.Sprintf("%s-%d", productID, n)
	}
}

func newTestAggregator(opts ...Option) *Aggregator {
	return NewAggregator(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

func requireConsistent(t *testing.T, a *Aggregator) {
	t.Helper()
	snap := a.Snapshot()
	count := 0
	total := decimal.Zero
	for _, item := range snap.Items {
		require.GreaterOrEqual(t, item.Quantity, 1, "line %s stored non-positive quantity", item.ID)
		count += item.Quantity
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	require.Equal(t, count, snap.ItemCount)
	require.True(t, total.Equal(snap.Total), "total %s != recomputed %s", snap.Total, total)
}

func TestCartLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "10.00")

	line, err := a.Add(ctx, p1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 1, a.Len())
	assert.True(t, a.Total().Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, 2, a.ItemCount())

	merged, err := a.Add(ctx, p1, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, line.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)
	assert.Equal(t, 1, a.Len())
	assert.True(t, a.Total().Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, 5, a.ItemCount())

	require.True(t, a.UpdateQuantity(ctx, line.ID, 1))
	assert.True(t, a.Total().Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, a.ItemCount())

	require.True(t, a.Remove(ctx, line.ID))
	snap := a.Snapshot()
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Total.IsZero())
	assert.Equal(t, 0, snap.ItemCount)
}

func TestAddDistinctOptionsMakeDistinctLines(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "10.00")

	red, err := a.Add(ctx, p1, 1, types.Options{"color": "red"})
	require.NoError(t, err)
	blue, err := a.Add(ctx, p1, 1, types.Options{"color": "blue"})
	require.NoError(t, err)

	assert.NotEqual(t, red.ID, blue.ID)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, a.ItemCount())
	requireConsistent(t, a)
}

func TestAddMergesOrderIndependentOptions(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "5.00")

	first, err := a.Add(ctx, p1, 1, types.Options{"color": "red", "size": "M"})
	require.NoError(t, err)
	second, err := a.Add(ctx, p1, 4, types.Options{"size": "M", "color": "red"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, 1, a.Len())
}

func TestAddTreatsMissingAndEmptyOptionsAsEqual(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "5.00")

	_, err := a.Add(ctx, p1, 1, nil)
	require.NoError(t, err)
	_, err = a.Add(ctx, p1, 1, types.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, a.ItemCount())
}

func TestAddSameKeySumsQuantities(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "1.25")

	quantities := []int{1, 7, 3, 12, 2}
	want := 0
	for _, q := range quantities {
		_, err := a.Add(ctx, p1, q, types.Options{"engraving": "AY"})
		require.NoError(t, err)
		want += q
	}

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, want, items[0].Quantity)
	requireConsistent(t, a)
}

func TestAddKeepsInsertionOrderOnMerge(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()

	for _, id := range []string{"A", "B", "C"} {
		_, err := a.Add(ctx, product(id, "1.00"), 1, nil)
		require.NoError(t, err)
	}
	_, err := a.Add(ctx, product("A", "1.00"), 2, nil)
	require.NoError(t, err)

	items := a.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{items[0].ProductID(), items[1].ProductID(), items[2].ProductID()})
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddSnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	p1 := product("P1", "10.00")

	line, err := a.Add(ctx, p1, 1, nil)
	require.NoError(t, err)

	p1.Price = decimal.RequireFromString("99.00")
	p1.Tags[0] = "changed"

	got, ok := a.Line(line.ID)
	require.True(t, ok)
	assert.True(t, got.Product.Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "el yapımı", got.Product.Tags[0])
	assert.True(t, a.Total().Equal(decimal.RequireFromString("10.00")))

	// merging keeps the original snapshot price
	_, err = a.Add(ctx, p1, 1, nil)
	require.NoError(t, err)
	assert.True(t, a.Total().Equal(decimal.RequireFromString("20.00")))
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()

	tests := []struct {
		name     string
		product  catalog.Product
		quantity int
	}{
		{name: "zero quantity", product: product("P1", "1.00"), quantity: 0},
		{name: "negative quantity", product: product("P1", "1.00"), quantity: -2},
		{name: "missing id", product: product("", "1.00"), quantity: 1},
		{name: "negative price", product: product("P1", "-1.00"), quantity: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Add(ctx, tt.product, tt.quantity, nil)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
			assert.Equal(t, 0, a.Len())
		})
	}
}

func TestAddAcceptsFreeProducts(t *testing.T) {
	a := newTestAggregator()
	_, err := a.Add(context.Background(), product("GIFT", "0"), 3, nil)
	require.NoError(t, err)
	assert.True(t, a.Total().IsZero())
	assert.Equal(t, 3, a.ItemCount())
}

func TestAddDetectsIDCollision(t *testing.T) {
	a := NewAggregator(WithIDGenerator(func(string) string { return "fixed" }))
	ctx := context.Background()

	_, err := a.Add(ctx, product("A", "1.00"), 1, nil)
	require.NoError(t, err)
	_, err = a.Add(ctx, product("B", "1.00"), 1, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
	assert.Equal(t, 1, a.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	line, err := a.Add(ctx, product("P1", "10.00"), 2, nil)
	require.NoError(t, err)
	_, err = a.Add(ctx, product("P2", "3.50"), 1, nil)
	require.NoError(t, err)

	require.True(t, a.Remove(ctx, line.ID))
	before := a.Snapshot()

	assert.False(t, a.Remove(ctx, line.ID))
	assert.Equal(t, before, a.Snapshot())
	assert.True(t, a.Total().Equal(decimal.RequireFromString("3.50")))
}

func TestUpdateQuantityUnknownLineIsNoop(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	_, err := a.Add(ctx, product("P1", "10.00"), 2, nil)
	require.NoError(t, err)
	before := a.Snapshot()

	assert.False(t, a.UpdateQuantity(ctx, "missing", 5))
	assert.False(t, a.UpdateQuantity(ctx, "missing", 0))
	assert.Equal(t, before, a.Snapshot())
}

func TestUpdateQuantityNonPositiveRemovesLine(t *testing.T) {
	ctx := context.Background()

	for _, q := range []int{0, -1, -40} {
		t.Run(fmt.Sprintf("qty=%d", q), func(t *testing.T) {
			a := newTestAggregator()
			keep, err := a.Add(ctx, product("KEEP", "2.00"), 1, nil)
			require.NoError(t, err)
			drop, err := a.Add(ctx, product("DROP", "10.00"), 3, nil)
			require.NoError(t, err)

			assert.True(t, a.UpdateQuantity(ctx, drop.ID, q))
			items := a.Items()
			require.Len(t, items, 1)
			assert.Equal(t, keep.ID, items[0].ID)
			assert.Equal(t, 1, a.ItemCount())
			requireConsistent(t, a)
		})
	}
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	a.Clear(ctx)
	assert.Equal(t, 0, a.Len())

	_, err := a.Add(ctx, product("P1", "10.00"), 2, types.Options{"color": "red"})
	require.NoError(t, err)
	_, err = a.Add(ctx, product("P2", "4.00"), 1, nil)
	require.NoError(t, err)

	a.Clear(ctx)
	snap := a.Snapshot()
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Total.IsZero())
	assert.Equal(t, 0, snap.ItemCount)
	assert.True(t, snap.IsEmpty())
}

func TestSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	line, err := a.Add(ctx, product("P1", "10.00"), 1, types.Options{"color": "red"})
	require.NoError(t, err)

	snap := a.Snapshot()
	snap.Items[0].Quantity = 99
	snap.Items[0].SelectedOptions["color"] = "blue"
	snap.Items[0].Product.Tags[0] = "mutated"

	got, ok := a.Line(line.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, "red", got.SelectedOptions["color"])
	assert.Equal(t, "el yapımı", got.Product.Tags[0])

	found, ok := snap.Line(line.ID)
	require.True(t, ok)
	assert.Equal(t, 99, found.Quantity)
	_, ok = snap.Line("missing")
	assert.False(t, ok)
}

func TestDerivedFieldsStayConsistent(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	prices := []string{"10.00", "0.10", "3.33", "249.90"}
	colors := []string{"", "red", "blue"}
	var lineIDs []string

	for i := 0; i < 60; i++ {
		pid := fmt.Sprintf("P%d", i%len(prices))
		var opts types.Options
		if c := colors[i%len(colors)]; c != "" {
			opts = types.Options{"color": c}
		}
		switch i % 5 {
		case 0, 1, 2:
			line, err := a.Add(ctx, product(pid, prices[i%len(prices)]), i%4+1, opts)
			require.NoError(t, err)
			lineIDs = append(lineIDs, line.ID)
		case 3:
			a.UpdateQuantity(ctx, lineIDs[i%len(lineIDs)], i%3-1)
		case 4:
			a.Remove(ctx, lineIDs[(i*7)%len(lineIDs)])
		}
		requireConsistent(t, a)
	}
}

func TestConcurrentAddsSerialize(t *testing.T) {
	ctx := context.Background()
	a := NewAggregator()
	p1 := product("P1", "2.50")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Add(ctx, p1, 2, nil)
			assert.NoError(t, err)
			_ = a.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 100, a.ItemCount())
	assert.True(t, a.Total().Equal(decimal.RequireFromString("250.00")))
}

func TestDefaultIDGeneratorPrefixesProductID(t *testing.T) {
	first := DefaultIDGenerator("P1")
	second := DefaultIDGenerator("P1")
	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^P1-[0-9a-f-]{36}$`, first)
}

func TestAggregatorRecordsMetricsAndLogs(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg, "test")
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: buf})

	a := newTestAggregator(WithMetrics(m), WithLogger(logg))
	line, err := a.Add(ctx, product("P1", "10.00"), 2, nil)
	require.NoError(t, err)
	a.UpdateQuantity(ctx, line.ID, 3)
	a.Remove(ctx, line.ID)
	a.Remove(ctx, line.ID)
	a.Clear(ctx)

	assert.Contains(t, buf.String(), `"line_id":"P1-1"`)
	assert.Contains(t, buf.String(), "cart line added")

	count, err := testutil.GatherAndCount(reg, "test_cart_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestTakeReturnsStateAndEmpties(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	_, err := a.Add(ctx, product("P1", "10.00"), 2, nil)
	require.NoError(t, err)

	snap, err := a.Take(ctx, nil)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.ItemCount)
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("20.00")))

	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Total().IsZero())

	empty, err := a.Take(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.IsEmpty())
}

func TestTakeCheckRejectionKeepsCart(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	_, err := a.Add(ctx, product("P1", "10.00"), 3, nil)
	require.NoError(t, err)
	before := a.Snapshot()

	var seen Snapshot
	_, err = a.Take(ctx, func(snap Snapshot) error {
		seen = snap
		return pkgerrors.New(pkgerrors.CodeStateConflict, "not enough stock")
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, before, seen)
	assert.Equal(t, before, a.Snapshot())
}

func TestTakeCheckCopyIsDetached(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	_, err := a.Add(ctx, product("P1", "10.00"), 1, types.Options{"color": "red"})
	require.NoError(t, err)

	snap, err := a.Take(ctx, func(snap Snapshot) error {
		snap.Items[0].Quantity = 99
		snap.Items[0].SelectedOptions["color"] = "blue"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, "red", snap.Items[0].SelectedOptions["color"])
}

func TestTakeHoldsLockThroughCheck(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator()
	_, err := a.Add(ctx, product("P1", "10.00"), 1, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	snap, err := a.Take(ctx, func(Snapshot) error {
		go func() {
			defer close(done)
			_, _ = a.Add(ctx, product("P2", "5.00"), 4, nil)
		}()
		return nil
	})
	require.NoError(t, err)
	<-done

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "P1", snap.Items[0].ProductID())

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "P2", items[0].ProductID())
	assert.Equal(t, 4, a.ItemCount())
}
