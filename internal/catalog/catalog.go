package catalog

import (
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// Options configures a Catalog.
type Options struct {
	// AllLabel is the pseudo-category meaning "every category".
	AllLabel string
	Language language.Tag
}

// Catalog is the product read model plus the browse state of the search
// screen. It is owned by a storefront session and safe for concurrent use.
type Catalog struct {
	mu sync.RWMutex

	products []Product
	featured []Product
	reviews  []Review

	loading bool
	err     string

	searchQuery      string
	selectedCategory string

	allLabel string
	lang     language.Tag
}

// New returns an empty catalog with the "all" category selected.
func New(opts Options) *Catalog {
	if opts.AllLabel == "" {
		opts.AllLabel = "Tümü"
	}
	if opts.Language == language.Und {
		opts.Language = language.Turkish
	}
	return &Catalog{
		allLabel:         opts.AllLabel,
		lang:             opts.Language,
		selectedCategory: opts.AllLabel,
	}
}

// SetProducts replaces the product list and re-derives the featured list.
func (c *Catalog) SetProducts(products []Product) {
	next := make([]Product, 0, len(products))
	featured := []Product{}
	for _, p := range products {
		next = append(next, p.Clone())
		if p.Featured {
			featured = append(featured, p.Clone())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = next
	c.featured = featured
}

// SetReviews replaces the review list.
func (c *Catalog) SetReviews(reviews []Review) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reviews = slices.Clone(reviews)
}

func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.products)
}

func (c *Catalog) Featured() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.featured)
}

// Get looks a product up by id.
func (c *Catalog) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Product{}, false
}

// Reviews returns the reviews written for productID.
func (c *Catalog) Reviews(productID string) []Review {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []Review{}
	for _, r := range c.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// Categories lists the "all" label followed by each distinct category in
// first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []string{c.allLabel}
	for _, p := range c.products {
		if !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}

func (c *Catalog) AllLabel() string {
	return c.allLabel
}

func (c *Catalog) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
}

func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// SetError records a load failure; an empty message clears it.
func (c *Catalog) SetError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = message
}

func (c *Catalog) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Catalog) SetSearchQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchQuery = query
}

func (c *Catalog) SearchQuery() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchQuery
}

func (c *Catalog) SetSelectedCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedCategory = category
}

func (c *Catalog) SelectedCategory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedCategory
}

// Filtered applies the current search query and category selection.
func (c *Catalog) Filtered() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.products, Query{
		Text:     c.searchQuery,
		Category: c.selectedCategory,
		AllLabel: c.allLabel,
		Language: c.lang,
	})
}

func cloneAll(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.Clone())
	}
	return out
}
