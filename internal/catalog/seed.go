package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the mock data a catalog starts from.
type Seed struct {
	Products []Product `yaml:"products"`
	Reviews  []Review  `yaml:"reviews"`
}

// DefaultSeed decodes the embedded mock catalog.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// priceFields records which seed products spell out a price, since a
// decoded decimal cannot tell a missing price from "0".
type priceFields struct {
	Products []struct {
		Price *yaml.Node `yaml:"price"`
	} `yaml:"products"`
}

// LoadSeed decodes a YAML seed and validates every record. Unknown fields,
// missing prices, duplicate product ids, and reviews of unknown products are
// rejected.
func LoadSeed(r io.Reader) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read catalog seed")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog seed")
	}

	var prices priceFields
	if err := yaml.Unmarshal(data, &prices); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog seed")
	}

	ids := make(map[string]struct{}, len(seed.Products))
	for i, p := range seed.Products {
		if i < len(prices.Products) {
			if node := prices.Products[i].Price; node == nil || node.Tag == "!!null" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d is invalid", i)).
					WithDetails(map[string]string{"price": "is required"})
			}
		}
		if err := p.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %d is invalid", i)).
				WithDetails(pkgerrors.As(err).Details())
		}
		if _, dup := ids[p.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("duplicate product id %q", p.ID))
		}
		ids[p.ID] = struct{}{}
	}

	for i, r := range seed.Reviews {
		if err := validateReview(r); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("review %d is invalid", i))
		}
		if _, ok := ids[r.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("review %q references unknown product %q", r.ID, r.ProductID))
		}
	}

	return &seed, nil
}

// Apply loads the seed into c.
func (s *Seed) Apply(c *Catalog) {
	c.SetProducts(s.Products)
	c.SetReviews(s.Reviews)
}
