package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/angelmondragon/hobilik/internal/catalog"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	var (
		featured bool
		query    string
		category string
		limit    int
		cursor   string
		maxPrice string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List products, optionally filtered by search text or category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := a.catalog.Products()
			if featured {
				products = a.catalog.Featured()
			}
			if category == "" {
				category = a.catalog.AllLabel()
			}
			q := catalog.Query{
				Text:     query,
				Category: category,
				AllLabel: a.catalog.AllLabel(),
				Language: a.cfg.Catalog.Tag(),
			}
			if maxPrice != "" {
				ceiling, err := money.Parse(maxPrice)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid max price")
				}
				q.MaxPrice = decimal.NewNullDecimal(ceiling)
			}
			products = catalog.Filter(products, q)
			page, err := pagination.Paginate(products, pagination.Params{Limit: limit, Cursor: cursor}, func(p catalog.Product) string {
				return p.ID
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
			}

			out := cmd.OutOrStdout()
			if err := printProducts(out, page.Items, a.cfg.Checkout.CurrencySymbol); err != nil {
				return err
			}
			if page.NextCursor != "" {
				fmt.Fprintf(out, "next page: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&featured, "featured", false, "only featured products")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title, description, seller and tags")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "hide products priced above this amount")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "products per page")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor printed by the previous page")
	return cmd
}

func printProducts(w io.Writer, products []catalog.Product, symbol string) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "no products found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY\tSELLER\tSTOCK")
	for _, p := range products {
		stock := fmt.Sprintf("%d", p.Stock)
		if p.LowStock() {
			stock += " (low)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, money.Format(p.Price, symbol), p.Category, p.SellerName, stock)
	}
	return tw.Flush()
}
