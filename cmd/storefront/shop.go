package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/angelmondragon/hobilik/internal/checkout"
	"github.com/angelmondragon/hobilik/internal/storefront"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/money"
	"github.com/angelmondragon/hobilik/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const shopHelp = `commands:
  list                          products matching the current search
  search <text>                 set the search text (empty clears it)
  category <name>               select a category
  categories                    list categories
  reviews <productID>           show reviews for a product
  add <productID> <qty> [k=v]   add to cart with optional options
  qty <lineID> <n>              change a line quantity (0 removes it)
  remove <lineID>               remove a line
  clear                         empty the cart
  cart                          show the cart
  checkout <json>               place an order, e.g. {"shipping":{...},"payment":{...}}
  metrics                       dump cart metrics
  help                          this text
  quit                          leave the shop`

func newShopCmd(a *app) *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Run an interactive shopping session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "open script")
				}
				defer f.Close()
				in = f
			}

			session, err := a.newSession()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to start session")
			}
			sh := &shell{
				session:  session,
				out:      cmd.OutOrStdout(),
				symbol:   a.cfg.Checkout.CurrencySymbol,
				registry: a.registry,
				logg:     a.logg,
			}
			return sh.run(cmd.Context(), in)
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "read commands from a file instead of stdin")
	return cmd
}

// checkoutForm is the JSON accepted by the checkout command.
type checkoutForm struct {
	UserID   string                  `json:"user_id"`
	Shipping types.Address           `json:"shipping"`
	Payment  checkout.PaymentDetails `json:"payment"`
}

type shell struct {
	session  *storefront.Session
	out      io.Writer
	symbol   string
	registry *prometheus.Registry
	logg     *logger.Logger
}

// run executes one command per input line until quit or end of input.
// Command errors are printed and the session continues, except internal
// errors, which end the session and are returned.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := sh.exec(ctx, line)
		if err != nil {
			sh.logg.Debug(sh.logg.WithFields(ctx, map[string]any{
				"command": line,
				"error":   pkgerrors.Dump(err),
			}), "shop command failed")
			sh.printErr(err)
			if pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
				return err
			}
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (sh *shell) exec(ctx context.Context, line string) (bool, error) {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	c := sh.session.Catalog()

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(sh.out, shopHelp)
	case "list":
		return false, printProducts(sh.out, c.Filtered(), sh.symbol)
	case "search":
		c.SetSearchQuery(rest)
		return false, printProducts(sh.out, c.Filtered(), sh.symbol)
	case "category":
		if rest == "" {
			rest = c.AllLabel()
		}
		c.SetSelectedCategory(rest)
		return false, printProducts(sh.out, c.Filtered(), sh.symbol)
	case "categories":
		for _, category := range c.Categories() {
			fmt.Fprintln(sh.out, category)
		}
	case "reviews":
		if len(args) != 1 {
			return false, usage("reviews <productID>")
		}
		sh.printReviews(args[0])
	case "add":
		if len(args) < 2 {
			return false, usage("add <productID> <qty> [key=value...]")
		}
		qty, err := parseQuantity(args[1])
		if err != nil {
			return false, err
		}
		opts, err := types.ParseOptions(args[2:])
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid options")
		}
		item, err := sh.session.AddToCart(ctx, args[0], qty, opts)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "added %s x%d (line %s)\n", item.Product.Title, item.Quantity, item.ID)
	case "qty":
		if len(args) != 2 {
			return false, usage("qty <lineID> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be a number")
		}
		if err := sh.session.ChangeQuantity(ctx, args[0], n); err != nil {
			return false, err
		}
		sh.printCart()
	case "remove":
		if len(args) != 1 {
			return false, usage("remove <lineID>")
		}
		if err := sh.session.RemoveLine(ctx, args[0]); err != nil {
			return false, err
		}
		sh.printCart()
	case "clear":
		sh.session.ClearCart(ctx)
		sh.printCart()
	case "cart":
		sh.printCart()
	case "checkout":
		return false, sh.checkout(ctx, rest)
	case "metrics":
		return false, sh.printMetrics()
	default:
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown command %q, try help", name))
	}
	return false, nil
}

func (sh *shell) checkout(ctx context.Context, raw string) error {
	if raw == "" {
		return usage("checkout <json>")
	}
	var form checkoutForm
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout form")
	}

	order, err := sh.session.Checkout(ctx, checkout.PlaceOrderInput{
		UserID:   form.UserID,
		Shipping: form.Shipping,
		Payment:  form.Payment,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(sh.out, "order %s placed (%s)\n", order.ID, order.Status)
	fmt.Fprintf(sh.out, "ship to: %s\n", order.ShippingAddress)
	fmt.Fprintf(sh.out, "items: %d  total: %s\n", order.ItemCount, money.Format(order.TotalAmount, sh.symbol))
	return nil
}

func (sh *shell) printCart() {
	snap := sh.session.Cart()
	if snap.IsEmpty() {
		fmt.Fprintln(sh.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tTITLE\tOPTIONS\tQTY\tPRICE\tTOTAL")
	for _, row := range checkout.Summary(snap) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			row.LineID, row.Title, row.Options, row.Quantity,
			money.Format(row.UnitPrice, sh.symbol), money.Format(row.LineTotal, sh.symbol))
	}
	tw.Flush()
	fmt.Fprintf(sh.out, "%d items, total %s\n", snap.ItemCount, money.Format(snap.Total, sh.symbol))
}

func (sh *shell) printReviews(productID string) {
	reviews := sh.session.Catalog().Reviews(productID)
	if len(reviews) == 0 {
		fmt.Fprintln(sh.out, "no reviews")
		return
	}
	for _, r := range reviews {
		fmt.Fprintf(sh.out, "%d/5 %s: %s\n", r.Rating, r.UserName, r.Comment)
	}
}

func (sh *shell) printMetrics() error {
	if sh.registry == nil {
		fmt.Fprintln(sh.out, "metrics disabled")
		return nil
	}
	families, err := sh.registry.Gather()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "gather metrics")
	}
	enc := expfmt.NewEncoder(sh.out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode metrics")
		}
	}
	return nil
}

func (sh *shell) printErr(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "error: %s\n", typed.Message())
	if !pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		return
	}
	if fields, ok := typed.Details().(map[string]string); ok {
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			fmt.Fprintf(sh.out, "  %s: %s\n", key, fields[key])
		}
	}
}

func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be a number")
	}
	return n, nil
}

func usage(text string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "usage: "+text)
}
