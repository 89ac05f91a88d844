package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
)

// Colors switch themselves off when stdout is not a terminal.
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
)

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func stockLabel(p models.Product) string {
	if !p.InStock() {
		return "out of stock"
	}
	return fmt.Sprintf("%d", p.Stock)
}

func printCartLines(w io.Writer, lines []models.CartLine) {
	tw := newTable(w, "ID", "PRODUCT", "PRICE", "QTY", "SUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.DisplayName(), formatPrice(l.Price), l.Qty, formatPrice(l.Subtotal()))
	}
	tw.Flush()
}

func printOrders(w io.Writer, orders []models.Order, withCustomer bool) {
	header := []string{"ID", "DATE", "STATUS", "TOTAL"}
	if withCustomer {
		header = append(header, "CUSTOMER", "CONTACT")
	}
	tw := newTable(w, header...)
	for _, o := range orders {
		date := "-"
		if t := o.CreatedTime(); !t.IsZero() {
			date = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", o.ID, date, o.Status, formatPrice(o.Total))
		if withCustomer {
			fmt.Fprintf(tw, "\t%s\t%s", o.CustomerName, o.Contact)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
