package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/services"
	"github.com/dmitrijs2005/gophershop/internal/common"
)

func (a *App) AdminOrders(ctx context.Context, status models.OrderStatus) error {
	orders, err := a.orders.ListOrders(ctx, status)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders.")
		return nil
	}
	printOrders(a.out, orders, true)
	return nil
}

func (a *App) CompleteOrder(ctx context.Context, id string) error {
	if err := a.orders.CompleteOrder(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s completed.\n", id)
	return nil
}

func (a *App) DeleteOrder(ctx context.Context, id string) error {
	if err := a.orders.DeleteOrder(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s deleted.\n", id)
	return nil
}

// AdminProducts lists every product and then the ones running low.
func (a *App) AdminProducts(ctx context.Context) error {
	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products.")
		return nil
	}
	a.printProducts(products)

	low := services.LowStock(products, a.config.LowStockThreshold)
	if len(low) > 0 {
		warnColor.Fprintf(a.out, "\nLow stock (< %d):\n", a.config.LowStockThreshold)
		for _, p := range low {
			fmt.Fprintf(a.out, "  %s %s: %d\n", p.ID, p.DisplayName(), p.Stock)
		}
	}
	return nil
}

// SaveProduct runs the product form. An empty id creates a new product;
// an existing id prefills the form with the stored values.
func (a *App) SaveProduct(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Product id (empty for a new product)", a.out)
	if err != nil {
		return err
	}

	var cur models.Product
	if id != "" {
		if cur, err = a.catalog.GetProduct(ctx, id); err != nil {
			return err
		}
	}

	in := models.ProductInput{ID: id}
	if in.Name, err = GetTextOrDefault(a.reader, "Name", cur.Name, a.out); err != nil {
		return err
	}
	if in.Description, err = GetTextOrDefault(a.reader, "Description", cur.Description, a.out); err != nil {
		return err
	}

	price, err := GetTextOrDefault(a.reader, "Price", formatNumber(cur.Price, id != ""), a.out)
	if err != nil {
		return err
	}
	if in.Price, err = strconv.ParseFloat(price, 64); err != nil {
		return common.NewValidationError("price", "must be a number")
	}

	stock, err := GetTextOrDefault(a.reader, "Stock", formatInt(cur.Stock, id != ""), a.out)
	if err != nil {
		return err
	}
	if in.Stock, err = strconv.ParseInt(stock, 10, 64); err != nil {
		return common.NewValidationError("stock", "must be a whole number")
	}

	if in.ImageURL, err = GetTextOrDefault(a.reader, "Image URL", cur.Image(), a.out); err != nil {
		return err
	}
	if in.Category, err = GetTextOrDefault(a.reader, "Category", cur.Category, a.out); err != nil {
		return err
	}

	saved, err := a.admin.SaveProduct(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Product %s saved.\n", saved)
	return nil
}

func formatNumber(v float64, show bool) string {
	if !show {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64, show bool) string {
	if !show {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// DeleteProduct asks for confirmation before deleting.
func (a *App) DeleteProduct(ctx context.Context, id string) error {
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete product %s? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.admin.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Product %s deleted.\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	st, err := a.admin.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Completed orders: %d\n", st.CompletedOrders)
	fmt.Fprintf(a.out, "Revenue:          %s\n", formatPrice(st.Revenue))
	if len(st.BestSellers) == 0 {
		return nil
	}
	fmt.Fprintln(a.out, "Best sellers:")
	for i, b := range st.BestSellers {
		fmt.Fprintf(a.out, "  %d. %s (%d sold)\n", i+1, b.Name, b.Qty)
	}
	return nil
}
