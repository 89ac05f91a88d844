package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/services"
)

// Products lists the catalog filtered by a name search and a category,
// followed by the known categories.
func (a *App) Products(ctx context.Context, search, category string) error {
	all, err := a.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	products := services.FilterProducts(all, search, category)
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
	} else {
		a.printProducts(products)
	}
	fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(services.Categories(all), ", "))
	return nil
}

func (a *App) printProducts(products []models.Product) {
	tw := newTable(a.out, "", "ID", "NAME", "CATEGORY", "PRICE", "STOCK")
	for _, p := range products {
		mark := " "
		if a.session.IsFavorite(p.ID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.DisplayName(), p.Category, formatPrice(p.Price), stockLabel(p))
	}
	tw.Flush()
}

// Show prints one product with its favorite and cart status.
func (a *App) Show(ctx context.Context, id string) error {
	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", p.DisplayName(), p.ID)
	if p.Category != "" {
		fmt.Fprintf(a.out, "Category: %s\n", p.Category)
	}
	fmt.Fprintf(a.out, "Price:    %s\n", formatPrice(p.Price))
	fmt.Fprintf(a.out, "Stock:    %s\n", stockLabel(p))
	if img := p.Image(); img != "" {
		fmt.Fprintf(a.out, "Image:    %s\n", img)
	}
	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}
	if a.session.IsFavorite(p.ID) {
		fmt.Fprintln(a.out, "In your favorites.")
	}
	if l, ok := a.cart.Line(p.ID); ok {
		fmt.Fprintf(a.out, "In your cart: %d\n", l.Qty)
	}
	return nil
}

func (a *App) Favorite(ctx context.Context, id string) error {
	if a.session.AddFavorite(id) {
		fmt.Fprintf(a.out, "Added %s to favorites.\n", id)
	} else {
		fmt.Fprintf(a.out, "%s is already a favorite.\n", id)
	}
	return nil
}

func (a *App) Unfavorite(ctx context.Context, id string) error {
	if a.session.RemoveFavorite(id) {
		fmt.Fprintf(a.out, "Removed %s from favorites.\n", id)
	} else {
		fmt.Fprintf(a.out, "%s is not a favorite.\n", id)
	}
	return nil
}

// Favorites lists the favorite products that still exist in the catalog.
func (a *App) Favorites(ctx context.Context) error {
	products, err := a.catalog.FavoriteProducts(ctx, a.session.Favorites())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No favorites yet.")
		return nil
	}
	a.printProducts(products)
	return nil
}
