package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophershop/internal/client/services"
)

func (a *App) Cart(ctx context.Context) error {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	printCartLines(a.out, lines)
	fmt.Fprintf(a.out, "Total: %s\n", formatPrice(a.cart.Total()))
	return nil
}

// AddToCart fetches the current product so the cart holds a fresh snapshot
// and its stock bounds the quantity.
func (a *App) AddToCart(ctx context.Context, id string, qty int64) error {
	p, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := a.cart.AddToCart(p, qty); err != nil {
		return err
	}
	l, _ := a.cart.Line(id)
	fmt.Fprintf(a.out, "%s: %d in cart.\n", p.DisplayName(), l.Qty)
	return nil
}

func (a *App) SetQuantity(ctx context.Context, id string, qty int64) error {
	if _, ok := a.cart.Line(id); !ok {
		return fmt.Errorf("%s is not in the cart", id)
	}
	if err := a.cart.UpdateQuantity(id, qty); err != nil {
		return err
	}
	if l, ok := a.cart.Line(id); ok {
		fmt.Fprintf(a.out, "%s: %d in cart.\n", l.DisplayName(), l.Qty)
	} else {
		fmt.Fprintf(a.out, "Removed %s from cart.\n", id)
	}
	return nil
}

func (a *App) RemoveFromCart(ctx context.Context, id string) error {
	if _, ok := a.cart.Line(id); !ok {
		return fmt.Errorf("%s is not in the cart", id)
	}
	if err := a.cart.RemoveFromCart(id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s from cart.\n", id)
	return nil
}

func (a *App) ClearCart(ctx context.Context) error {
	if err := a.cart.ClearCart(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cart cleared.")
	return nil
}

// Checkout shows the cart, asks for the order form and places the order.
// Stock decrements that did not apply are listed; the order stands anyway.
func (a *App) Checkout(ctx context.Context) error {
	if err := a.Cart(ctx); err != nil {
		return err
	}
	if a.cart.Len() == 0 {
		return services.ErrEmptyCart
	}

	var req services.CheckoutRequest
	def := ""
	if sess, ok := a.session.Session(); ok {
		def = sess.Name
	}
	name, err := GetTextOrDefault(a.reader, "Your name", def, a.out)
	if err != nil {
		return err
	}
	req.CustomerName = name
	if req.Contact, err = getSimpleText(a.reader, "Contact (phone or table number)", a.out); err != nil {
		return err
	}

	res, err := a.checkout.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}

	successColor.Fprintf(a.out, "Order %s placed, total %s.\n", res.OrderID, formatPrice(res.Total))
	for _, f := range res.FailedSteps {
		warnColor.Fprintf(a.out, "Warning: %s failed: %v\n", f.Name, f.Err)
	}
	return nil
}
