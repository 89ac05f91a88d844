package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/services"
)

// Orders prints the signed-in user's order history with the items of each order.
func (a *App) Orders(ctx context.Context) error {
	sess, ok := a.session.Session()
	if !ok {
		return services.ErrNotSignedIn
	}
	orders, err := a.orders.OrderHistory(ctx, sess.UID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}
	for _, o := range orders {
		a.printOrder(o)
	}
	return nil
}

func (a *App) printOrder(o models.Order) {
	printOrders(a.out, []models.Order{o}, false)
	lines, err := o.Lines()
	if err != nil {
		fmt.Fprintln(a.out, "  (items unavailable)")
		return
	}
	for _, l := range lines {
		fmt.Fprintf(a.out, "  %d x %s  %s\n", l.Qty, l.DisplayName(), formatPrice(l.Subtotal()))
	}
	fmt.Fprintln(a.out)
}
