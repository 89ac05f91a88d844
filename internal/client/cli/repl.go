package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Logout(ctx context.Context) error

	Products(ctx context.Context, search, category string) error
	Show(ctx context.Context, id string) error
	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
	Favorites(ctx context.Context) error

	Cart(ctx context.Context) error
	AddToCart(ctx context.Context, id string, qty int64) error
	SetQuantity(ctx context.Context, id string, qty int64) error
	RemoveFromCart(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error
	Checkout(ctx context.Context) error
	Orders(ctx context.Context) error

	AdminOrders(ctx context.Context, status models.OrderStatus) error
	CompleteOrder(ctx context.Context, id string) error
	DeleteOrder(ctx context.Context, id string) error
	AdminProducts(ctx context.Context) error
	SaveProduct(ctx context.Context) error
	DeleteProduct(ctx context.Context, id string) error
	Stats(ctx context.Context) error
}

const (
	helpGuest = "Available commands: register, login, reset, products [search|-] [category], show <id>, " +
		"cart, add <id> [qty], qty <id> <n>, remove <id>, clear, exit"
	helpUser = "Available commands: products [search|-] [category], show <id>, fav <id>, unfav <id>, favorites, " +
		"cart, add <id> [qty], qty <id> <n>, remove <id>, clear, checkout, orders, logout, exit"
	helpAdmin = "Admin commands: admin-orders [pending|completed], complete <id>, delete-order <id>, " +
		"admin-products, product-save, product-delete <id>, stats"
)

// runREPL starts a read–eval–print loop for the storefront CLI.
//
// It reads a line from reader, parses the first token as the command, checks
// its arguments and dispatches to methods on 'a'. Commands that need a
// signed-in user or an admin are refused otherwise. Errors returned by
// handlers are printed and the loop continues. The loop exits on EOF or when
// the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shop> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errQuit) {
				printlnFn("Bye!")
				return
			}
			printlnFn(errorColor.Sprint("Error:"), err)
		}
	}
}

var (
	errQuit         = errors.New("quit")
	errNotSignedIn  = errors.New("sign in first (login)")
	errAdminOnly    = errors.New("admin only")
	errUnknownInput = errors.New("unknown command")
)

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpUser)
		} else {
			printlnFn(helpGuest)
		}
		if a.isAdmin() {
			printlnFn(helpAdmin)
		}
		return nil

	case "exit", "quit":
		return errQuit

	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "reset":
		return a.ResetPassword(ctx)

	case "products", "p":
		search, category := "", ""
		if len(args) > 0 && args[0] != "-" {
			search = args[0]
		}
		if len(args) > 1 {
			category = strings.Join(args[1:], " ")
		}
		return a.Products(ctx, search, category)
	case "show":
		if len(args) != 1 {
			return usageError("show <id>")
		}
		return a.Show(ctx, args[0])

	case "cart":
		return a.Cart(ctx)
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return usageError("add <id> [qty]")
		}
		qty := int64(1)
		if len(args) == 2 {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return usageError("add <id> [qty]")
			}
			qty = n
		}
		return a.AddToCart(ctx, args[0], qty)
	case "qty":
		if len(args) != 2 {
			return usageError("qty <id> <n>")
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return usageError("qty <id> <n>")
		}
		return a.SetQuantity(ctx, args[0], n)
	case "remove":
		if len(args) != 1 {
			return usageError("remove <id>")
		}
		return a.RemoveFromCart(ctx, args[0])
	case "clear":
		return a.ClearCart(ctx)
	}

	if !a.isLoggedIn() {
		if isUserCommand(cmd) || isAdminCommand(cmd) {
			return errNotSignedIn
		}
		return fmt.Errorf("%w: %s", errUnknownInput, cmd)
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "fav", "unfav":
		if len(args) != 1 {
			return usageError(cmd + " <id>")
		}
		if cmd == "fav" {
			return a.Favorite(ctx, args[0])
		}
		return a.Unfavorite(ctx, args[0])
	case "favorites":
		return a.Favorites(ctx)
	case "checkout":
		return a.Checkout(ctx)
	case "orders":
		return a.Orders(ctx)
	}

	if !isAdminCommand(cmd) {
		return fmt.Errorf("%w: %s", errUnknownInput, cmd)
	}
	if !a.isAdmin() {
		return errAdminOnly
	}

	switch cmd {
	case "admin-orders":
		var status models.OrderStatus
		if len(args) > 0 {
			status = models.OrderStatus(args[0])
			if status != models.OrderPending && status != models.OrderCompleted {
				return usageError("admin-orders [pending|completed]")
			}
		}
		return a.AdminOrders(ctx, status)
	case "complete", "delete-order", "product-delete":
		if len(args) != 1 {
			return usageError(cmd + " <id>")
		}
		switch cmd {
		case "complete":
			return a.CompleteOrder(ctx, args[0])
		case "delete-order":
			return a.DeleteOrder(ctx, args[0])
		default:
			return a.DeleteProduct(ctx, args[0])
		}
	case "admin-products":
		return a.AdminProducts(ctx)
	case "product-save":
		return a.SaveProduct(ctx)
	default:
		return a.Stats(ctx)
	}
}

func isUserCommand(cmd string) bool {
	switch cmd {
	case "logout", "fav", "unfav", "favorites", "checkout", "orders":
		return true
	}
	return false
}

func isAdminCommand(cmd string) bool {
	switch cmd {
	case "admin-orders", "complete", "delete-order", "admin-products", "product-save", "product-delete", "stats":
		return true
	}
	return false
}
