package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/persist"
	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

type CartState int

const (
	CartLoading CartState = iota
	CartReady
)

func (s CartState) String() string {
	if s == CartReady {
		return "ready"
	}
	return "loading"
}

// CartStore owns the cart lines. The cart does not belong to a session and
// survives sign-out.
//
// Every line satisfies 1 <= qty <= stock as of the mutation that last
// touched it; a rejected mutation leaves the cart unchanged.
type CartStore struct {
	store  kv.Repository
	writer *persist.Writer
	logger logging.Logger

	mu    sync.Mutex
	state CartState
	lines []models.CartLine
}

func NewCartStore(store kv.Repository, writer *persist.Writer, logger logging.Logger) *CartStore {
	return &CartStore{store: store, writer: writer, logger: logger.With("store", "cart")}
}

// Load restores the persisted cart. A corrupt snapshot becomes an empty cart
// and its key is removed.
func (c *CartStore) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = CartLoading
	c.mu.Unlock()

	raw, ok, err := c.store.Get(ctx, common.KeyCart)
	if err != nil {
		c.setReady(nil)
		return fmt.Errorf("load cart: %w", err)
	}

	var lines []models.CartLine
	if ok {
		lines, err = models.ParseLines(raw)
		if err != nil {
			c.logger.Warn(ctx, "discarding corrupt cart", "error", err)
			lines = nil
			if err := c.store.Delete(ctx, common.KeyCart); err != nil {
				c.logger.Error(ctx, "remove corrupt cart", "error", err)
			}
		}
	}
	c.setReady(lines)
	return nil
}

func (c *CartStore) setReady(lines []models.CartLine) {
	c.mu.Lock()
	c.lines = lines
	c.state = CartReady
	c.mu.Unlock()
}

// AddToCart adds qty of product, merging with an existing line. The line's
// product snapshot is refreshed from product.
func (c *CartStore) AddToCart(product models.Product, qty int64) error {
	if product.ID == "" {
		return common.NewValidationError("id", "is required")
	}
	if qty <= 0 {
		return common.NewValidationError("qty", "must be > 0")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CartReady {
		return ErrNotReady
	}

	i := c.indexLocked(product.ID)
	var current int64
	if i >= 0 {
		current = c.lines[i].Qty
	}
	if current+qty > product.Stock {
		return &CapacityError{ProductID: product.ID, Name: product.DisplayName(), Stock: product.Stock, Requested: current + qty}
	}

	if i >= 0 {
		c.lines[i] = models.CartLine{Product: product, Qty: current + qty}
	} else {
		c.lines = append(c.lines, models.CartLine{Product: product, Qty: qty})
	}
	c.persistLocked()
	return nil
}

// UpdateQuantity sets a line's qty. Unknown ids are a no-op and qty <= 0
// removes the line.
func (c *CartStore) UpdateQuantity(productID string, qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CartReady {
		return ErrNotReady
	}

	i := c.indexLocked(productID)
	if i < 0 {
		return nil
	}
	line := c.lines[i]
	if qty > line.Stock {
		return &CapacityError{ProductID: line.ID, Name: line.DisplayName(), Stock: line.Stock, Requested: qty}
	}
	if qty <= 0 {
		c.removeLocked(i)
		return nil
	}
	c.lines[i].Qty = qty
	c.persistLocked()
	return nil
}

func (c *CartStore) RemoveFromCart(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CartReady {
		return ErrNotReady
	}
	if i := c.indexLocked(productID); i >= 0 {
		c.removeLocked(i)
	}
	return nil
}

func (c *CartStore) ClearCart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CartReady {
		return ErrNotReady
	}
	c.lines = nil
	c.persistLocked()
	return nil
}

// Total is Σ price × qty over the current lines.
func (c *CartStore) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.lines)
}

func totalOf(lines []models.CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *CartStore) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

func (c *CartStore) Line(productID string) (models.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(productID); i >= 0 {
		return cloneLines(c.lines[i : i+1])[0], true
	}
	return models.CartLine{}, false
}

func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *CartStore) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot is the JSON text of the lines, as persisted and as stored in an
// order's items field.
func (c *CartStore) Snapshot() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.MarshalLines(c.lines)
}

func (c *CartStore) indexLocked(productID string) int {
	for i, l := range c.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (c *CartStore) removeLocked(i int) {
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	c.persistLocked()
}

func (c *CartStore) persistLocked() {
	blob, err := models.MarshalLines(c.lines)
	if err != nil {
		c.logger.Error(context.Background(), "encode cart", "error", err)
		return
	}
	c.writer.Schedule(common.KeyCart, blob)
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	for i, l := range lines {
		out[i] = l
		out[i].Images = append([]string(nil), l.Images...)
	}
	return out
}
