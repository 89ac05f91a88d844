package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	CustomerName string `validate:"required"`
	// Contact is how to reach the customer, e.g. a phone or a table number.
	Contact string `validate:"required"`
}

// StepResult is the outcome of one saga step.
type StepResult struct {
	Name string
	Err  error
}

func (r StepResult) OK() bool { return r.Err == nil }

// Step is a remote write of the order saga.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Saga runs steps in order and records their outcomes. Steps are not
// retried and committed steps are never compensated: a saga that ends with
// failed steps leaves the remote collections partially written.
type Saga struct {
	ID        string
	Committed []StepResult
	Pending   []Step
}

func newSaga(steps ...Step) *Saga {
	return &Saga{ID: uuid.NewString(), Pending: steps}
}

// next runs the first pending step and moves it to Committed.
func (s *Saga) next(ctx context.Context) StepResult {
	step := s.Pending[0]
	s.Pending = s.Pending[1:]
	res := StepResult{Name: step.Name, Err: step.Run(ctx)}
	s.Committed = append(s.Committed, res)
	return res
}

// Failed lists the executed steps that did not succeed.
func (s *Saga) Failed() []StepResult {
	var failed []StepResult
	for _, r := range s.Committed {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// OrderResult reports a placed order.
type OrderResult struct {
	OrderID string
	Total   float64
	SagaID  string
	// Committed holds every executed step in order, successful or not.
	Committed []StepResult
	// FailedSteps are stock decrements that did not apply. The order stays
	// pending and is not rolled back.
	FailedSteps []StepResult
}

// Checkout places orders from the cart of the signed-in user.
type Checkout struct {
	session *SessionStore
	cart    *CartStore
	docs    client.Documents
	logger  logging.Logger
	now     func() time.Time
}

func NewCheckout(session *SessionStore, cart *CartStore, docs client.Documents, logger logging.Logger) *Checkout {
	return &Checkout{session: session, cart: cart, docs: docs, logger: logger.With("workflow", "checkout"), now: time.Now}
}

// PlaceOrder creates the order document, then decrements the stock of every
// ordered product and clears the cart.
//
// Creating the order is all-or-nothing: if it fails nothing else happens
// and the cart is kept. Each stock decrement is attempted once, in cart
// order, even after an earlier one failed; failures are reported in
// OrderResult.FailedSteps and the cart is cleared anyway.
//
// The decrement writes stock = cart-line stock - qty from the product
// snapshot held in the cart, without re-reading the product first, so a
// concurrent checkout of the same product is last-write-wins.
func (c *Checkout) PlaceOrder(ctx context.Context, req CheckoutRequest) (*OrderResult, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Contact = strings.TrimSpace(req.Contact)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	session, ok := c.session.Session()
	if !ok {
		return nil, ErrNotSignedIn
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	items, err := models.MarshalLines(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	total := totalOf(lines)

	var orderID string
	steps := []Step{{
		Name: "create-order",
		Run: func(ctx context.Context) error {
			rec := models.NewOrderRecord(session.UID, req.CustomerName, req.Contact, items, total, c.now())
			doc, err := c.docs.Create(ctx, common.CollectionOrders, docstore.Encode(rec))
			if err != nil {
				return err
			}
			orderID = docstore.DocumentID(doc.Name)
			return nil
		},
	}}
	for _, line := range lines {
		steps = append(steps, decrementStep(c.docs, line))
	}

	saga := newSaga(steps...)
	log := c.logger.With("saga_id", saga.ID, "uid", session.UID)

	if res := saga.next(ctx); !res.OK() {
		log.Error(ctx, "order not created", "error", res.Err)
		return nil, fmt.Errorf("create order: %w", res.Err)
	}
	log = log.With("order_id", orderID)

	for len(saga.Pending) > 0 {
		if res := saga.next(ctx); !res.OK() {
			log.Error(ctx, "stock decrement failed, order left pending", "step", res.Name, "error", res.Err)
		}
	}

	if err := c.cart.ClearCart(); err != nil {
		log.Warn(ctx, "clear cart after checkout", "error", err)
	}

	failed := saga.Failed()
	log.Info(ctx, "order placed", "total", total, "lines", len(lines), "failed_steps", len(failed))
	return &OrderResult{
		OrderID:     orderID,
		Total:       total,
		SagaID:      saga.ID,
		Committed:   saga.Committed,
		FailedSteps: failed,
	}, nil
}

func decrementStep(docs client.Documents, line models.CartLine) Step {
	return Step{
		Name: "decrement-stock:" + line.ID,
		Run: func(ctx context.Context) error {
			fields := docstore.Encode(docstore.Record{"stock": line.Stock - line.Qty})
			_, err := docs.Patch(ctx, common.CollectionProducts, line.ID, fields, []string{"stock"})
			return err
		},
	}
}
