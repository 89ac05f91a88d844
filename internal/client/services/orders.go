package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// OrderService reads and manages the orders collection.
type OrderService interface {
	// OrderHistory returns uid's orders, newest first.
	OrderHistory(ctx context.Context, uid string) ([]models.Order, error)
	// ListOrders returns all dated orders with the given status, newest
	// first. An empty status matches both.
	ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	CompleteOrder(ctx context.Context, id string) error
	DeleteOrder(ctx context.Context, id string) error
}

type orderService struct {
	docs   client.Documents
	logger logging.Logger
}

func NewOrderService(docs client.Documents, logger logging.Logger) OrderService {
	return &orderService{docs: docs, logger: logger.With("service", "orders")}
}

func listOrders(ctx context.Context, docs client.Documents, logger logging.Logger) ([]models.Order, error) {
	list, err := docs.List(ctx, common.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var orders []models.Order
	for _, rec := range docstore.DecodeAll(list) {
		o, err := models.OrderFromRecord(rec)
		if err != nil {
			logger.Warn(ctx, "skipping invalid order", "id", rec[docstore.IDField], "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedTime().After(orders[j].CreatedTime())
	})
}

func (s *orderService) OrderHistory(ctx context.Context, uid string) ([]models.Order, error) {
	if uid == "" {
		return nil, ErrNotSignedIn
	}
	all, err := listOrders(ctx, s.docs, s.logger)
	if err != nil {
		return nil, err
	}
	var mine []models.Order
	for _, o := range all {
		if o.UserID == uid {
			mine = append(mine, o)
		}
	}
	sortNewestFirst(mine)
	return mine, nil
}

func (s *orderService) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && status != models.OrderPending && status != models.OrderCompleted {
		return nil, common.NewValidationError("status", "must be one of [pending completed]")
	}
	all, err := listOrders(ctx, s.docs, s.logger)
	if err != nil {
		return nil, err
	}
	var out []models.Order
	for _, o := range all {
		if o.CreatedTime().IsZero() {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("id", "is required")
	}
	fields := docstore.Encode(docstore.Record{"status": string(models.OrderCompleted)})
	if _, err := s.docs.Patch(ctx, common.CollectionOrders, id, fields, []string{"status"}); err != nil {
		return fmt.Errorf("complete order %s: %w", id, err)
	}
	s.logger.Info(ctx, "order completed", "order_id", id)
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("id", "is required")
	}
	if err := s.docs.Delete(ctx, common.CollectionOrders, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	s.logger.Info(ctx, "order deleted", "order_id", id)
	return nil
}
