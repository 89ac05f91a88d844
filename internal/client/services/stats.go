package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/gophershop/internal/client/models"
)

const bestSellerCount = 5

// BestSeller is a product name with the quantity sold.
type BestSeller struct {
	Name string
	Qty  int64
}

// Stats summarizes completed orders.
type Stats struct {
	CompletedOrders int
	Revenue         float64
	BestSellers     []BestSeller
}

// Stats aggregates completed orders only. Lines are grouped by product name;
// orders whose items cannot be parsed still count toward revenue.
func (s *adminService) Stats(ctx context.Context) (Stats, error) {
	orders, err := listOrders(ctx, s.docs, s.logger)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	sold := make(map[string]int64)
	for _, o := range orders {
		if o.Status != models.OrderCompleted {
			continue
		}
		st.CompletedOrders++
		st.Revenue += o.Total

		lines, err := o.Lines()
		if err != nil {
			s.logger.Warn(ctx, "skipping unreadable order items", "order_id", o.ID, "error", err)
			continue
		}
		for _, l := range lines {
			sold[l.Name] += l.Qty
		}
	}

	for name, qty := range sold {
		st.BestSellers = append(st.BestSellers, BestSeller{Name: name, Qty: qty})
	}
	sort.Slice(st.BestSellers, func(i, j int) bool {
		a, b := st.BestSellers[i], st.BestSellers[j]
		if a.Qty != b.Qty {
			return a.Qty > b.Qty
		}
		return a.Name < b.Name
	})
	if len(st.BestSellers) > bestSellerCount {
		st.BestSellers = st.BestSellers[:bestSellerCount]
	}
	return st, nil
}
