package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// AdminService is the product and sales back-office.
type AdminService interface {
	// SaveProduct creates the product when in.ID is empty and overwrites
	// every form field otherwise. It returns the product id.
	SaveProduct(ctx context.Context, in models.ProductInput) (string, error)
	DeleteProduct(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

type adminService struct {
	docs   client.Documents
	logger logging.Logger
	now    func() time.Time
}

func NewAdminService(docs client.Documents, logger logging.Logger) AdminService {
	return &adminService{docs: docs, logger: logger.With("service", "admin"), now: time.Now}
}

func (s *adminService) SaveProduct(ctx context.Context, in models.ProductInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := models.Validate(in); err != nil {
		return "", err
	}
	fields := docstore.Encode(in.Record(s.now()))

	if in.ID == "" {
		doc, err := s.docs.Create(ctx, common.CollectionProducts, fields)
		if err != nil {
			return "", fmt.Errorf("create product: %w", err)
		}
		id := docstore.DocumentID(doc.Name)
		s.logger.Info(ctx, "product created", "product_id", id)
		return id, nil
	}

	if _, err := s.docs.Patch(ctx, common.CollectionProducts, in.ID, fields, models.ProductFields); err != nil {
		return "", fmt.Errorf("update product %s: %w", in.ID, err)
	}
	s.logger.Info(ctx, "product updated", "product_id", in.ID)
	return in.ID, nil
}

func (s *adminService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return common.NewValidationError("id", "is required")
	}
	if err := s.docs.Delete(ctx, common.CollectionProducts, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// LowStock returns the products with stock below threshold.
func LowStock(products []models.Product, threshold int64) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out
}
