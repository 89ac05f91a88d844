package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// AllCategories is the category filter value that matches every product.
const AllCategories = "All"

// CatalogService reads the products collection.
//
// Contract:
//   - ListProducts: every valid product; invalid documents are skipped.
//   - GetProduct: one product, common.ErrNotFound when it does not exist.
//   - FavoriteProducts: the products among ids, without a request when ids is empty.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	FavoriteProducts(ctx context.Context, ids []string) ([]models.Product, error)
}

type catalogService struct {
	docs   client.Documents
	logger logging.Logger
}

func NewCatalogService(docs client.Documents, logger logging.Logger) CatalogService {
	return &catalogService{docs: docs, logger: logger.With("service", "catalog")}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	docs, err := s.docs.List(ctx, common.CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var products []models.Product
	for _, rec := range docstore.DecodeAll(docs) {
		p, err := models.ProductFromRecord(rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping invalid product", "id", rec[docstore.IDField], "error", err)
			continue
		}
		if p.Stock < 0 {
			s.logger.Warn(ctx, "product is oversold", "id", p.ID, "stock", p.Stock)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	if id == "" {
		return models.Product{}, common.NewValidationError("id", "is required")
	}
	doc, err := s.docs.Get(ctx, common.CollectionProducts, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	rec, ok := docstore.Decode(doc)
	if !ok {
		return models.Product{}, fmt.Errorf("get product %s: %w", id, common.ErrNotFound)
	}
	p, err := models.ProductFromRecord(rec)
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) FavoriteProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	wanted := models.NewFavoriteSet(ids...)

	all, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range all {
		if wanted.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns AllCategories followed by the distinct non-empty
// categories, sorted.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	sort.Strings(cats)
	return append([]string{AllCategories}, cats...)
}

// FilterProducts keeps products whose name contains search (case-insensitive)
// and whose category is category. An empty category or AllCategories
// matches everything.
func FilterProducts(products []models.Product, search, category string) []models.Product {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []models.Product
	for _, p := range products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
