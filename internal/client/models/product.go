package models

import (
	"time"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
)

// Product is a document of the products collection. Stock can be negative
// when concurrent checkouts oversold the product.
type Product struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price" validate:"gte=0"`
	Stock       int64    `json:"stock"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// ProductFromRecord converts a decoded record and validates it.
func ProductFromRecord(rec docstore.Record) (Product, error) {
	p := Product{
		ID:          stringField(rec, docstore.IDField),
		Name:        stringField(rec, "name"),
		Description: stringField(rec, "description"),
		Price:       floatField(rec, "price"),
		Stock:       intField(rec, "stock"),
		Images:      stringsField(rec, "images"),
		Category:    stringField(rec, "category"),
		CreatedAt:   stringField(rec, "createdAt"),
	}
	if err := Validate(p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DisplayName falls back to a placeholder for unnamed products.
func (p Product) DisplayName() string {
	if p.Name == "" {
		return "(unnamed product)"
	}
	return p.Name
}

// Image returns the first image URL, if any.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// ProductInput is the admin form for creating or editing a product.
// ID is empty when creating.
type ProductInput struct {
	ID          string
	Name        string `validate:"required"`
	Description string
	Price       float64 `validate:"gte=0"`
	Stock       int64   `validate:"gte=0"`
	ImageURL    string  `validate:"required"`
	Category    string  `validate:"required"`
}

// Record builds the document body written by the admin form.
func (in ProductInput) Record(now time.Time) docstore.Record {
	return docstore.Record{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"stock":       in.Stock,
		"images":      []string{in.ImageURL},
		"category":    in.Category,
		"createdAt":   now,
	}
}

// ProductFields lists the fields written by ProductInput.Record, used as the
// update mask when editing.
var ProductFields = []string{"name", "description", "price", "stock", "images", "category", "createdAt"}
