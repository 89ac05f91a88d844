package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

// Order is a document of the orders collection. Items holds the JSON
// snapshot of the cart lines at checkout.
type Order struct {
	ID           string      `json:"id" validate:"required"`
	UserID       string      `json:"userId"`
	CustomerName string      `json:"customerName"`
	Contact      string      `json:"contact"`
	Items        string      `json:"items"`
	Total        float64     `json:"total" validate:"gte=0"`
	Status       OrderStatus `json:"status" validate:"oneof=pending completed"`
	CreatedAt    string      `json:"createdAt"`
}

func OrderFromRecord(rec docstore.Record) (Order, error) {
	o := Order{
		ID:           stringField(rec, docstore.IDField),
		UserID:       stringField(rec, "userId"),
		CustomerName: stringField(rec, "customerName"),
		Contact:      stringField(rec, "contact"),
		Items:        stringField(rec, "items"),
		Total:        floatField(rec, "total"),
		Status:       OrderStatus(stringField(rec, "status")),
		CreatedAt:    stringField(rec, "createdAt"),
	}
	if err := Validate(o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// NewOrderRecord builds the body of a freshly placed order.
func NewOrderRecord(userID, customerName, contact, items string, total float64, createdAt time.Time) docstore.Record {
	return docstore.Record{
		"userId":       userID,
		"customerName": customerName,
		"contact":      contact,
		"items":        items,
		"total":        total,
		"status":       string(OrderPending),
		"createdAt":    createdAt,
	}
}

// CreatedTime parses CreatedAt; the zero time means absent or unparsable.
func (o Order) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, o.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Lines parses the items snapshot.
func (o Order) Lines() ([]CartLine, error) {
	var lines []CartLine
	if err := json.Unmarshal([]byte(o.Items), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ShortID is the abbreviated id shown in order lists.
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[:6] + "..."
}
