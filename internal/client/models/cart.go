package models

import "encoding/json"

// CartLine is one product in the cart with its quantity. It serializes flat,
// as {...productFields, qty}.
type CartLine struct {
	Product
	Qty int64 `json:"qty"`
}

// Subtotal is price × qty.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Qty)
}

// MarshalLines renders the persisted/ordered snapshot of lines. A nil slice
// renders as "[]".
func MarshalLines(lines []CartLine) (string, error) {
	if lines == nil {
		lines = []CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseLines decodes a persisted cart. Lines without an id or with qty < 1
// make the whole blob invalid.
func ParseLines(data string) ([]CartLine, error) {
	var lines []CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if err := Validate(cartLineCheck{ID: l.ID, Qty: l.Qty}); err != nil {
			return nil, err
		}
		if _, dup := seen[l.ID]; dup {
			return nil, &duplicateLineError{id: l.ID}
		}
		seen[l.ID] = struct{}{}
	}
	return lines, nil
}

type cartLineCheck struct {
	ID  string `validate:"required"`
	Qty int64  `validate:"gte=1"`
}

type duplicateLineError struct{ id string }

func (e *duplicateLineError) Error() string {
	return "duplicate cart line " + e.id
}
