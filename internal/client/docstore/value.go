// Package docstore is the codec between plain application records and the
// tagged-value wire format of the remote document store.
//
// A document on the wire is {name, fields}, where every field is an envelope
// carrying exactly one typed variant:
//
//	{"stringValue": "Espresso"}
//	{"integerValue": "12"}
//	{"doubleValue": 4.5}
//	{"timestampValue": "2025-01-02T03:04:05.000Z"}
//	{"arrayValue": {"values": [{"stringValue": "a.png"}]}}
//
// Other variants (booleanValue, nullValue, mapValue, ...) are never produced
// by Encode and are dropped by Decode.
package docstore

import "strings"

// Value is one tagged field envelope. Exactly one pointer is set on values
// produced by Encode.
type Value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
}

// ArrayValue holds the elements of an array variant.
type ArrayValue struct {
	Values []Value `json:"values,omitempty"`
}

// Document is a remote document as returned by the store. Name is the full
// resource path, e.g. "projects/p/databases/(default)/documents/products/abc".
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields,omitempty"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ListResponse is the body of GET {collection}.
type ListResponse struct {
	Documents     []Document `json:"documents,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// DocumentID returns the last path segment of a resource name.
func DocumentID(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func StringValue(s string) Value {
	return Value{StringValue: &s}
}

func IntegerValue(s string) Value {
	return Value{IntegerValue: &s}
}

func DoubleValue(f float64) Value {
	return Value{DoubleValue: &f}
}

func TimestampValue(s string) Value {
	return Value{TimestampValue: &s}
}

func StringArrayValue(items []string) Value {
	values := make([]Value, 0, len(items))
	for _, it := range items {
		values = append(values, StringValue(it))
	}
	return Value{ArrayValue: &ArrayValue{Values: values}}
}
