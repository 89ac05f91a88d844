package docstore

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_WireShapes(t *testing.T) {
	created := time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.UTC)
	rec := Record{
		"name":      "Espresso",
		"stock":     12,
		"price":     4.5,
		"rounded":   10.0,
		"createdAt": created,
		"images":    []string{"a.png", "b.png"},
		"active":    true,
		"nothing":   nil,
		"nested":    map[string]any{"x": 1},
		"nan":       math.NaN(),
	}

	b, err := json.Marshal(EncodeDocument(rec))
	require.NoError(t, err)

	assert.JSONEq(t, `{"fields":{
		"name":{"stringValue":"Espresso"},
		"stock":{"integerValue":"12"},
		"price":{"doubleValue":4.5},
		"rounded":{"integerValue":"10"},
		"createdAt":{"timestampValue":"2025-03-04T05:06:07.891Z"},
		"images":{"arrayValue":{"values":[{"stringValue":"a.png"},{"stringValue":"b.png"}]}}
	}}`, string(b))
}

func TestEncode_EveryIntegerKind(t *testing.T) {
	rec := Record{
		"int": int(-1), "int8": int8(-8), "int16": int16(-16), "int32": int32(-32), "int64": int64(-64),
		"uint": uint(1), "uint8": uint8(8), "uint16": uint16(16), "uint32": uint32(32), "uint64": uint64(1 << 63),
	}

	fields := Encode(rec)

	want := map[string]string{
		"int": "-1", "int8": "-8", "int16": "-16", "int32": "-32", "int64": "-64",
		"uint": "1", "uint8": "8", "uint16": "16", "uint32": "32", "uint64": "9223372036854775808",
	}
	require.Len(t, fields, len(want))
	for key, v := range want {
		assert.Equal(t, IntegerValue(v), fields[key], key)
	}
}

func TestEncode_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	fields := Encode(Record{"at": time.Date(2025, 1, 1, 21, 0, 0, 0, loc)})

	require.NotNil(t, fields["at"].TimestampValue)
	assert.Equal(t, "2025-01-02T00:00:00.000Z", *fields["at"].TimestampValue)
}

func TestDecode_AbsentWhenMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
	}{
		{name: "nil", doc: nil},
		{name: "no name", doc: &Document{Fields: map[string]Value{"a": StringValue("x")}}},
		{name: "no fields", doc: &Document{Name: "projects/p/databases/(default)/documents/products/p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Decode(tt.doc)
			assert.False(t, ok)
			assert.Nil(t, rec)
		})
	}
}

func TestDecode_FromWireJSON(t *testing.T) {
	raw := `{
		"name": "projects/p/databases/(default)/documents/products/p1",
		"fields": {
			"name": {"stringValue": "Latte"},
			"stock": {"integerValue": "7"},
			"price": {"doubleValue": 6.25},
			"createdAt": {"timestampValue": "2025-01-02T03:04:05.000Z"},
			"images": {"arrayValue": {}},
			"tags": {"arrayValue": {"values": [{"stringValue": "hot"}, {"integerValue": "1"}]}},
			"featured": {"booleanValue": true},
			"meta": {"mapValue": {"fields": {}}}
		}
	}`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	rec, ok := Decode(&doc)
	require.True(t, ok)

	want := Record{
		"id":        "p1",
		"name":      "Latte",
		"stock":     int64(7),
		"price":     6.25,
		"createdAt": "2025-01-02T03:04:05.000Z",
		"images":    []string{},
		"tags":      []string{"hot"},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("decoded record mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		field string
		in    Value
		want  any
	}{
		{name: "stock from double", field: "stock", in: DoubleValue(3.9), want: int64(3)},
		{name: "stock from string digits", field: "stock", in: StringValue("12abc"), want: int64(12)},
		{name: "stock invalid", field: "stock", in: StringValue("lots"), want: int64(0)},
		{name: "stock bad integer text", field: "stock", in: IntegerValue("x1"), want: int64(0)},
		{name: "price from integer", field: "price", in: IntegerValue("10"), want: 10.0},
		{name: "price from string", field: "price", in: StringValue("2.5"), want: 2.5},
		{name: "price invalid", field: "price", in: StringValue("free"), want: 0.0},
		{name: "total from array", field: "total", in: StringArrayValue([]string{"1"}), want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Decode(&Document{Name: "orders/o1", Fields: map[string]Value{tt.field: tt.in}})
			require.True(t, ok)
			assert.Equal(t, tt.want, rec[tt.field])
		})
	}
}

func TestDecode_AbsentNumericFieldsStayAbsent(t *testing.T) {
	rec, ok := Decode(&Document{Name: "users/u1", Fields: map[string]Value{"name": StringValue("Ana")}})
	require.True(t, ok)
	assert.NotContains(t, rec, "stock")
	assert.NotContains(t, rec, "price")
	assert.NotContains(t, rec, "total")
}

func TestRoundTrip(t *testing.T) {
	created := time.Date(2024, 12, 31, 23, 59, 59, 5_000_000, time.UTC)
	records := []Record{
		{"name": "Mocha", "price": 7.75, "stock": int64(4), "images": []string{"m.png"}, "category": "coffee"},
		{"userId": "u1", "items": `[{"id":"p1","qty":2}]`, "total": 12.5, "status": "pending"},
		{"empty": "", "negative": int64(-3), "ratio": -0.125, "tags": []string{}},
	}

	for _, r := range records {
		got, ok := Decode(&Document{Name: "c/doc-1", Fields: Encode(r)})
		require.True(t, ok)

		want := Record{"id": "doc-1"}
		for k, v := range r {
			want[k] = v
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}

	got, ok := Decode(&Document{Name: "c/t", Fields: Encode(Record{"createdAt": created})})
	require.True(t, ok)
	assert.Equal(t, FormatTimestamp(created), got["createdAt"])
}

func TestRoundTrip_CoercionIsIdempotent(t *testing.T) {
	first, ok := Decode(&Document{Name: "products/p", Fields: map[string]Value{
		"stock": StringValue("9"),
		"price": StringValue("1.5"),
	}})
	require.True(t, ok)

	again, ok := Decode(&Document{Name: "products/p", Fields: Encode(first)})
	require.True(t, ok)
	assert.Equal(t, first, again)
}

func TestDecodeAll_SkipsAbsent(t *testing.T) {
	docs := []Document{
		{Name: "products/a", Fields: map[string]Value{"name": StringValue("A")}},
		{Name: "products/b"},
		{Fields: map[string]Value{"name": StringValue("C")}},
	}
	recs := DecodeAll(docs)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0][IDField])
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "abc", DocumentID("projects/p/databases/(default)/documents/orders/abc"))
	assert.Equal(t, "abc", DocumentID("orders/abc/"))
	assert.Equal(t, "plain", DocumentID("plain"))
}
