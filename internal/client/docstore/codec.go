package docstore

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is the plain representation of a document: field name to native
// value. Decoded records hold string, int64, float64 or []string values and
// an injected "id".
type Record map[string]any

// IDField is the key under which Decode injects the document id.
const IDField = "id"

// TimestampLayout is the ISO-8601 layout used for timestampValue (UTC,
// millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way Encode writes timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Encode maps every supported field of rec to its tagged envelope. Booleans,
// nil, nested structures, non-finite floats and unknown types are omitted.
func Encode(rec Record) map[string]Value {
	fields := make(map[string]Value, len(rec))
	for key, raw := range rec {
		if v, ok := encodeValue(raw); ok {
			fields[key] = v
		}
	}
	return fields
}

// EncodeDocument wraps Encode's output as a request body.
func EncodeDocument(rec Record) Document {
	return Document{Fields: Encode(rec)}
}

func encodeValue(raw any) (Value, bool) {
	switch v := raw.(type) {
	case string:
		return StringValue(v), true
	case int:
		return IntegerValue(strconv.FormatInt(int64(v), 10)), true
	case int8:
		return IntegerValue(strconv.FormatInt(int64(v), 10)), true
	case int16:
		return IntegerValue(strconv.FormatInt(int64(v), 10)), true
	case int32:
		return IntegerValue(strconv.FormatInt(int64(v), 10)), true
	case int64:
		return IntegerValue(strconv.FormatInt(v, 10)), true
	case uint:
		return IntegerValue(strconv.FormatUint(uint64(v), 10)), true
	case uint8:
		return IntegerValue(strconv.FormatUint(uint64(v), 10)), true
	case uint16:
		return IntegerValue(strconv.FormatUint(uint64(v), 10)), true
	case uint32:
		return IntegerValue(strconv.FormatUint(uint64(v), 10)), true
	case uint64:
		return IntegerValue(strconv.FormatUint(v, 10)), true
	case float32:
		return encodeFloat(float64(v))
	case float64:
		return encodeFloat(v)
	case time.Time:
		return TimestampValue(FormatTimestamp(v)), true
	case []string:
		return StringArrayValue(v), true
	default:
		return Value{}, false
	}
}

func encodeFloat(f float64) (Value, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntegerValue(strconv.FormatInt(int64(f), 10)), true
	}
	return DoubleValue(f), true
}

// Decode converts a document into a Record. It reports false when the
// document is nil or lacks a name or a fields map; callers treat that as
// "not found" rather than an error.
//
// stock is coerced to int64 and price/total to float64 whenever present;
// unparsable values become 0.
func Decode(doc *Document) (Record, bool) {
	if doc == nil || doc.Name == "" || doc.Fields == nil {
		return nil, false
	}

	rec := Record{IDField: DocumentID(doc.Name)}
	for key, v := range doc.Fields {
		if native, ok := decodeValue(v); ok {
			rec[key] = native
		}
	}

	if raw, ok := rec["stock"]; ok {
		rec["stock"] = toInt(raw)
	}
	for _, key := range []string{"price", "total"} {
		if raw, ok := rec[key]; ok {
			rec[key] = toFloat(raw)
		}
	}

	return rec, true
}

// DecodeAll decodes docs, skipping the ones Decode rejects.
func DecodeAll(docs []Document) []Record {
	out := make([]Record, 0, len(docs))
	for i := range docs {
		if rec, ok := Decode(&docs[i]); ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeValue(v Value) (any, bool) {
	switch {
	case v.ArrayValue != nil:
		items := make([]string, 0, len(v.ArrayValue.Values))
		for _, el := range v.ArrayValue.Values {
			if el.StringValue != nil {
				items = append(items, *el.StringValue)
			}
		}
		return items, true
	case v.TimestampValue != nil:
		return *v.TimestampValue, true
	case v.StringValue != nil:
		return *v.StringValue, true
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return *v.IntegerValue, true
		}
		return n, true
	case v.DoubleValue != nil:
		return *v.DoubleValue, true
	default:
		return nil, false
	}
}

func toInt(raw any) int64 {
	switch v := raw.(type) {
	case int64:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case string:
		return parseLeadingInt(v)
	default:
		return 0
	}
}

func toFloat(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// parseLeadingInt reads an optional sign and the leading decimal digits of s,
// so "12abc" is 12 and "abc" is 0.
func parseLeadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
