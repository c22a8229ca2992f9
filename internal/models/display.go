package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisplaySafe converts a raw stored document into values that encode cleanly as JSON.
// Ids become hex strings, dates become ISO-8601 text and binary payloads are summarized
// by their length. Nested documents and arrays are converted recursively.
func DisplaySafe(doc bson.M) map[string]interface{} {
	if doc == nil {
		return nil
	}
	out := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		out[key] = displayValue(value)
	}
	return out
}

func displayValue(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return FormatTimestamp(v.Time())
	case time.Time:
		return FormatTimestamp(v)
	case primitive.Binary:
		return binarySummary(len(v.Data))
	case []byte:
		return binarySummary(len(v))
	case primitive.Timestamp:
		return FormatTimestamp(time.Unix(int64(v.T), 0))
	case bson.M:
		return DisplaySafe(v)
	case map[string]interface{}:
		return DisplaySafe(bson.M(v))
	case bson.D:
		return DisplaySafe(toMap(v))
	case bson.A:
		return displaySlice(v)
	case []interface{}:
		return displaySlice(v)
	default:
		return v
	}
}

func displaySlice(items []interface{}) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = displayValue(item)
	}
	return out
}

func toMap(d bson.D) bson.M {
	m := make(bson.M, len(d))
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

func binarySummary(n int) string {
	return fmt.Sprintf("<binary data: %d bytes>", n)
}
