package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/olist/pkg/core"
)

// nullTokens are cell values read as null.
var nullTokens = map[string]bool{
	"":     true,
	"NULL": true,
	"null": true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
}

// rawText returns the textual form of a scanned value; ok is false for null.
func rawText(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case []byte:
		s = string(x)
	case time.Time:
		s = x.Format(core.TimestampLayout)
	default:
		s = fmt.Sprint(x)
	}
	if nullTokens[strings.TrimSpace(s)] {
		return "", false
	}
	return s, true
}

// coerce converts a scanned value to the Go type of kind.
// Null and unparseable values report ok=false and are left out of the record.
func coerce(kind core.ColumnKind, v any) (any, bool) {
	switch kind {
	case core.KindInt:
		return toInt(v)
	case core.KindFloat:
		return toFloat(v)
	case core.KindTimestamp:
		return toTime(v)
	default:
		return rawText(v)
	}
}

func toInt(v any) (any, bool) {
	switch x := v.(type) {
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case int:
		return x, true
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, false
	}
	n := f.(float64)
	if n != math.Trunc(n) {
		return nil, false
	}
	return int(n), true
}

func toFloat(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nil, false
		}
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int:
		return float64(x), true
	}
	s, ok := rawText(v)
	if !ok {
		return nil, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return nil, false
	}
	return f, true
}

func toTime(v any) (any, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := rawText(v)
	if !ok {
		return nil, false
	}
	t, err := time.Parse(core.TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return t, true
}
