package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/learnquest/questsync/internal/logger"
)

// decode turns any JSON-shaped input into generic values.
// Numbers are kept as json.Number so identifiers keep every digit.
// Undecodable input yields nil; a typed value that cannot be encoded is
// logged first, since its fields are lost.
func decode(raw any) any {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			logger.Warn("normalise: encoding %T: %v", v, err)
			return nil
		}
		data = encoded
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// asString mirrors JavaScript String() for scalars. Objects, arrays and
// null fall back to def.
func asString(v any, def string) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return def
	}
}

// asID coerces an identifier to a string. Empty ids count as missing.
func asID(v any) (string, bool) {
	id := asString(v, "")
	return id, id != ""
}

// asNumber returns v as a finite number.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any, def int) int {
	f, ok := asNumber(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(math.Trunc(f))
}

func asFloat(v any, def float64) float64 {
	f, ok := asNumber(v)
	if !ok {
		return def
	}
	return f
}

// asBool accepts true, "true", "1", "yes" and 1. Everything else is false.
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		}
		return false
	default:
		f, ok := asNumber(b)
		return ok && f == 1
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// asTime parses ISO-8601 strings and epoch milliseconds.
// The zero time and times outside years 0-9999 count as missing: JSON
// cannot encode them, so they would not survive the cache.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return encodableTime(parsed)
			}
		}
		return time.Time{}, false
	case json.Number, float64, int, int64:
		ms, ok := asNumber(t)
		if !ok || ms > maxEpochMillis || ms < minEpochMillis {
			return time.Time{}, false
		}
		return encodableTime(time.UnixMilli(int64(ms)))
	default:
		return time.Time{}, false
	}
}

// Epoch millisecond bounds of years 0 and 9999.
var (
	minEpochMillis = float64(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	maxEpochMillis = float64(time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli())
)

func encodableTime(t time.Time) (time.Time, bool) {
	t = t.UTC()
	if t.IsZero() || t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}
