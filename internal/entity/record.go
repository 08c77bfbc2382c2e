package entity

import (
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a loosely typed document from the record store. Collections carry
// no schema, so every field read goes through the accessors below; they are
// the single point of defensive coercion for the whole engine.
type Record map[string]any

// lookup resolves a dotted path ("shippingAddress.countryCode") through
// nested maps.
func (r Record) lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case Record:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether the path resolves to any value, including zero values.
func (r Record) Has(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

// Str probes the given paths in order and returns the first non-empty string.
func (r Record) Str(paths ...string) string {
	for _, p := range paths {
		v, ok := r.lookup(p)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Num normalizes a numeric field. It accepts native numbers, json.Number,
// numeric strings and big integers, and yields zero for anything it cannot
// parse. It never produces NaN.
func (r Record) Num(path string) decimal.Decimal {
	v, ok := r.lookup(path)
	if !ok {
		return decimal.Zero
	}
	return normalizeNumber(v)
}

func normalizeNumber(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Int is Num truncated to an integer.
func (r Record) Int(path string) int {
	return int(r.Num(path).IntPart())
}

// Time probes the given paths in order and returns the first parseable
// timestamp. Accepted shapes: time.Time, RFC3339 strings and unix epochs in
// seconds or milliseconds.
func (r Record) Time(paths ...string) (time.Time, bool) {
	for _, p := range paths {
		v, ok := r.lookup(p)
		if !ok {
			continue
		}
		if t, ok := normalizeTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return epochToTime(n), true
		}
	case float64:
		return epochToTime(int64(t)), true
	case int64:
		return epochToTime(t), true
	case int:
		return epochToTime(int64(t)), true
	}
	return time.Time{}, false
}

// epochs past the year ~33658 in seconds are taken as milliseconds
func epochToTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// ID returns the record's identifier under its common aliases.
func (r Record) ID() string {
	return r.Str("id", "_id", "uuid")
}
