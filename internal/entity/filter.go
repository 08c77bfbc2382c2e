package entity

import (
	"fmt"
	"strings"
	"time"
)

type FilterOp string

const (
	OpEq  FilterOp = "="
	OpGte FilterOp = ">="
	OpLt  FilterOp = "<"
	OpIn  FilterOp = "in"
)

// Filter is one predicate over a record field. The store translates filters
// to SQL where it can; the fallback scan evaluates them in process with
// Match, so both paths must agree.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

func Gte(field string, value any) Filter {
	return Filter{Field: field, Op: OpGte, Value: value}
}

func Lt(field string, value any) Filter {
	return Filter{Field: field, Op: OpLt, Value: value}
}

func In(field string, values ...string) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

// RangeFilters expresses timeField ∈ [r.Start, r.End).
func RangeFilters(timeField string, r DateRange) []Filter {
	return []Filter{Gte(timeField, r.Start), Lt(timeField, r.End)}
}

// Match evaluates the filter against a record in process.
func (f Filter) Match(rec Record) bool {
	switch f.Op {
	case OpEq:
		return matchEq(rec, f.Field, f.Value)
	case OpIn:
		values, ok := f.Value.([]string)
		if !ok {
			return false
		}
		for _, v := range values {
			if matchEq(rec, f.Field, v) {
				return true
			}
		}
		return false
	case OpGte, OpLt:
		if want, ok := f.Value.(time.Time); ok {
			got, ok := rec.Time(f.Field)
			if !ok {
				return false
			}
			if f.Op == OpGte {
				return !got.Before(want)
			}
			return got.Before(want)
		}
		got := rec.Num(f.Field)
		want := normalizeNumber(f.Value)
		if f.Op == OpGte {
			return got.GreaterThanOrEqual(want)
		}
		return got.LessThan(want)
	}
	return false
}

func matchEq(rec Record, field string, want any) bool {
	if s, ok := want.(string); ok {
		return strings.EqualFold(strings.TrimSpace(rec.Str(field)), s)
	}
	v, ok := rec.lookup(field)
	if !ok {
		return false
	}
	return fmt.Sprintf("%v", v) == fmt.Sprintf("%v", want)
}

// MatchAll reports whether the record passes every filter.
func MatchAll(rec Record, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(rec) {
			return false
		}
	}
	return true
}
