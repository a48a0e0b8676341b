package visits

import (
	"sort"
	"strings"
)

// Field identifies a Visit field usable in filters and sort keys. The set is
// closed: every field maps to a typed accessor, so a query is validated in
// full before any comparison runs.
type Field string

const (
	FieldID        Field = "id"
	FieldName      Field = "name"
	FieldPathname  Field = "pathname"
	FieldEntityRef Field = "entityRef"
	FieldTimestamp Field = "timestamp"
	FieldHits      Field = "hits"
)

// Fields lists every queryable field.
var Fields = []Field{FieldID, FieldName, FieldPathname, FieldEntityRef, FieldTimestamp, FieldHits}

// IsNumeric reports whether the field carries an integer value. Non-numeric
// fields carry strings.
func (f Field) IsNumeric() bool {
	return f == FieldTimestamp || f == FieldHits
}

func (f Field) valid() bool {
	switch f {
	case FieldID, FieldName, FieldPathname, FieldEntityRef, FieldTimestamp, FieldHits:
		return true
	}
	return false
}

func (f Field) stringValue(v Visit) string {
	switch f {
	case FieldID:
		return v.ID
	case FieldName:
		return v.Name
	case FieldPathname:
		return v.Pathname
	case FieldEntityRef:
		return v.EntityRef
	}
	return ""
}

func (f Field) numericValue(v Visit) int64 {
	switch f {
	case FieldTimestamp:
		return v.Timestamp
	case FieldHits:
		return v.Hits
	}
	return 0
}

// compare returns -1, 0 or 1 ordering a before/equal/after b under f.
// Strings compare lexicographically byte-wise, which for UTF-8 agrees with
// code point order; numbers compare by value.
func (f Field) compare(a, b Visit) int {
	if f.IsNumeric() {
		av, bv := f.numericValue(a), f.numericValue(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return strings.Compare(f.stringValue(a), f.stringValue(b))
}

// Operator is a filter comparison operator.
type Operator string

const (
	OpGreater   Operator = ">"
	OpGreaterEq Operator = ">="
	OpLess      Operator = "<"
	OpLessEq    Operator = "<="
	OpEqual     Operator = "=="
	OpContains  Operator = "contains"
)

// FilterExpr is a single predicate over one field. Value must be a string
// for string fields and an integer (int or int64) for numeric fields.
type FilterExpr struct {
	Field Field
	Op    Operator
	Value interface{}
}

// OrderBy is a single sort key with its direction.
type OrderBy struct {
	Field      Field
	Descending bool
}

// Query combines filter predicates (logical AND) and sort keys in priority
// order. The zero Query selects everything in the caller's default order.
type Query struct {
	FilterBy []FilterExpr
	OrderBy  []OrderBy
}

// Apply filters records by every predicate in q.FilterBy, then stable-sorts
// the survivors by q.OrderBy. It is pure: the input slice is never modified.
func Apply(records []Visit, q Query) ([]Visit, error) {
	preds := make([]func(Visit) bool, 0, len(q.FilterBy))
	for _, f := range q.FilterBy {
		p, err := f.predicate()
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	for _, k := range q.OrderBy {
		if !k.Field.valid() {
			return nil, &QuerySpecError{Field: k.Field, Reason: "unknown field"}
		}
	}

	out := make([]Visit, 0, len(records))
	for _, v := range records {
		keep := true
		for _, p := range preds {
			if !p(v) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}

	sortVisits(out, q.OrderBy)
	return out, nil
}

// sortVisits stable-sorts records in place by the given keys. Records equal
// under every key keep their relative input order.
func sortVisits(records []Visit, keys []OrderBy) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			c := k.Field.compare(records[i], records[j])
			if c == 0 {
				continue
			}
			if k.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// predicate validates the expression and compiles it into a pure function
// over a Visit.
func (f FilterExpr) predicate() (func(Visit) bool, error) {
	if !f.Field.valid() {
		return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "unknown field"}
	}

	switch f.Op {
	case OpGreater, OpGreaterEq, OpLess, OpLessEq:
		if !f.Field.IsNumeric() {
			return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "ordering comparison requires a numeric field"}
		}
		want, ok := toInt64(f.Value)
		if !ok {
			return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "comparison value must be an integer"}
		}
		op := f.Op
		field := f.Field
		return func(v Visit) bool {
			got := field.numericValue(v)
			switch op {
			case OpGreater:
				return got > want
			case OpGreaterEq:
				return got >= want
			case OpLess:
				return got < want
			default:
				return got <= want
			}
		}, nil

	case OpEqual:
		field := f.Field
		if field.IsNumeric() {
			want, ok := toInt64(f.Value)
			if !ok {
				return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "comparison value must be an integer"}
			}
			return func(v Visit) bool { return field.numericValue(v) == want }, nil
		}
		want, ok := f.Value.(string)
		if !ok {
			return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "comparison value must be a string"}
		}
		return func(v Visit) bool { return field.stringValue(v) == want }, nil

	case OpContains:
		if f.Field.IsNumeric() {
			return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "contains requires a string field"}
		}
		want, ok := f.Value.(string)
		if !ok {
			return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "comparison value must be a string"}
		}
		field := f.Field
		return func(v Visit) bool { return strings.Contains(field.stringValue(v), want) }, nil
	}

	return nil, &QuerySpecError{Field: f.Field, Op: f.Op, Reason: "unknown operator"}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
