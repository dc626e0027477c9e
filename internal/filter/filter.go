// Package filter resolves optional search dimensions into one pre-built query
// variant. Each dimension is either the ALL sentinel or a concrete value; the
// set of concrete dimensions selects the variant.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// All is the wire sentinel for an unset dimension.
const All = "ALL"

// Dimension is one filterable axis. Values are bit flags so a Variant is the
// union of its concrete dimensions.
type Dimension uint8

const (
	Category Dimension = 1 << iota
	Merchant
	Brand
	Bank
	Search
)

var dimensionNames = map[Dimension]string{
	Category: "CATEGORY",
	Merchant: "MERCHANT",
	Brand:    "BRAND",
	Bank:     "BANK",
	Search:   "SEARCH",
}

func (d Dimension) String() string { return dimensionNames[d] }

// Value is an optional dimension value.
type Value struct {
	v   string
	set bool
}

// Of parses a raw request value; empty and the exact literal "ALL" are unset,
// so a search for "all" stays a search.
func Of(raw string) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == All {
		return Value{}
	}
	return Value{v: raw, set: true}
}

// Some returns a concrete value.
func Some(v string) Value { return Value{v: v, set: true} }

func (v Value) Get() (string, bool) { return v.v, v.set }
func (v Value) IsAll() bool         { return !v.set }

// Variant is the set of concrete dimensions. The zero Variant is the
// unfiltered query.
type Variant uint8

const Unfiltered Variant = 0

func (v Variant) Has(d Dimension) bool { return uint8(v)&uint8(d) != 0 }

// ErrUnanticipated reports a combination the family has no query for.
var ErrUnanticipated = errors.New("filter: unanticipated dimension combination")

// Family is a closed set of supported variants over an ordered dimension list.
type Family struct {
	Name      string
	dims      []Dimension
	supported map[Variant]bool
}

// NewFamily declares a family. Unfiltered is always supported.
func NewFamily(name string, dims []Dimension, supported ...Variant) *Family {
	f := &Family{Name: name, dims: dims, supported: map[Variant]bool{Unfiltered: true}}
	for _, v := range supported {
		f.supported[v] = true
	}
	return f
}

// Every returns all 2^n variants over dims.
func Every(dims ...Dimension) []Variant {
	out := []Variant{}
	for mask := 0; mask < 1<<len(dims); mask++ {
		var v Variant
		for i, d := range dims {
			if mask&(1<<i) != 0 {
				v |= Variant(d)
			}
		}
		out = append(out, v)
	}
	return out
}

// V builds a variant from concrete dimensions.
func V(dims ...Dimension) Variant {
	var v Variant
	for _, d := range dims {
		v |= Variant(d)
	}
	return v
}

// Key renders a variant the way it shows up in logs: one token per family
// dimension, ALL when unset, e.g. "CATEGORY_ALL_ALL_SEARCH".
func (f *Family) Key(v Variant) string {
	parts := make([]string, len(f.dims))
	for i, d := range f.dims {
		if v.Has(d) {
			parts[i] = d.String()
		} else {
			parts[i] = All
		}
	}
	return strings.Join(parts, "_")
}

// Query is a resolved filter: the variant plus the concrete values in family
// dimension order.
type Query struct {
	Variant Variant
	Key     string
	values  map[Dimension]string
}

// Value returns the concrete value of d, or "" when d is ALL.
func (q Query) Value(d Dimension) string { return q.values[d] }

// Args returns the concrete values in the given order, skipping ALL dimensions.
func (q Query) Args(order ...Dimension) []any {
	out := []any{}
	for _, d := range order {
		if q.Variant.Has(d) {
			out = append(out, q.values[d])
		}
	}
	return out
}

// Resolve maps the supplied values onto the family. Dimensions outside the
// family are an error, as is any combination the family does not support.
func (f *Family) Resolve(values map[Dimension]Value) (Query, error) {
	q := Query{values: map[Dimension]string{}}
	for d, val := range values {
		if !f.owns(d) {
			return Query{}, fmt.Errorf("%w: %s has no %s dimension", ErrUnanticipated, f.Name, d)
		}
		if s, ok := val.Get(); ok {
			q.Variant |= Variant(d)
			q.values[d] = s
		}
	}
	q.Key = f.Key(q.Variant)
	if !f.supported[q.Variant] {
		return Query{}, fmt.Errorf("%w: %s %s", ErrUnanticipated, f.Name, q.Key)
	}
	return q, nil
}

func (f *Family) owns(d Dimension) bool {
	for _, x := range f.dims {
		if x == d {
			return true
		}
	}
	return false
}

// Supported lists the family's variants, for exhaustive checks against query tables.
func (f *Family) Supported() []Variant {
	out := make([]Variant, 0, len(f.supported))
	for v := range f.supported {
		out = append(out, v)
	}
	return out
}

// Families used by the search endpoints.
var (
	DealSearch = NewFamily("deal-search",
		[]Dimension{Category, Merchant, Brand, Search},
		Every(Category, Merchant, Brand, Search)...)

	DealsOfTheDay = NewFamily("deals-of-the-day",
		[]Dimension{Category, Merchant, Search},
		Every(Category, Merchant, Search)...)

	CreditCardRequests = NewFamily("credit-card-requests",
		[]Dimension{Bank, Search},
		Every(Bank, Search)...)

	// Merchants are searched by category or by brand, never both.
	MerchantIndex = NewFamily("merchant-index",
		[]Dimension{Category, Brand, Search},
		V(Category), V(Category, Search), V(Brand), V(Brand, Search), V(Search))

	DealRequests = NewFamily("deal-requests",
		[]Dimension{Category, Brand, Search},
		Every(Category, Brand, Search)...)
)
