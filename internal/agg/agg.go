// Package agg holds the group-by and reduction helpers shared by the
// metric derivations.
package agg

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Func reduces a non-empty sample to one value.
type Func func(xs []float64) float64

// Mean returns the arithmetic mean.
func Mean(xs []float64) float64 { return stat.Mean(xs, nil) }

// Sum returns the sum.
func Sum(xs []float64) float64 { return floats.Sum(xs) }

// Min returns the smallest value.
func Min(xs []float64) float64 { return floats.Min(xs) }

// Max returns the largest value.
func Max(xs []float64) float64 { return floats.Max(xs) }

// Std returns the sample standard deviation (n-1 denominator).
func Std(xs []float64) float64 { return stat.StdDev(xs, nil) }

// Var returns the sample variance (n-1 denominator).
func Var(xs []float64) float64 { return stat.Variance(xs, nil) }

// Median returns the middle value, averaging the two middle values of an
// even-sized sample. xs is not modified.
func Median(xs []float64) float64 {
	sorted := slices.Clone(xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

var funcs = map[string]Func{
	"mean":   Mean,
	"median": Median,
	"sum":    Sum,
	"min":    Min,
	"max":    Max,
	"std":    Std,
	"var":    Var,
}

// Lookup returns the aggregation registered under name.
func Lookup(name string) (Func, error) {
	f, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown aggregation %q (available: %v)", name, Names())
	}
	return f, nil
}

// Names lists the available aggregation names.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for n := range funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Nullable applies f to the non-nil values of xs. The result is nil when
// every value is nil or when f is undefined for the sample, such as the
// spread of a single value.
func Nullable(f Func, xs []*float64) *float64 {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x != nil && !math.IsNaN(*x) {
			vals = append(vals, *x)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	v := f(vals)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Group is the rows sharing one key.
type Group[K cmp.Ordered, T any] struct {
	Key  K
	Rows []T
}

// GroupBy buckets rows by key and returns the groups in ascending key
// order. Rows for which key reports false are dropped.
func GroupBy[K cmp.Ordered, T any](rows []T, key func(T) (K, bool)) []Group[K, T] {
	idx := make(map[K]int)
	var groups []Group[K, T]
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		i, seen := idx[k]
		if !seen {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	slices.SortFunc(groups, func(a, b Group[K, T]) int { return cmp.Compare(a.Key, b.Key) })
	return groups
}

// Index builds a hash index of rows by key for joins.
// Rows for which key reports false are left out.
func Index[K comparable, T any](rows []T, key func(T) (K, bool)) map[K][]T {
	idx := make(map[K][]T, len(rows))
	for _, r := range rows {
		if k, ok := key(r); ok {
			idx[k] = append(idx[k], r)
		}
	}
	return idx
}

// Unique indexes rows by key keeping the first row per key.
func Unique[K comparable, T any](rows []T, key func(T) (K, bool)) map[K]T {
	idx := make(map[K]T, len(rows))
	for _, r := range rows {
		if k, ok := key(r); ok {
			if _, dup := idx[k]; !dup {
				idx[k] = r
			}
		}
	}
	return idx
}

// Floats projects rows onto a float column.
func Floats[T any](rows []T, f func(T) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

// CountDistinct returns the number of distinct non-empty values of f.
func CountDistinct[T any](rows []T, f func(T) string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if v := f(r); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// ID is a key function for string identifiers; the empty string is null.
func ID(s string) (string, bool) { return s, s != "" }
