package caribu

import (
	"sort"

	"github.com/christian34/caribu/kernel"
)

// RawResult maps result name -> primitive id -> per triangle values.
type RawResult map[string]map[string][]float64

// AggregatedResult maps result name -> primitive id -> aggregated value.
type AggregatedResult map[string]map[string]float64

// A Reducer collapses the per triangle values of a group into a scalar
// given the matching triangle areas.
type Reducer func(values, areas []float64) float64

// Sum the values.
func Sum(values, _ []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Compute Σ v·a / Σ a where only triangles with a positive area contribute
// to the numerator. Returns 0 when the group has no area.
func AreaWeightedMean(values, areas []float64) float64 {
	var weighted, total float64
	for idx, v := range values {
		a := areas[idx]
		if a > 0 {
			weighted += v * a
		}
		total += a
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Get the reducer used for a result.
func reducerFor(name string) Reducer {
	if name == kernel.ResultArea {
		return Sum
	}
	return AreaWeightedMean
}

// Group values by label. Labels are sorted first; values keep their
// relative order inside each group.
func groupBy[T any](values []T, labels []string) map[string][]T {
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return labels[order[i]] < labels[order[j]] })

	out := make(map[string][]T)
	for _, idx := range order {
		out[labels[idx]] = append(out[labels[idx]], values[idx])
	}
	return out
}

// Get the first value of a group. Used for opaque values that cannot be
// reduced numerically, such as the optical properties of a primitive.
func First[T any](values []T) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	return values[0]
}

// Group opaque values by label keeping the first value of each group.
func groupFirst[T any](values []T, labels []string) map[string]T {
	out := make(map[string]T)
	for label, group := range groupBy(values, labels) {
		out[label] = First(group)
	}
	return out
}

// Reduce unit-converted kernel output into per primitive results.
func aggregate(out *kernel.Output, groups []string, names []string) (RawResult, AggregatedResult) {
	raw := make(RawResult, len(names))
	agg := make(AggregatedResult, len(names))
	areas := groupBy(out.Area, groups)

	for _, name := range names {
		values, _ := out.Values(name)
		raw[name] = groupBy(values, groups)

		reduce := reducerFor(name)
		agg[name] = make(map[string]float64, len(raw[name]))
		for label, group := range raw[name] {
			agg[name][label] = reduce(group, areas[label])
		}
	}
	return raw, agg
}

// Move the results of group label out of raw and agg.
func extractGroup(raw RawResult, agg AggregatedResult, label string) (map[string][]float64, map[string]float64) {
	rawOut := make(map[string][]float64, len(raw))
	for name, groups := range raw {
		if values, found := groups[label]; found {
			rawOut[name] = values
			delete(groups, label)
		}
	}

	aggOut := make(map[string]float64, len(agg))
	for name, groups := range agg {
		if value, found := groups[label]; found {
			aggOut[name] = value
			delete(groups, label)
		}
	}
	return rawOut, aggOut
}
