// Package stats provides the descriptive statistics used to aggregate trial
// samples. The median is preferred over the mean for trial aggregation: OS
// interrupts and scheduling noise produce heavy-tailed outliers that a mean
// absorbs but a median rejects.
package stats

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DescriptiveStats summarizes a fixed-size sample array.
type DescriptiveStats struct {
	Min    float64
	Max    float64
	Avg    float64
	StdDev float64
	Median float64
	Count  int
}

// Describe computes descriptive statistics over the samples.
// Returns an error on an empty input: an empty trial buffer is a harness bug.
func Describe(samples []float64) (DescriptiveStats, error) {
	if len(samples) == 0 {
		return DescriptiveStats{}, errors.New("cannot describe an empty sample set")
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)

	return DescriptiveStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Avg:    mean,
		StdDev: std,
		Median: Median(sorted),
		Count:  len(sorted),
	}, nil
}

// Median returns the middle order statistic of the sorted samples. With an
// even count the lesser of the two middle elements is returned rather than
// their average, so the result is always an element of the input.
func Median(sorted []float64) float64 {
	if len(sorted) == 0 {
		panic("cannot take median of an empty sample set")
	}
	return sorted[(len(sorted)-1)/2]
}
