// Package core has the pure derivation logic for DORA metrics: event
// normalization, daily aggregation, benchmark classification, organization
// rollup, business correlation and insight summarization. Nothing in this
// package performs I/O, retries, or reads clocks; every function is a pure
// function of its inputs and the validated config.
package core

import (
	"time"

	"github.com/montanaflynn/stats"
)

// minutesBetween returns the span between two instants in fractional
// minutes. Negative spans collapse to zero rather than producing negative
// lead times from clock-skewed records.
func minutesBetween(from, to time.Time) float64 {
	m := to.Sub(from).Minutes()
	if m < 0 {
		return 0
	}
	return m
}

// mean returns the arithmetic mean, or 0 for an empty slice. Absence is the
// caller's concern; a zero here always pairs with a zero count.
func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}
