package domain

import "time"

// TimeSeries is the ordered history of a monitoring session. Insertion order
// is chronological order; channel columns are projections of the same rows, so
// they always have equal length.
type TimeSeries []Sample

func (ts TimeSeries) Len() int { return len(ts) }

// Column projects one channel across every sample.
func (ts TimeSeries) Column(ch Channel) []float64 {
	out := make([]float64, len(ts))
	for i, s := range ts {
		out[i] = s.Value(ch)
	}
	return out
}

func (ts TimeSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(ts))
	for i, s := range ts {
		out[i] = s.Timestamp
	}
	return out
}

func (ts TimeSeries) Intervals() []float64 {
	out := make([]float64, len(ts))
	for i, s := range ts {
		out[i] = s.IntervalSeconds
	}
	return out
}
