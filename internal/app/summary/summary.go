// Package summary reduces a finished TimeSeries to per-channel quantiles.
package summary

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/DataDog/sketches-go/ddsketch/mapping"
	"github.com/DataDog/sketches-go/ddsketch/store"
	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/units"
)

const (
	// RelativeAccuracy bounds the error of every channel quantile.
	RelativeAccuracy = 0.01

	// Interval histogram range in microseconds: 1µs to one hour.
	intervalMinUs  = 1
	intervalMaxUs  = int64(time.Hour / time.Microsecond)
	intervalSigFig = 3
)

type ChannelStats struct {
	Channel domain.Channel
	Mean    float64
	P50     float64
	P95     float64
	P99     float64
	Max     float64
}

type IntervalStats struct {
	P50  time.Duration
	P99  time.Duration
	Max  time.Duration
	Mean time.Duration
}

type Report struct {
	Samples  int
	Start    time.Time
	End      time.Time
	Channels []ChannelStats
	Interval IntervalStats
}

// Build computes the report. An empty series yields a zero Report.
func Build(ts domain.TimeSeries) (Report, error) {
	r := Report{Samples: ts.Len()}
	if r.Samples == 0 {
		return r, nil
	}
	r.Start = ts[0].Timestamp
	r.End = ts[len(ts)-1].Timestamp

	for _, ch := range domain.Channels {
		st, err := channelStats(ch, ts.Column(ch))
		if err != nil {
			return Report{}, err
		}
		r.Channels = append(r.Channels, st)
	}

	h := hdrhistogram.New(intervalMinUs, intervalMaxUs, intervalSigFig)
	for _, secs := range ts.Intervals() {
		us := int64(secs * 1e6)
		if us < intervalMinUs {
			us = intervalMinUs
		}
		if us > intervalMaxUs {
			us = intervalMaxUs
		}
		if err := h.RecordValue(us); err != nil {
			return Report{}, fmt.Errorf("record interval: %w", err)
		}
	}
	r.Interval = IntervalStats{
		P50:  time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P99:  time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
		Max:  time.Duration(h.Max()) * time.Microsecond,
		Mean: time.Duration(h.Mean()) * time.Microsecond,
	}
	return r, nil
}

func channelStats(ch domain.Channel, values []float64) (ChannelStats, error) {
	m, err := mapping.NewLogarithmicMapping(RelativeAccuracy)
	if err != nil {
		return ChannelStats{}, err
	}
	// Counter resets produce negative rates, hence the negative store.
	sk := ddsketch.NewDDSketch(m, store.NewDenseStore(), store.NewDenseStore())

	var sum float64
	for _, v := range values {
		if err := sk.Add(v); err != nil {
			return ChannelStats{}, fmt.Errorf("%s: %w", ch.Key(), err)
		}
		sum += v
	}

	st := ChannelStats{Channel: ch, Mean: sum / float64(len(values))}
	qs, err := sk.GetValuesAtQuantiles([]float64{0.5, 0.95, 0.99})
	if err != nil {
		return ChannelStats{}, fmt.Errorf("%s quantiles: %w", ch.Key(), err)
	}
	st.P50, st.P95, st.P99 = qs[0], qs[1], qs[2]
	if st.Max, err = sk.GetMaxValue(); err != nil {
		return ChannelStats{}, fmt.Errorf("%s max: %w", ch.Key(), err)
	}
	return st, nil
}

// WriteTo prints the report as an aligned table.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if r.Samples == 0 {
		fmt.Fprintln(cw, "No samples collected.")
		return cw.n, cw.err
	}

	fmt.Fprintf(cw, "Samples: %d (%s to %s)\n", r.Samples,
		r.Start.Format("2006-01-02 15:04:05"), r.End.Format("2006-01-02 15:04:05"))

	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Channel\tMean\tp50\tp95\tp99\tMax")
	for _, c := range r.Channels {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Channel.Label(),
			units.HumanBytes(c.Mean), units.HumanBytes(c.P50), units.HumanBytes(c.P95),
			units.HumanBytes(c.P99), units.HumanBytes(c.Max))
	}
	fmt.Fprintf(tw, "Interval\t%s\t%s\t\t%s\t%s\n", r.Interval.Mean, r.Interval.P50, r.Interval.P99, r.Interval.Max)
	tw.Flush()
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
