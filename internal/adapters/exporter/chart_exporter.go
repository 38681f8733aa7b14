package exporter

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
	"github.com/ghalamif/CipherPulse/internal/units"
)

const (
	chartTitle  = "Real-Time System Monitoring"
	chartWidth  = 12 * vg.Inch
	chartHeight = 8 * vg.Inch
)

// ChartExporter renders every channel as a line over time into a PNG.
type ChartExporter struct {
	cfg FileConfig
}

func NewChartExporter(cfg FileConfig) *ChartExporter {
	return &ChartExporter{cfg: cfg}
}

func (e *ChartExporter) Name() string { return "png" }

func (e *ChartExporter) Export(ts domain.TimeSeries) (string, error) {
	if ts.Len() == 0 {
		return "", ErrEmptySeries
	}

	p, err := Chart(ts)
	if err != nil {
		return "", err
	}

	path := e.cfg.path("png")
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", path, err)
	}
	return path, nil
}

// Chart builds the plot without writing it.
func Chart(ts domain.TimeSeries) (*plot.Plot, error) {
	loc := ts[0].Timestamp.Location()

	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Data"
	p.X.Tick.Marker = plot.TimeTicks{
		Format: TimestampLayout,
		Time:   func(v float64) time.Time { return time.Unix(int64(v), 0).In(loc) },
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.Y.Tick.Marker = byteTicks{}
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	for i, ch := range domain.Channels {
		pts := make(plotter.XYs, ts.Len())
		for j, s := range ts {
			pts[j].X = float64(s.Timestamp.Unix())
			pts[j].Y = s.Value(ch)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", ch.Key(), err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(ch.Label(), line)
	}
	p.Legend.Top = true
	return p, nil
}

// byteTicks keeps the default tick placement and labels majors with binary
// units.
type byteTicks struct{}

func (byteTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = units.HumanBytes(ticks[i].Value)
		}
	}
	return ticks
}

var _ ports.Exporter = (*ChartExporter)(nil)
