// Package report renders the dataset-wide aggregates as a standalone HTML
// page of ECharts charts.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/rideslots/core/aggregate"
	"github.com/kilianp07/rideslots/core/analytics"
)

// Source is the query surface the report reads.
type Source interface {
	OccupancyTimeline() []aggregate.OccupancyCount
	Utilization() []aggregate.SlotUsage
	DwellHistogram(bins int) []aggregate.HistogramBin
	ServiceMix() map[string]map[string]int
}

// Options tune the page.
type Options struct {
	Title string
	// Bins is the dwell histogram bucket count.
	Bins int
	// TopSlots caps the utilization chart; 0 keeps every slot.
	TopSlots int
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = "Ride-Hailing Lot Report"
	}
	if o.Bins <= 0 {
		o.Bins = analytics.DefaultHistogramBins
	}
}

// Render writes the HTML page to w.
func Render(w io.Writer, src Source, o Options) error {
	o.setDefaults()
	page := components.NewPage()
	page.PageTitle = o.Title
	page.AddCharts(
		occupancyChart(src.OccupancyTimeline()),
		utilizationChart(src.Utilization(), o.TopSlots),
		dwellChart(src.DwellHistogram(o.Bins)),
		serviceChart(src.ServiceMix()),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func occupancyChart(timeline []aggregate.OccupancyCount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Occupancy timeline"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Timestamp"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rows"}),
	)
	x := make([]string, 0, len(timeline))
	y := make([]opts.LineData, 0, len(timeline))
	for _, c := range timeline {
		x = append(x, c.Timestamp)
		y = append(y, opts.LineData{Value: c.OccupancyCount})
	}
	line.SetXAxis(x).AddSeries("occupancy", y)
	return line
}

func utilizationChart(usage []aggregate.SlotUsage, top int) *charts.Bar {
	if top > 0 && len(usage) > top {
		usage = usage[:top]
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Slot utilization"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Slot"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Occupied timestamps"}),
	)
	x := make([]string, 0, len(usage))
	y := make([]opts.BarData, 0, len(usage))
	for _, u := range usage {
		x = append(x, u.SlotID.String())
		y = append(y, opts.BarData{Value: u.UsageCount})
	}
	bar.SetXAxis(x).AddSeries("usage", y)
	return bar
}

func dwellChart(bins []aggregate.HistogramBin) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Dwell time distribution"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Minutes"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Vehicles"}),
	)
	x := make([]string, 0, len(bins))
	y := make([]opts.BarData, 0, len(bins))
	for _, b := range bins {
		x = append(x, binLabel(b))
		y = append(y, opts.BarData{Value: b.Count})
	}
	bar.SetXAxis(x).AddSeries("vehicles", y)
	return bar
}

func binLabel(b aggregate.HistogramBin) string {
	return fmt.Sprintf("%g-%g", b.BinStart, b.BinEnd)
}

func serviceChart(mix map[string]map[string]int) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Service mix"}))
	pie.AddSeries("services", serviceTotals(mix))
	return pie
}

// serviceTotals sums the per-timestamp counts, ordered by service name.
func serviceTotals(mix map[string]map[string]int) []opts.PieData {
	totals := map[string]int{}
	for _, counts := range mix {
		for svc, n := range counts {
			totals[svc] += n
		}
	}
	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]opts.PieData, 0, len(names))
	for _, n := range names {
		out = append(out, opts.PieData{Name: n, Value: totals[n]})
	}
	return out
}
