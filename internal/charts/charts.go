// Package charts renders report views as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"sales-dashboard/internal/models"
)

var ErrNoData = errors.New("no data to plot")

const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var titles = map[string]string{
	"revenue_by_year":     "Revenue by year",
	"revenue_by_month":    "Revenue by month",
	"revenue_by_country":  "Revenue by country",
	"revenue_by_gender":   "Revenue by gender",
	"volume_by_month":     "Order volume by month",
	"top_products":        "Top products by order volume",
	"seasonality":         "Monthly order volume (mean across years)",
	"country_seasonality": "Monthly order volume (mean across years)",
}

// Title returns the display title of a view.
func Title(view string) string {
	if t, ok := titles[view]; ok {
		return t
	}
	return view
}

// BarChart plots one bar per point, labelled with the point label.
func BarChart(s models.Series) (*plot.Plot, error) {
	if s.Empty() {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = Title(s.View)
	p.Title.TextStyle.Font.Size = vg.Points(14)

	bars, err := plotter.NewBarChart(plotter.Values(s.Values()), vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(s.Labels()...)
	return p, nil
}

// SeasonalityChart draws one line per country of monthly mean volume.
func SeasonalityChart(s models.Seasonality) (*plot.Plot, error) {
	if s.Empty() {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = Title(s.View)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Order quantity"

	for i, c := range s.Countries {
		points := make(plotter.XYs, len(c.Months))
		for j, m := range c.Months {
			points[j].X = float64(m.Month)
			points[j].Y = m.Mean
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", c.Country, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)

		p.Add(line)
		p.Legend.Add(c.Country, line)
	}

	p.Add(plotter.NewGrid())
	p.X.Min, p.X.Max = 1, 12
	return p, nil
}

// WritePNG encodes p as a PNG of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// RenderSeries writes s as a bar chart PNG at the default size.
func RenderSeries(w io.Writer, s models.Series) error {
	p, err := BarChart(s)
	if err != nil {
		return err
	}
	return WritePNG(w, p, DefaultWidth, DefaultHeight)
}

// RenderSeasonality writes s as a line chart PNG at the default size.
func RenderSeasonality(w io.Writer, s models.Seasonality) error {
	p, err := SeasonalityChart(s)
	if err != nil {
		return err
	}
	return WritePNG(w, p, DefaultWidth, DefaultHeight)
}
