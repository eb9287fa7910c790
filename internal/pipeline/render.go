package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

const (
	chartWidth  = 1400
	chartHeight = 700

	usersColor = "2980b9"
	usageColor = "c0392b"
)

// ErrEmptySeries is returned when asked to render a series with no points.
var ErrEmptySeries = fmt.Errorf("cannot render an empty series")

// ChartTitle returns "{name} ({id}) | dd/mm/yyyy - dd/mm/yyyy".
func ChartTitle(loc models.Location, dr models.DateRange) string {
	return loc.String() + " | " + dr.String()
}

// ArtifactFilename replaces every non letter/digit rune in the display name
// with "_" and appends "_{id}.png". Distinct names may collapse to the same
// file; the bundle keeps the last one written.
func ArtifactFilename(loc models.Location) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, loc.DisplayName)
	return clean + "_" + loc.ID + ".png"
}

// Renderer draws a dual-axis usage chart as PNG.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer with the default export size.
func NewRenderer() *Renderer {
	return &Renderer{Width: chartWidth, Height: chartHeight}
}

// Render plots connected users on the left axis and GB on the right.
func (r *Renderer) Render(series models.UsageSeries, loc models.Location, dr models.DateRange) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	dates := make([]time.Time, len(series))
	for i, p := range series {
		dates[i] = p.Date
	}
	users := series.Users()
	gigabytes := series.Gigabytes()

	blue := drawing.ColorFromHex(usersColor)
	red := drawing.ColorFromHex(usageColor)

	graph := chart.Chart{
		Title:  ChartTitle(loc, dr),
		Width:  r.Width,
		Height: r.Height,
		TitleStyle: chart.Style{
			FontSize: 18,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 80, Left: 30, Right: 30, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02 Jan"),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(dates[0].Add(-12 * time.Hour)),
				Max: chart.TimeToFloat64(dates[len(dates)-1].Add(12 * time.Hour)),
			},
		},
		YAxis: chart.YAxis{
			Name:      "Connected User",
			NameStyle: chart.Style{FontColor: blue},
			Style:     chart.Style{FontColor: blue},
			Range:     paddedRange(users),
		},
		YAxisSecondary: chart.YAxis{
			Name:      "Total Usage (GB)",
			NameStyle: chart.Style{FontColor: red},
			Style:     chart.Style{FontColor: red},
			Range:     paddedRange(gigabytes),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Connected User",
				XValues: dates,
				YValues: users,
				Style: chart.Style{
					StrokeColor: blue,
					StrokeWidth: 5,
					DotColor:    blue,
					DotWidth:    4,
				},
			},
			chart.TimeSeries{
				Name:    "Total Usage (GB)",
				XValues: dates,
				YValues: gigabytes,
				YAxis:   chart.YAxisSecondary,
				Style: chart.Style{
					StrokeColor: red,
					StrokeWidth: 5,
					DotColor:    red,
					DotWidth:    4,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart for %s: %w", loc.ID, err)
	}
	return buf.Bytes(), nil
}

// paddedRange spans 0 to 110% of the peak, never collapsing to zero width.
func paddedRange(values []float64) *chart.ContinuousRange {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: peak * 1.1}
}
