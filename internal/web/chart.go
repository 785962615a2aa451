package web

import (
	"strconv"
	"strings"

	"billing-intelligence/internal/common/format"
	"billing-intelligence/internal/models"

	"github.com/shopspring/decimal"
)

const (
	chartWidth   = 720.0
	chartHeight  = 240.0
	chartPadding = 32.0
)

// ChartPoint is one month on the area chart, in SVG user units.
type ChartPoint struct {
	X     float64
	Y     float64
	Label string
	Value string
}

// AreaChart is a filled line chart of monthly cost, laid out server-side.
type AreaChart struct {
	Width    float64
	Height   float64
	Baseline float64
	Points   []ChartPoint
	Line     string
	Area     string
	MaxLabel string
}

// NewAreaChart lays out records (already sorted by month) on a fixed
// canvas. It returns nil for an empty series.
func NewAreaChart(records []models.BillingRecord) *AreaChart {
	if len(records) == 0 {
		return nil
	}

	lo, hi := decimal.Zero, decimal.Zero
	for _, r := range records {
		lo = decimal.Min(lo, r.TotalCost)
		hi = decimal.Max(hi, r.TotalCost)
	}
	span, _ := hi.Sub(lo).Float64()
	if span <= 0 {
		span = 1
	}
	low, _ := lo.Float64()

	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding
	yOf := func(v float64) float64 {
		return chartPadding + plotH - (v-low)/span*plotH
	}

	c := &AreaChart{
		Width:    chartWidth,
		Height:   chartHeight,
		Baseline: yOf(0),
		Points:   make([]ChartPoint, len(records)),
		MaxLabel: format.Currency(hi),
	}

	for i, r := range records {
		x := chartPadding + plotW/2
		if len(records) > 1 {
			x = chartPadding + float64(i)*plotW/float64(len(records)-1)
		}
		v, _ := r.TotalCost.Float64()
		c.Points[i] = ChartPoint{
			X:     x,
			Y:     yOf(v),
			Label: r.BillingMonth,
			Value: format.Currency(r.TotalCost),
		}
	}

	line := make([]string, len(c.Points))
	for i, p := range c.Points {
		line[i] = coord(p.X, p.Y)
	}
	c.Line = strings.Join(line, " ")

	first, last := c.Points[0], c.Points[len(c.Points)-1]
	c.Area = coord(first.X, c.Baseline) + " " + c.Line + " " + coord(last.X, c.Baseline)
	return c
}

func coord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
}
