// Package chart renders the grouped bar chart of total sales by category and
// location as a PNG.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/kpi"
)

const (
	DefaultTitle  = "Total Sales by Category and Location"
	yTicks        = 5
	marginLeft    = 90.0
	marginRight   = 30.0
	marginTop     = 60.0
	marginBottom  = 120.0
	groupPadding  = 0.2
	legendSwatch  = 14.0
	legendSpacing = 20.0
)

var (
	background = color.White
	axisColor  = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	gridColor  = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

	// palette is matplotlib's default category cycle.
	palette = []color.NRGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
		{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
		{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
		{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
		{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
	}
)

// Renderer draws bar charts at a fixed size.
type Renderer struct {
	width, height int
	title         string
	yLabel        string

	titleFace font.Face
	labelFace font.Face
	tickFace  font.Face
}

// NewRenderer prepares a renderer. currency is used in the y axis label.
func NewRenderer(width, height int, currency string) (*Renderer, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := func(size float64) font.Face {
		return truetype.NewFace(parsed, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}

	return &Renderer{
		width:     width,
		height:    height,
		title:     DefaultTitle,
		yLabel:    fmt.Sprintf("Sales (%s)", currency),
		titleFace: face(20),
		labelFace: face(14),
		tickFace:  face(12),
	}, nil
}

// Render draws the chart and encodes it as PNG to w.
func (r *Renderer) Render(w io.Writer, totals *kpi.CategoryLocationTotals) error {
	dc := r.draw(totals)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func (r *Renderer) draw(totals *kpi.CategoryLocationTotals) *gg.Context {
	if totals == nil {
		totals = &kpi.CategoryLocationTotals{}
	}
	w, h := float64(r.width), float64(r.height)
	dc := gg.NewContext(r.width, r.height)

	dc.SetColor(background)
	dc.Clear()

	plotX0, plotX1 := marginLeft, w-marginRight
	plotY0, plotY1 := marginTop, h-marginBottom
	plotW, plotH := plotX1-plotX0, plotY1-plotY0

	// Title and y label.
	dc.SetColor(axisColor)
	dc.SetFontFace(r.titleFace)
	dc.DrawStringAnchored(r.title, w/2, marginTop/2, 0.5, 0.5)

	dc.SetFontFace(r.labelFace)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, plotY0+plotH/2)
	dc.DrawStringAnchored(r.yLabel, 20, plotY0+plotH/2, 0.5, 0.5)
	dc.Pop()

	// Y grid and ticks.
	maxValue := totals.Max().InexactFloat64()
	step := niceStep(maxValue, yTicks)
	top := step * math.Ceil(maxValue/step)
	if top <= 0 {
		top = step * yTicks
	}

	dc.SetFontFace(r.tickFace)
	dc.SetLineWidth(1)
	for i := 0; float64(i)*step <= top+step/2; i++ {
		v := float64(i) * step
		y := plotY1 - v/top*plotH
		dc.SetColor(gridColor)
		dc.DrawLine(plotX0, y, plotX1, y)
		dc.Stroke()
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(formatTick(v), plotX0-8, y, 1, 0.5)
	}

	// Bars.
	categories := totals.Categories
	locations := totals.Locations
	if len(categories) > 0 && len(locations) > 0 {
		groupW := plotW / float64(len(categories))
		barW := groupW * (1 - groupPadding) / float64(len(locations))

		for ci, category := range categories {
			gx := plotX0 + float64(ci)*groupW + groupW*groupPadding/2
			for li, location := range locations {
				v := totals.Get(category, location).InexactFloat64()
				if v <= 0 {
					continue
				}
				barH := v / top * plotH
				dc.SetColor(palette[li%len(palette)])
				dc.DrawRectangle(gx+float64(li)*barW, plotY1-barH, barW, barH)
				dc.Fill()
			}

			// Category labels are rotated like the x tick labels of a pandas bar plot.
			cx := plotX0 + (float64(ci)+0.5)*groupW
			dc.SetColor(axisColor)
			dc.SetFontFace(r.labelFace)
			dc.Push()
			dc.RotateAbout(gg.Radians(-90), cx, plotY1+8)
			dc.DrawStringAnchored(category, cx, plotY1+8, 1, 0.5)
			dc.Pop()
		}
	} else {
		dc.SetColor(axisColor)
		dc.SetFontFace(r.labelFace)
		dc.DrawStringAnchored("No data", plotX0+plotW/2, plotY0+plotH/2, 0.5, 0.5)
	}

	// Axes.
	dc.SetColor(axisColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(plotX0, plotY0, plotX0, plotY1)
	dc.DrawLine(plotX0, plotY1, plotX1, plotY1)
	dc.Stroke()

	r.drawLegend(dc, locations, plotX1, plotY0)

	return dc
}

func (r *Renderer) drawLegend(dc *gg.Context, locations []string, right, top float64) {
	if len(locations) == 0 {
		return
	}
	dc.SetFontFace(r.tickFace)

	width := 0.0
	for _, location := range locations {
		if tw, _ := dc.MeasureString(location); tw > width {
			width = tw
		}
	}
	width += legendSwatch + 24
	height := float64(len(locations))*legendSpacing + 8
	x0, y0 := right-width-8, top+8

	dc.SetColor(background)
	dc.DrawRectangle(x0, y0, width, height)
	dc.FillPreserve()
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.Stroke()

	for i, location := range locations {
		y := y0 + 4 + float64(i)*legendSpacing
		dc.SetColor(palette[i%len(palette)])
		dc.DrawRectangle(x0+8, y+3, legendSwatch, legendSwatch)
		dc.Fill()
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(location, x0+16+legendSwatch, y+3+legendSwatch/2, 0, 0.5)
	}
}

// niceStep returns a 1, 2, 2.5 or 5 times power-of-ten step so that about
// ticks steps cover limit.
func niceStep(limit float64, ticks int) float64 {
	if limit <= 0 || ticks <= 0 {
		return 1
	}
	raw := limit / float64(ticks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func formatTick(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
