// Package report renders forecast indicators as PNG images.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// ErrNoPoints is returned when there is nothing to plot.
var ErrNoPoints = errors.New("report: no data points")

// ChartConfig holds rendering parameters. Colors are hex strings.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	LineColor    string
	FontSize     float64
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		LineColor:    "#2196f3",
		FontSize:     11,
	}
}

func (c ChartConfig) orDefault() ChartConfig {
	if c.Width <= 0 || c.Height <= 0 {
		return DefaultChartConfig()
	}
	return c
}

// plotArea returns the usable drawing area.
func (c ChartConfig) plotArea() (x, y, w, h float64) {
	return float64(c.MarginLeft), float64(c.MarginTop),
		float64(c.Width - c.MarginLeft - c.MarginRight),
		float64(c.Height - c.MarginTop - c.MarginBottom)
}

// LineChartPNG plots one indicator over time. NaN values are skipped.
func LineChartPNG(title string, points []models.SeriesPoint, cfg ChartConfig) ([]byte, error) {
	cfg = cfg.orDefault()

	pts := make([]models.SeriesPoint, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return nil, ErrNoPoints
	}

	minVal, maxVal := pts[0].Value, pts[0].Value
	first, last := pts[0].Date, pts[0].Date
	for _, p := range pts {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
		if p.Date.Before(first) {
			first = p.Date
		}
		if p.Date.After(last) {
			last = p.Date
		}
	}
	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetHexColor(cfg.BgColor)
	dc.Clear()

	if err := drawTitle(dc, title, cfg); err != nil {
		return nil, err
	}
	face, err := loadFont(gomono.TTF, cfg.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	px, py, pw, ph := cfg.plotArea()
	xOf := func(t time.Time) float64 {
		span := last.Sub(first)
		if span <= 0 {
			return px + pw/2
		}
		return px + pw*float64(t.Sub(first))/float64(span)
	}
	yOf := func(v float64) float64 {
		return py + ph - ph*(v-minVal)/vRange
	}

	// Y grid and labels
	const gridLines = 5
	dc.SetLineWidth(1)
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/gridLines
		y := yOf(val)
		dc.SetHexColor(cfg.GridColor)
		dc.SetDash(3, 3)
		dc.DrawLine(px, y, px+pw, y)
		dc.Stroke()
		dc.SetDash()
		dc.SetHexColor(cfg.TextColor)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", val), px-6, y, 1, 0.35)
	}

	// X labels
	ticks := 6
	if len(pts) < ticks {
		ticks = len(pts)
	}
	step := len(pts) / ticks
	if step < 1 {
		step = 1
	}
	dc.SetHexColor(cfg.TextColor)
	for i := 0; i < len(pts); i += step {
		dc.DrawStringAnchored(utils.FormatDate(pts[i].Date), xOf(pts[i].Date), py+ph+18, 0.5, 0.5)
	}

	// Axes
	dc.SetHexColor(cfg.TextColor)
	dc.DrawLine(px, py+ph, px+pw, py+ph)
	dc.DrawLine(px, py, px, py+ph)
	dc.Stroke()

	// Series
	dc.SetHexColor(cfg.LineColor)
	dc.SetLineWidth(2)
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(xOf(p.Date), yOf(p.Value))
			continue
		}
		dc.LineTo(xOf(p.Date), yOf(p.Value))
	}
	dc.Stroke()
	if len(pts) <= 60 {
		for _, p := range pts {
			dc.DrawCircle(xOf(p.Date), yOf(p.Value), 2.5)
		}
		dc.Fill()
	}

	return encode(dc)
}

// HeatmapPNG renders a square matrix of values in [-1, 1], such as a
// correlation matrix. NaN cells are drawn grey.
func HeatmapPNG(title string, labels []string, values [][]float64, cfg ChartConfig) ([]byte, error) {
	n := len(labels)
	if n == 0 || len(values) != n {
		return nil, ErrNoPoints
	}
	cfg = cfg.orDefault()
	if cfg.MarginLeft < 160 {
		cfg.MarginLeft = 160
	}

	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetHexColor(cfg.BgColor)
	dc.Clear()
	if err := drawTitle(dc, title, cfg); err != nil {
		return nil, err
	}
	face, err := loadFont(gomono.TTF, cfg.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	px, py, pw, ph := cfg.plotArea()
	cw, ch := pw/float64(n), ph/float64(n)
	for i := 0; i < n; i++ {
		dc.SetHexColor(cfg.TextColor)
		dc.DrawStringAnchored(truncate(labels[i], 20), px-6, py+ch*(float64(i)+0.5), 1, 0.35)
		dc.DrawStringAnchored(fmt.Sprintf("%d", i+1), px+cw*(float64(i)+0.5), py+ph+16, 0.5, 0.5)
		for j := 0; j < n; j++ {
			v := math.NaN()
			if j < len(values[i]) {
				v = values[i][j]
			}
			r, g, b := divergingColor(v)
			dc.SetRGB(r, g, b)
			dc.DrawRectangle(px+cw*float64(j), py+ch*float64(i), cw, ch)
			dc.Fill()
			if !math.IsNaN(v) && cw >= 36 && ch >= 14 {
				dc.SetHexColor(cfg.TextColor)
				dc.DrawStringAnchored(fmt.Sprintf("%.2f", v), px+cw*(float64(j)+0.5), py+ch*(float64(i)+0.5), 0.5, 0.35)
			}
		}
	}
	return encode(dc)
}

// divergingColor maps -1 to blue, 0 to white and +1 to red.
func divergingColor(v float64) (r, g, b float64) {
	if math.IsNaN(v) {
		return 0.8, 0.8, 0.8
	}
	v = math.Max(-1, math.Min(1, v))
	if v >= 0 {
		return 1, 1 - v*0.7, 1 - v*0.7
	}
	return 1 + v*0.7, 1 + v*0.7, 1
}

func drawTitle(dc *gg.Context, title string, cfg ChartConfig) error {
	if title == "" {
		return nil
	}
	face, err := loadFont(gobold.TTF, cfg.FontSize+3)
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)
	dc.SetHexColor(cfg.TextColor)
	dc.DrawStringAnchored(title, float64(cfg.Width)/2, float64(cfg.MarginTop)/2, 0.5, 0.5)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return face, nil
}
