package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/stats"
)

// ErrRender is returned when a chart cannot be drawn or encoded.
var ErrRender = errors.New("chart render failed")

const (
	DefaultWidth  = 640
	DefaultHeight = 480

	dataURIPrefix = "data:image/png;base64,"
)

// Renderer draws histograms as PNG bar charts.
type Renderer struct {
	width  int
	height int
}

// NewRenderer returns a Renderer producing images of the given size.
// Non-positive dimensions fall back to the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Encode renders hist and returns the PNG as standard base64 text.
func (r *Renderer) Encode(hist stats.Histogram) (string, error) {
	img, err := r.Render(hist)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(img), nil
}

// Render returns the PNG bytes of hist.
func (r *Renderer) Render(hist stats.Histogram) (img []byte, err error) {
	if len(hist.Bins) == 0 {
		return nil, fmt.Errorf("%w: histogram has no bins", ErrRender)
	}

	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()

	graph := r.barChart(hist)

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) barChart(hist stats.Histogram) gochart.BarChart {
	bars := make([]gochart.Value, len(hist.Bins))
	maxCount := 1
	for i, b := range hist.Bins {
		bars[i] = gochart.Value{Value: float64(b.Count), Label: fmt.Sprintf("%.0f", b.Lower)}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	slot := (r.width - 80) / len(bars)
	if slot < 2 {
		slot = 2
	}
	barWidth := slot * 3 / 4
	if barWidth < 1 {
		barWidth = 1
	}

	return gochart.BarChart{
		Title:      hist.Title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 36}},
		XAxis:      gochart.Style{FontSize: 7},
		YAxis: gochart.YAxis{
			Name:  hist.YLabel,
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars:     bars,
		Elements: []gochart.Renderable{axisCaption(hist.XLabel)},
	}
}

// axisCaption writes label centred under the plot area.
func axisCaption(label string) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		if label == "" {
			return
		}
		style := gochart.Style{FontSize: 10, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		style.GetTextOptions().WriteToRenderer(r)
		size := r.MeasureText(label)
		x := canvas.Left + (canvas.Width()-size.Width())/2
		y := canvas.Bottom + 30
		gochart.Draw.Text(r, label, x, y, style)
	}
}

// DataURI wraps encoded PNG text for inline display.
func DataURI(encoded string) string {
	if encoded == "" {
		return ""
	}
	return dataURIPrefix + encoded
}
