// Package chart renders bar charts as in-memory SVG documents.
//
// Render never panics or aborts the caller's run: a malformed spec comes
// back as mo.Err, so one bad chart leaves the remaining charts untouched.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/mo"

	"calgroup/internal/model"
)

// DefaultColor is the bar fill used when the spec leaves Color empty.
const DefaultColor = "#db3236"

// Minimum output size that leaves room for axes and labels.
const (
	minWidth  = 160
	minHeight = 120
)

// RenderError reports a chart spec that could not be rendered. It is
// always carried inside an mo.Err result, never returned bare.
type RenderError struct {
	Title  string
	Reason string
}

func (e *RenderError) Error() string {
	if e.Title == "" {
		return "render chart: " + e.Reason
	}
	return fmt.Sprintf("render chart %q: %s", e.Title, e.Reason)
}

// Render validates the spec and renders it as an SVG bar chart.
func Render(spec model.ChartSpec) mo.Result[model.Chart] {
	if err := validate(spec); err != nil {
		return mo.Err[model.Chart](err)
	}
	if spec.Color == "" {
		spec.Color = DefaultColor
	}

	return mo.Ok(model.Chart{Spec: spec, SVG: renderSVG(spec)})
}

// RenderAll renders each spec independently; failures occupy their slot as
// mo.Err and never stop the remaining charts.
func RenderAll(specs []model.ChartSpec) []mo.Result[model.Chart] {
	out := make([]mo.Result[model.Chart], 0, len(specs))
	for _, spec := range specs {
		out = append(out, Render(spec))
	}
	return out
}

func validate(spec model.ChartSpec) error {
	fail := func(reason string) error {
		return &RenderError{Title: spec.Title, Reason: reason}
	}

	if len(spec.X) == 0 {
		return fail("no x-values")
	}
	if len(spec.Y) == 0 {
		return fail("no y-values")
	}
	if len(spec.X) != len(spec.Y) {
		return fail(fmt.Sprintf("%d x-values but %d y-values", len(spec.X), len(spec.Y)))
	}
	if spec.Width < minWidth || spec.Height < minHeight {
		return fail(fmt.Sprintf("size %dx%d below minimum %dx%d", spec.Width, spec.Height, minWidth, minHeight))
	}
	for i, y := range spec.Y {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return fail(fmt.Sprintf("y-value %d is not finite", i))
		}
		if y < 0 {
			return fail(fmt.Sprintf("y-value %d is negative", i))
		}
	}
	return nil
}

// Fixed chart margins; the plot area is what remains of the spec's size.
const (
	marginLeft   = 60
	marginRight  = 20
	marginTop    = 40
	marginBottom = 50
)

func renderSVG(spec model.ChartSpec) []byte {
	plotW := float64(spec.Width - marginLeft - marginRight)
	plotH := float64(spec.Height - marginTop - marginBottom)
	baseY := float64(marginTop) + plotH

	maxY := 0.0
	for _, y := range spec.Y {
		if y > maxY {
			maxY = y
		}
	}
	if maxY == 0 {
		// All-zero data still renders: flat bars over a unit scale.
		maxY = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		spec.Width, spec.Height, spec.Width, spec.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", spec.Width, spec.Height)

	// Title and axis labels.
	fmt.Fprintf(&b, `<text x="%d" y="24" text-anchor="middle" font-size="16">%s</text>`+"\n",
		spec.Width/2, escape(spec.Title))
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="12">%s</text>`+"\n",
		spec.Width/2, spec.Height-8, escape(spec.XLabel))
	fmt.Fprintf(&b, `<text x="14" y="%.1f" text-anchor="middle" font-size="12" transform="rotate(-90 14 %.1f)">%s</text>`+"\n",
		float64(marginTop)+plotH/2, float64(marginTop)+plotH/2, escape(spec.YLabel))

	// Axes.
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%.1f" stroke="black"/>`+"\n",
		marginLeft, marginTop, marginLeft, baseY)
	fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="black"/>`+"\n",
		marginLeft, baseY, spec.Width-marginRight, baseY)

	// Y scale: zero and maximum.
	fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" font-size="11">0</text>`+"\n",
		marginLeft-6, baseY+4)
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="end" font-size="11">%s</text>`+"\n",
		marginLeft-6, marginTop+4, formatValue(maxY))

	// Bars and x labels.
	slot := plotW / float64(len(spec.Y))
	barW := slot * 0.7
	for i, y := range spec.Y {
		h := y / maxY * plotH
		x := float64(marginLeft) + float64(i)*slot + (slot-barW)/2
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			x, baseY-h, barW, h, escape(spec.Color))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11">%s</text>`+"\n",
			x+barW/2, baseY+16, escape(spec.X[i]))
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return escaper.Replace(s) }
