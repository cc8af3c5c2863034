package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// eighths indexes partial cells from empty (0) to full (8).
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled from min(0, lowest) to the
// highest value, so series with negative days still rise and fall.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := 0.0, values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// scale is a Y axis with round tick labels.
type scale struct {
	ceiling     float64
	step        float64
	intervals   int
	rowsPerTick int
}

func (s scale) rows() int { return s.intervals * s.rowsPerTick }

// newScale fits maxVal into at most height rows with about five ticks.
func newScale(maxVal float64, height int) scale {
	if maxVal <= 0 {
		maxVal = 1
	}
	step := chartTickStep(maxVal)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(maxVal/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(maxVal/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	return scale{
		ceiling:     ceiling,
		step:        step,
		intervals:   intervals,
		rowsPerTick: max(1, height/intervals),
	}
}

// tickLabel returns the label for row (1-based from the axis), or "".
func (s scale) tickLabel(row int) string {
	if row%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPerTick))
}

// bars sizes n bars into chartW columns, downsampling when they do not fit.
func bars(values []float64, labels []string, chartW int) ([]float64, []string, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(chartW, 6)
	}
	barW := (chartW - (n - 1)) / n
	if barW < 2 {
		keep := max(2, (chartW+1)/3)
		sampled := make([]float64, keep)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, keep)
		}
		for i := range sampled {
			src := i * (n - 1) / (keep - 1)
			sampled[i] = values[src]
			if sampledLabels != nil {
				sampledLabels[i] = labels[src]
			}
		}
		return sampled, sampledLabels, 2
	}
	return values, labels, min(barW, 6)
}

// BarChart renders non-negative values as vertical bars with a Y axis.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	sc := newScale(peak, height)
	yLabelW := max(4, len(formatChartLabel(sc.ceiling))+1)
	values, labels, barW := bars(values, labels, max(5, width-yLabelW-1))
	n := len(values)
	chartH := sc.rows()

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := sc.ceiling * float64(row) / float64(chartH)
		bottom := sc.ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, sc.tickLabel(row))))
		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			b.WriteString(barStyle.Render(strings.Repeat(string(cell(v, bottom, top)), barW)))
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + (n - 1)
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))
	if x := xAxisLabels(labels, n, barW, axisLen); x != "" {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(x))
	}
	return b.String()
}

// SignedBarChart renders values that may be negative: positive bars rise
// above the zero axis in pos, negative bars hang below it in neg.
func SignedBarChart(values []float64, labels []string, pos, neg lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 4 {
		return Sparkline(values, pos)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	half := max(2, (height-1)/2)
	sc := newScale(peak, half)
	yLabelW := max(5, len(formatChartLabel(sc.ceiling))+2)
	values, labels, barW := bars(values, labels, max(5, width-yLabelW-1))
	n := len(values)
	rows := sc.rows()

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(pos).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(neg).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	writeRow := func(label string, render func(v float64) string) {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))
		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			b.WriteString(render(v))
		}
		b.WriteString("\n")
	}

	for row := rows; row >= 1; row-- {
		top := sc.ceiling * float64(row) / float64(rows)
		bottom := sc.ceiling * float64(row-1) / float64(rows)
		writeRow(sc.tickLabel(row), func(v float64) string {
			return posStyle.Render(strings.Repeat(string(cell(v, bottom, top)), barW))
		})
	}

	axisLen := n*barW + (n - 1)
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s┼%s", yLabelW, "0", strings.Repeat("─", axisLen))))
	b.WriteString("\n")

	for row := 1; row <= rows; row++ {
		top := sc.ceiling * float64(row) / float64(rows)
		bottom := sc.ceiling * float64(row-1) / float64(rows)
		label := sc.tickLabel(row)
		if label != "" {
			label = "-" + label
		}
		writeRow(label, func(v float64) string {
			ch := ' '
			// Hanging bars have no partial glyphs; round to the nearest cell.
			if -v > (top+bottom)/2 {
				ch = '█'
			}
			return negStyle.Render(strings.Repeat(string(ch), barW))
		})
	}

	out := strings.TrimSuffix(b.String(), "\n")
	if x := xAxisLabels(labels, n, barW, axisLen); x != "" {
		out += "\n" + blank.Render(strings.Repeat(" ", yLabelW+1)) + axisStyle.Render(x)
	}
	return out
}

// cell picks the glyph for value v in the row spanning (bottom, top].
func cell(v, bottom, top float64) rune {
	switch {
	case v >= top:
		return '█'
	case v > bottom:
		idx := int((v - bottom) / (top - bottom) * 8)
		return eighths[max(1, min(idx, 8))]
	default:
		return ' '
	}
}

// xAxisLabels lays labels under their bars, skipping any that would overlap.
// The last label is always placed when there is room.
func xAxisLabels(labels []string, n, barW, axisLen int) string {
	if len(labels) != n || n == 0 {
		return ""
	}
	buf := []byte(strings.Repeat(" ", axisLen))
	step := max(1, (n*8)/(axisLen+1))

	lastEnd := -1
	place := func(i int, force bool) {
		lbl := labels[i]
		pos := i * (barW + 1)
		if force && pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		end := min(pos+len(lbl), axisLen)
		if pos <= lastEnd || pos < 0 || (end-pos < 3 && end-pos < len(lbl)) {
			return
		}
		copy(buf[pos:end], lbl[:end-pos])
		lastEnd = end
	}
	for i := 0; i < n; i += step {
		place(i, false)
	}
	if n > 1 && (n-1)%step != 0 {
		place(n-1, true)
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}} {
		if v >= u.div {
			if v == math.Trunc(v/u.div)*u.div {
				return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
		}
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
