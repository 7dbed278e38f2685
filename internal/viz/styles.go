package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/driftfield/internal/sim"
)

const panelWidth = 36

var canvasStyle = lipgloss.NewStyle().Padding(1, 2)

func (t Theme) panel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(panelWidth)
}

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
}

func (t Theme) label() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted).Width(12)
}

func (t Theme) value() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) hint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
}

func (t Theme) key() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)
}

func (t Theme) selected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) graph() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0)
}

// status renders the loop state, with a recording marker when frames are
// being captured.
func (t Theme) status(s sim.State, recording bool) string {
	var out string
	switch s {
	case sim.Running:
		out = lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render("● RUNNING")
	default:
		out = lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render("❚❚ PAUSED")
	}
	if recording {
		out += " " + lipgloss.NewStyle().Foreground(t.Error).Bold(true).Render("● REC")
	}
	return out
}

// GradientText colours each rune of text along a blend from one colour to
// another. Colours that are not hex fall back to white.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	start, err := colorful.Hex(string(from))
	if err != nil {
		start = colorful.Color{R: 1, G: 1, B: 1}
	}
	end, err := colorful.Hex(string(to))
	if err != nil {
		end = colorful.Color{R: 1, G: 1, B: 1}
	}

	var b strings.Builder
	for i, r := range runes {
		f := 0.0
		if len(runes) > 1 {
			f = float64(i) / float64(len(runes)-1)
		}
		c := start.BlendLuv(end, f).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}

// ProgressBar renders percent in [0, 1] as a bar of width cells.
func ProgressBar(percent float64, width int, t Theme) string {
	filled := clampInt(int(percent*float64(width)), 0, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case percent > 0.8:
		return lipgloss.NewStyle().Foreground(t.Error).Render(bar)
	case percent > 0.4:
		return lipgloss.NewStyle().Foreground(t.Warning).Render(bar)
	}
	return lipgloss.NewStyle().Foreground(t.Success).Render(bar)
}

// SparklineChart renders the last width values as a sparkline scaled to
// their own range.
func SparklineChart(values []float64, width int, t Theme) string {
	if len(values) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render(strings.Repeat("─", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := clampInt(int((v-lo)/rng*float64(len(chars)-1)), 0, len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return lipgloss.NewStyle().Foreground(t.Accent).Render(b.String())
}

func Separator(width int, t Theme) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(t.Muted).Render(left + " ◆ " + right)
}
