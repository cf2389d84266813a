package tui

import (
	"fmt"
	"strings"

	"github.com/tphakala/subtractesizer/internal/param"
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	var panel strings.Builder
	for i, p := range m.params {
		if i > 0 {
			panel.WriteString("\n\n")
		}
		panel.WriteString(renderDial(p, m.values[i]))
	}
	if m.tap != nil {
		panel.WriteString("\n\n")
		panel.WriteString(renderMeter(m.levelDB, m.peakDB))
	}
	b.WriteString(boxStyle.Render(panel.String()))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("↑/↓ volume  pgup/pgdn coarse  ←/→ Q-factor  [/] coarse  q quit"))
	b.WriteString("\n")

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := m.title
	if title == "" {
		title = "Subtractesizer"
	}
	return titleStyle.Render(title) + "\n" +
		subtitleStyle.Render("noise resonator, band-pass")
}

// renderDial renders one parameter's label and position.
func renderDial(p param.Parameter, v float64) string {
	frac := 0.0
	if span := p.Span(); span > 0 {
		frac = (v - p.Min) / span
	}
	return labelStyle.Render(param.FormatDisplay(p, v)) + "\n" +
		barStyle.Render(renderBar(frac, dialWidth))
}

// renderMeter renders the output level in dBFS with a peak marker.
func renderMeter(levelDB, peakDB float64) string {
	frac := (levelDB - meterFloorDB) / -meterFloorDB
	peak := int((peakDB - meterFloorDB) / -meterFloorDB * meterWidth)

	bar := []rune(renderBar(frac, meterWidth))
	if peak > 0 && peak <= len(bar) {
		bar[peak-1] = '│'
	}

	style := meterStyle
	if levelDB >= 0 {
		style = clipStyle
	}
	return fmt.Sprintf("Level: %s %6.1f dBFS", style.Render(string(bar)), levelDB)
}

// renderBar renders a fixed-width bar filled to frac.
func renderBar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	filled := int(frac * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
