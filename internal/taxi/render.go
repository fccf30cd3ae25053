package taxi

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette styles the parts of a rendered frame.
type Palette struct {
	Wall        lipgloss.Style
	Landmark    lipgloss.Style
	Passenger   lipgloss.Style
	Destination lipgloss.Style
	EmptyTaxi   lipgloss.Style
	FullTaxi    lipgloss.Style
	Caption     lipgloss.Style
}

// DefaultPalette is used by Render.
var DefaultPalette = Palette{
	Wall:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Landmark:    lipgloss.NewStyle().Bold(true),
	Passenger:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
	Destination: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
	EmptyTaxi:   lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")),
	FullTaxi:    lipgloss.NewStyle().Background(lipgloss.Color("42")).Foreground(lipgloss.Color("0")),
	Caption:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
}

// Render draws s with DefaultPalette. last, if non-empty, is shown as the
// caption.
func Render(s State, last string) string {
	return DefaultPalette.Render(s, last)
}

// Render draws s.
func (p Palette) Render(s State, last string) string {
	var b strings.Builder
	for row, line := range Map {
		for col := 0; col < len(line); col++ {
			b.WriteString(p.cell(s, row, col, line[col]))
		}
		b.WriteByte('\n')
	}
	if last != "" {
		b.WriteString(p.Caption.Render(fmt.Sprintf("(%s)", last)))
		b.WriteByte('\n')
	}
	return b.String()
}

func (p Palette) cell(s State, row, col int, ch byte) string {
	text := string(ch)
	if row == 0 || row == len(Map)-1 || ch == '|' || ch == ':' || ch == '-' || ch == '+' {
		return p.Wall.Render(text)
	}
	if col%2 == 0 {
		return text
	}
	pos := Pos{Row: row - 1, Col: (col - 1) / 2}
	style, styled := lipgloss.NewStyle(), false
	if i := landmarkAt(pos); i >= 0 {
		style, styled = p.Landmark, true
		switch i {
		case s.Passenger:
			style = p.Passenger
		case s.Destination:
			style = p.Destination
		}
	}
	if pos == s.Taxi {
		if ch == ' ' {
			text = "_"
		}
		if s.Passenger == InTaxiIndex {
			style = style.Inherit(p.FullTaxi)
		} else {
			style = style.Inherit(p.EmptyTaxi)
		}
		styled = true
	}
	if !styled {
		return text
	}
	return style.Render(text)
}
