package render

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/temirov/fstree/internal/types"
)

// Palette styles the parts of a text tree. The zero value renders plain text.
type Palette struct {
	enabled   bool
	directory lipgloss.Style
	symlink   lipgloss.Style
	connector lipgloss.Style
	denied    lipgloss.Style
	marker    lipgloss.Style
}

// NewPalette resolves a color mode against writer. In auto mode colors are used only
// when writer is a terminal.
func NewPalette(writer io.Writer, colorMode string) Palette {
	renderer := lipgloss.NewRenderer(writer)
	switch colorMode {
	case types.ColorAlways:
		renderer.SetColorProfile(termenv.ANSI256)
	case types.ColorAuto:
		if !isTerminal(writer) {
			return Palette{}
		}
	default:
		return Palette{}
	}
	return Palette{
		enabled:   true,
		directory: renderer.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		symlink:   renderer.NewStyle().Foreground(lipgloss.Color("cyan")),
		connector: renderer.NewStyle().Foreground(lipgloss.Color("240")),
		denied:    renderer.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
		marker:    renderer.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
	}
}

// Enabled reports whether the palette emits escape sequences.
func (palette Palette) Enabled() bool {
	return palette.enabled
}

func (palette Palette) apply(style lipgloss.Style, text string) string {
	if !palette.enabled || text == "" {
		return text
	}
	return style.Render(text)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
