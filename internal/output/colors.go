package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles used by the tree renderer and status output.
var (
	StyleCurrent  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	StyleTrunk    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	StyleSynced   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	StyleBehind   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	StyleDiverged = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	StyleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// InitColors disables styling when stdout is not a terminal or NO_COLOR is
// set.
func InitColors() {
	if os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
