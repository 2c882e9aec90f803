package tui

import "github.com/charmbracelet/lipgloss"

// Styles is one color palette for the editor screens
type Styles struct {
	Title      lipgloss.Style
	Subtle     lipgloss.Style
	Selected   lipgloss.Style
	Normal     lipgloss.Style
	Key        lipgloss.Style
	String     lipgloss.Style
	Number     lipgloss.Style
	Bool       lipgloss.Style
	Null       lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Help       lipgloss.Style
	Box        lipgloss.Style
	Modal      lipgloss.Style
	InputLabel lipgloss.Style
}

// NewStyles returns the palette for theme ("dark" or "light")
func NewStyles(theme string) Styles {
	if theme == "light" {
		return buildStyles(palette{
			accent: "127", fg: "235", dim: "245", selFg: "231", selBg: "63",
			key: "25", str: "28", num: "130", boolean: "90", errc: "160", ok: "28", border: "250",
		})
	}
	return buildStyles(palette{
		accent: "205", fg: "252", dim: "241", selFg: "229", selBg: "57",
		key: "117", str: "42", num: "214", boolean: "177", errc: "196", ok: "42", border: "62",
	})
}

type palette struct {
	accent, fg, dim, selFg, selBg            string
	key, str, num, boolean, errc, ok, border string
}

func buildStyles(p palette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.accent)).
			Padding(0, 1),
		Subtle: lipgloss.NewStyle().Foreground(lipgloss.Color(p.dim)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.selFg)).
			Background(lipgloss.Color(p.selBg)).
			Bold(true),
		Normal:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.fg)),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.key)),
		String:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.str)),
		Number:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.num)),
		Bool:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.boolean)),
		Null:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.dim)).Italic(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.errc)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.ok)),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.dim)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(1, 2),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(p.accent)).
			Padding(1, 2).
			Align(lipgloss.Center),
		InputLabel: lipgloss.NewStyle().Foreground(lipgloss.Color(p.dim)).Width(10),
	}
}
