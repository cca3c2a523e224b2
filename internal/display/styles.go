package display

import "github.com/charmbracelet/lipgloss"

// ── Palette ──────────────────────────────────────────────────────

var (
	colorText   = lipgloss.Color("#d4d4d8")
	colorDim    = lipgloss.Color("#71717a")
	colorBorder = lipgloss.Color("#52525b")
	colorAccent = lipgloss.Color("#fdba74")
	colorStar   = lipgloss.Color("#FFD700")
	colorEasy   = lipgloss.Color("#bbf7d0")
	colorMedium = lipgloss.Color("#fde68a")
	colorHard   = lipgloss.Color("#fca5a5")
	colorLink   = lipgloss.Color("#bae6fd")
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is used for the start screen art.
	BannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	textStyle  = lipgloss.NewStyle().Foreground(colorText)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	starStyle  = lipgloss.NewStyle().Foreground(colorStar)
	linkStyle  = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	errorStyle = lipgloss.NewStyle().Foreground(colorHard)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Strikethrough(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(lipgloss.Color("#27272a")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(colorAccent)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorHard).
			Padding(0, 2)

	badgeStyles = map[string]lipgloss.Style{
		"Easy":   lipgloss.NewStyle().Foreground(lipgloss.Color("#14532d")).Background(colorEasy).Padding(0, 1),
		"Medium": lipgloss.NewStyle().Foreground(lipgloss.Color("#713f12")).Background(colorMedium).Padding(0, 1),
		"Hard":   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f1d1d")).Background(colorHard).Padding(0, 1),
	}
)

// badge renders a difficulty label in its colour. Unknown labels use the
// Medium colour.
func badge(label string) string {
	st, ok := badgeStyles[label]
	if !ok {
		st = badgeStyles["Medium"]
	}
	return st.Render(label)
}
