package board

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334455")).
			Padding(0, 1).
			MarginRight(1)

	focusedColumnStyle = columnStyle.Copy().
				BorderForeground(lipgloss.Color("#0AF"))

	columnTitleStyle = lipgloss.NewStyle().Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#444")).
			Padding(0, 1)

	focusedCardStyle = cardStyle.Copy().
				BorderForeground(lipgloss.Color("#0AF")).
				Foreground(lipgloss.Color("#FFF"))

	newCardStyle = cardStyle.Copy().
			BorderForeground(lipgloss.Color("#a6e3a1"))

	propertyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999"))

	moreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0AF", Dark: "#0AF"})

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1e1e2e")).
			Background(lipgloss.Color("#f9e2af")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f38ba8"))

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#0AF")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cba6f7")).
			Padding(1, 2)
)
