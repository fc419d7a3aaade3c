package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	TabBar      *lipgloss.Style
	Tab         *lipgloss.Style
	ActiveTab   *lipgloss.Style
	ZoomMark    *lipgloss.Style
	Separator   *lipgloss.Style
	Status      *lipgloss.Style
	StatusError *lipgloss.Style
	Connecting  *lipgloss.Style

	SwitcherPrompt      *lipgloss.Style
	SwitcherItem        *lipgloss.Style
	SwitcherSelected    *lipgloss.Style
	SwitcherPlaceholder *lipgloss.Style
}

var defaultStyles = Styles{
	TabBar: ptr(
		lipgloss.NewStyle().Background(lipgloss.Color("236")),
	),
	Tab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("236")).Padding(0, 1),
	),
	ActiveTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true).Padding(0, 1),
	),
	ZoomMark: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	),
	Separator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	Status: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	StatusError: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Connecting: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	SwitcherPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	SwitcherItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	SwitcherSelected: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	SwitcherPlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
