package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Counts      lipgloss.Style
	Cursor      lipgloss.Style
	TaskTitle   lipgloss.Style
	TaskDone    lipgloss.Style
	Description lipgloss.Style
	Placeholder lipgloss.Style
	FormLabel   lipgloss.Style
	FormActive  lipgloss.Style
	ConfirmBox  lipgloss.Style
	Status      lipgloss.Style
	Help        lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Tab:         lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8")),
		TabActive:   lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4")),
		Counts:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		TaskTitle:   lipgloss.NewStyle(),
		TaskDone:    lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8")),
		Description: lipgloss.NewStyle().Faint(true),
		Placeholder: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
		FormLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		FormActive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		ConfirmBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("1")).Padding(0, 1),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
