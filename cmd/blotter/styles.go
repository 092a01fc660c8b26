package main

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorDarkBlue = lipgloss.Color("#1F3A5F")
	colorSteel    = lipgloss.Color("#4495AA")
	colorAmber    = lipgloss.Color("#FBF4A5")
	colorGreen    = lipgloss.Color("#5FAA7D")
	colorRed      = lipgloss.Color("#E24F36")
	colorWhite    = lipgloss.Color("#FFFFFF")

	headerStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Background(colorDarkBlue)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Background(colorDarkBlue)

	upStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	downStyle = lipgloss.NewStyle().Foreground(colorRed)

	blotterTableStyles = table.Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(colorSteel).Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(colorAmber),
		Cell:     lipgloss.NewStyle().Padding(0, 1),
	}
)
