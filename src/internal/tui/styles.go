// Package tui renders tables and styled text for spm's listing commands
package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	initOnce sync.Once

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorSuccess   lipgloss.Color
	colorMuted     lipgloss.Color

	StyleTitle     lipgloss.Style
	StyleName      lipgloss.Style
	StyleNamespace lipgloss.Style
	StyleVersion   lipgloss.Style
	StyleLibrary   lipgloss.Style
	StyleMuted     lipgloss.Style
	StyleBox       lipgloss.Style

	StyleTableHeader    lipgloss.Style
	StyleTableCell      lipgloss.Style
	StyleTableHighlight lipgloss.Style
	StyleTableBorder    lipgloss.Style
)

// initStyles builds the styles on first use; terminal detection is slow
func initStyles() {
	initOnce.Do(func() {
		// Skip capability probing, see https://github.com/charmbracelet/lipgloss/issues/86
		lipgloss.SetColorProfile(termenv.TrueColor)

		colorPrimary = lipgloss.Color("39")
		colorSecondary = lipgloss.Color("213")
		colorSuccess = lipgloss.Color("42")
		colorMuted = lipgloss.Color("245")

		StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
		StyleName = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
		StyleNamespace = lipgloss.NewStyle().Foreground(colorMuted)
		StyleVersion = lipgloss.NewStyle().Foreground(colorSecondary)
		StyleLibrary = lipgloss.NewStyle().Foreground(colorSuccess)
		StyleMuted = lipgloss.NewStyle().Foreground(colorMuted)
		StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

		StyleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).PaddingRight(2)
		StyleTableCell = lipgloss.NewStyle().PaddingRight(2)
		StyleTableHighlight = lipgloss.NewStyle().PaddingRight(2).Foreground(colorSuccess)
		StyleTableBorder = StyleBox
	})
}

// RenderTitle renders a section title
func RenderTitle(text string) string {
	initStyles()
	return StyleTitle.Render(text)
}

// RenderVersion renders a package version
func RenderVersion(version string) string {
	initStyles()
	return StyleVersion.Render(version)
}

// RenderMuted renders secondary text
func RenderMuted(text string) string {
	initStyles()
	return StyleMuted.Render(text)
}

// RenderFullName renders "namespace/name" with the namespace dimmed
func RenderFullName(namespace, name string) string {
	initStyles()
	if namespace == "" {
		return StyleName.Render(name)
	}
	return StyleNamespace.Render(namespace+"/") + StyleName.Render(name)
}

// RenderBox renders content in a rounded box
func RenderBox(content string) string {
	initStyles()
	return StyleBox.Render(content)
}
