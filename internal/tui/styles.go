package tui

import (
	"github.com/charmbracelet/lipgloss"

	"ideavault/internal/controller"
	"ideavault/internal/domain"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Width(12)
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("117")).Padding(0, 1)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusCompleted:
		return successStyle
	case domain.StatusInProgress:
		return infoStyle
	case domain.StatusArchived:
		return faintStyle
	default:
		return lipgloss.NewStyle()
	}
}

// NotificationLine renders a notification for a status bar or stderr.
func NotificationLine(n controller.Notification) string {
	style := infoStyle
	switch n.Level {
	case controller.LevelSuccess:
		style = successStyle
	case controller.LevelError:
		style = errorStyle
	}
	return style.Bold(true).Render(n.Title) + " " + n.Message
}
