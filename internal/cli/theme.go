package cli

import "charm.land/lipgloss/v2"

type theme struct {
	prompt    lipgloss.Style
	botLabel  lipgloss.Style
	botText   lipgloss.Style
	imageNote lipgloss.Style
	errorText lipgloss.Style
	subtle    lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("111")
	text := lipgloss.Color("252")
	muted := lipgloss.Color("246")
	success := lipgloss.Color("78")
	danger := lipgloss.Color("203")

	return theme{
		prompt:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(success),
		botText:   lipgloss.NewStyle().Foreground(text),
		imageNote: lipgloss.NewStyle().Italic(true).Foreground(muted),
		errorText: lipgloss.NewStyle().Bold(true).Foreground(danger),
		subtle:    lipgloss.NewStyle().Foreground(muted),
	}
}
