package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case commands.DayLoadedMsg:
		// A late load for a day we already left is dropped.
		if !msg.Date.Equal(m.date) {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.setSnapshot(msg.Tasks)
		return m, nil

	case commands.TaskUpdatedMsg:
		m.loading = true
		return m, tea.Batch(
			commands.LoadDay(m.ctx, m.repo, m.date),
			commands.Status(msg.Status),
		)

	case commands.ErrMsg:
		m.logger.Warn("agenda error", zap.Error(msg.Err))
		m.err = msg.Err
		m.loading = false
		return m, nil

	case commands.StatusMsgCmd:
		m.statusMsg = msg.Msg
		m.statusTime = time.Now().Add(statusTimeout)
		return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
			return commands.ClearStatusMsg{}
		})

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}
