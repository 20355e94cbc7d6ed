package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks a yes/no question over the current view. The parent
// model reads Confirmed/Cancelled after each update.
type ConfirmModal struct {
	title    string
	message  string
	isActive bool

	confirmRequested bool
	cancelRequested  bool
}

var (
	confirmYes = key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm"))
	confirmNo  = key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/Esc", "cancel"))
)

// NewConfirmModal creates an inactive modal
func NewConfirmModal(title, message string) *ConfirmModal {
	return &ConfirmModal{title: title, message: message}
}

// Update handles input for the modal
func (m *ConfirmModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, confirmYes):
			m.confirmRequested = true
			m.isActive = false
		case key.Matches(msg, confirmNo):
			m.cancelRequested = true
			m.isActive = false
		}
	}
	return nil
}

// View renders the modal box
func (m *ConfirmModal) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		StyleWarning.Render(m.title),
		"",
		StyleText.Render(m.message),
		"",
		StyleTextDim.Render("y: yes • n/Esc: no"),
	)
	return StyleModal.Render(content)
}

// SetActive opens or closes the modal, clearing any previous answer
func (m *ConfirmModal) SetActive(active bool) {
	m.isActive = active
	m.confirmRequested = false
	m.cancelRequested = false
}

// IsActive reports whether the modal is capturing input
func (m *ConfirmModal) IsActive() bool {
	return m.isActive
}

// Confirmed reports whether the user answered yes
func (m *ConfirmModal) Confirmed() bool {
	return m.confirmRequested
}

// Cancelled reports whether the user answered no
func (m *ConfirmModal) Cancelled() bool {
	return m.cancelRequested
}
