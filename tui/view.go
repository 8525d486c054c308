package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/archiveai/pkg/conversation"
)

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.picking {
		b.WriteString("Pick a PDF to upload:\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter select • esc cancel"))
		return b.String()
	}

	b.WriteString(m.view.View())
	b.WriteString("\n")

	composer := composerStyle
	if m.session.PendingResponse() {
		composer = composerDisabledStyle
	}
	b.WriteString(composer.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • pgup/pgdown scroll • ctrl+o upload pdf • ctrl+c quit"))

	return b.String()
}

func (m Model) renderHeader() string {
	upload := helpStyle.Render("[Upload PDF]")
	if m.session.PendingUpload() {
		upload = uploadingStyle.Render("[Uploading...]")
	}
	return titleStyle.Render("ArchiveAI") + "  " + upload
}

// renderTranscript lays out every message oldest first, followed by the
// loading placeholder while a response is pending.
func (m Model) renderTranscript() string {
	msgs := m.session.Messages()
	parts := make([]string, 0, len(msgs)+1)

	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.session.PendingResponse() {
		parts = append(parts, loadingStyle.Render(m.spinner.View()+" thinking..."))
	}

	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg conversation.Message) string {
	width := bubbleWidth(m.width)

	switch msg.Kind {
	case conversation.KindUser:
		block := userStyle.Render(wrap(msg.Content, width-2))
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)

	case conversation.KindAssistant:
		if m.renderer != nil {
			if out, err := m.renderer.Render(msg.Content); err == nil {
				return trimNewlines(out)
			}
		}
		return assistantStyle.Render(wrap(msg.Content, width-2))

	case conversation.KindSystem:
		return systemStyle.Render(wrap(msg.Content, width-2))

	default:
		return errorStyle.Render(wrap(msg.Content, width-2))
	}
}

func wrap(s string, width int) string {
	return ansi.Wordwrap(s, max(width, 1), "")
}
