package inbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/MEKXH/nudge/internal/store"
)

const contextWrapWidth = 80

// View renders the request list, the detail of the selected request,
// and the composer when it has focus.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Nudge Inbox"))
	b.WriteString("\n\n")

	if len(m.requests) == 0 {
		b.WriteString(m.theme.Dim.Render("No pending requests."))
		b.WriteString("\n")
	} else {
		for i, req := range m.requests {
			b.WriteString(m.renderListLine(req, i == m.cursor))
			b.WriteString("\n")
		}
	}

	if req, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.renderDetail(req))
	}

	if m.focus == FocusCompose {
		b.WriteString("\n")
		b.WriteString(m.composer.View())
		b.WriteString("\n")
		b.WriteString(m.theme.Help.Render("C-d send · Esc cancel"))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(m.theme.Help.Render("j/k move · Enter answer · a approve · d deny · r refresh · q quit"))
		b.WriteString("\n")
	}

	if m.notice != "" {
		style := m.theme.Notice
		if strings.Contains(m.notice, "failed") {
			style = m.theme.Error
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderListLine(req store.Request, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}

	tag := " "
	if req.Type == store.TypePermission {
		tag = m.theme.Permission.Render("!")
	}

	agent := req.Agent
	if agent == "" {
		agent = "-"
	}
	line := fmt.Sprintf("%s%s %s  %-14s %s", marker, tag, req.ID, agent, firstLine(req.Question))

	if selected {
		return m.theme.Selected.Render(line)
	}
	return m.theme.Normal.Render(line)
}

func (m Model) renderDetail(req store.Request) string {
	var b strings.Builder

	b.WriteString(req.Question)
	b.WriteString("\n")

	meta := fmt.Sprintf("%s · asked %s", req.ID, time.Unix(req.CreatedAt, 0).Local().Format("15:04:05"))
	if req.Task != "" {
		meta += " · " + req.Task
	}
	b.WriteString(m.theme.Dim.Render(meta))
	b.WriteString("\n")

	if req.Command != "" {
		b.WriteString(m.theme.Command.Render(req.Command))
		b.WriteString("\n")
	}

	if req.Context != "" {
		b.WriteString(renderContext(req.Context))
	}

	return b.String()
}

// renderContext renders request context markdown for the terminal,
// falling back to the raw text (context is arbitrary agent input).
func renderContext(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contextWrapWidth),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
