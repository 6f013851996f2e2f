package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/MEKXH/nudge/internal/store"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the full record of a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			req, err := c.Status(args[0])
			if err != nil {
				return err
			}
			fmt.Print(renderRequest(req))
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	return cmd
}

func renderRequest(req store.Request) string {
	var (
		labelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8E4EC6")).
				Bold(true).
				Width(10)
		dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		commandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CD5C5C")).
				Padding(0, 1)
	)

	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), value)
	}

	row("ID", req.ID)
	row("Type", string(req.Type))
	row("Status", string(req.Status))
	row("Agent", req.Agent)
	row("Task", req.Task)
	row("Created", formatTimestamp(req.CreatedAt))
	if req.AnsweredAt != 0 {
		row("Answered", formatTimestamp(req.AnsweredAt))
	}

	b.WriteString("\n")
	b.WriteString(req.Question)
	b.WriteString("\n")

	if req.Command != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Command"))
		b.WriteString("\n")
		b.WriteString(commandStyle.Render(req.Command))
		b.WriteString("\n")
	}

	if req.Context != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(req.Context))
	}

	if req.Answer != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Answer"))
		b.WriteString("\n")
		if decision, ok := store.ParseDecision(req.Answer); ok {
			b.WriteString(decision.Decision)
			if decision.Comment != "" {
				b.WriteString(": " + decision.Comment)
			}
			b.WriteString("\n")
		} else {
			b.WriteString(req.Answer)
			b.WriteString("\n")
		}
	} else if req.Status == store.StatusPending {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Awaiting answer."))
		b.WriteString("\n")
	}

	return b.String()
}

// renderMarkdown renders request context through glamour, falling back to
// the raw text when rendering fails (context is arbitrary agent input).
func renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
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

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04:05")
}
