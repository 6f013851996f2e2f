package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/MEKXH/nudge/internal/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List pending requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			pending, err := c.Pending()
			if err != nil {
				return err
			}
			renderPendingTable(pending)
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	return cmd
}

func renderPendingTable(pending []store.Request) {
	if len(pending) == 0 {
		fmt.Println("No pending requests.")
		return
	}

	var (
		headerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#8E4EC6")). // Purple
				Padding(0, 1).
				MarginBottom(1)

		// Column Widths
		wID       = 14
		wType     = 12
		wAgent    = 16
		wAge      = 10
		wQuestion = 48

		colHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8E4EC6")).
				Bold(true).
				MarginRight(1)

		idStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(wID).
			MarginRight(1)

		typeStyle = lipgloss.NewStyle().
				Width(wType).
				MarginRight(1)

		agentStyle = lipgloss.NewStyle().
				Width(wAgent).
				MarginRight(1)

		ageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(wAge).
				MarginRight(1)

		questionStyle = lipgloss.NewStyle().
				Width(wQuestion).
				MarginRight(1)

		permissionColor = lipgloss.Color("#CD5C5C") // IndianRed
	)

	fmt.Println(headerStyle.Render("Pending Requests"))

	headers := lipgloss.JoinHorizontal(lipgloss.Top,
		colHeaderStyle.Width(wID).Render("ID"),
		colHeaderStyle.Width(wType).Render("TYPE"),
		colHeaderStyle.Width(wAgent).Render("AGENT"),
		colHeaderStyle.Width(wAge).Render("AGE"),
		colHeaderStyle.Width(wQuestion).Render("QUESTION"),
	)
	fmt.Printf("  %s\n", headers)

	sepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	separator := lipgloss.JoinHorizontal(lipgloss.Top,
		sepStyle.Render(strings.Repeat("─", wID)),
		sepStyle.Render(strings.Repeat("─", wType)),
		sepStyle.Render(strings.Repeat("─", wAgent)),
		sepStyle.Render(strings.Repeat("─", wAge)),
		sepStyle.Render(strings.Repeat("─", wQuestion)),
	)
	fmt.Printf("  %s\n", separator)

	for _, req := range pending {
		agent := req.Agent
		if agent == "" {
			agent = "-"
		}
		tStyle := typeStyle
		if req.Type == store.TypePermission {
			tStyle = tStyle.Foreground(permissionColor)
		}

		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idStyle.Render(req.ID),
			tStyle.Render(string(req.Type)),
			agentStyle.Render(truncateCell(agent, wAgent)),
			ageStyle.Render(formatAge(req.CreatedAt)),
			questionStyle.Render(truncateCell(req.Question, wQuestion)),
		)
		fmt.Printf("  %s\n", row)
	}

	fmt.Printf("\n%d pending\n", len(pending))
}

func truncateCell(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func formatAge(createdAt int64) string {
	age := time.Since(time.Unix(createdAt, 0))
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(age.Hours()))
	}
}
