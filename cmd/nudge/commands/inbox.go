package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MEKXH/nudge/internal/inbox"
)

// NewInboxCmd creates the inbox command
func NewInboxCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Answer pending requests interactively",
		Long: `Opens a terminal UI listing pending requests. Questions are answered
with free text; permission requests are approved or denied with an
optional comment. The list refreshes itself while open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			program := tea.NewProgram(inbox.New(c), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	return cmd
}
