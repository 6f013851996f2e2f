package commands

import (
	"errors"

	"github.com/MEKXH/nudge/internal/config"
	"github.com/spf13/cobra"
)

// ErrDenied means a permission request was answered with a denial.
// The process exits with a distinct status so scripts can branch on it.
var ErrDenied = errors.New("permission denied")

var logLevelOverride string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nudge",
		Short: "Nudge - human-in-the-loop broker for automated agents",
		Long: `Nudge runs a small loopback HTTP broker where automated agents park
questions and permission requests, and a human answers them from the
web page, the terminal, or the interactive inbox.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return configureLogger(config.DefaultConfig(), logLevelOverride, false)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return configureLogger(cfg, logLevelOverride, cmd.Name() == "inbox")
		},
	}

	cmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")

	cmd.AddCommand(
		NewInitCmd(),
		NewServeCmd(),
		NewStopCmd(),
		NewAskCmd(),
		NewPermitCmd(),
		NewAnswerCmd(),
		NewApproveCmd(),
		NewDenyCmd(),
		NewStatusCmd(),
		NewShowCmd(),
		NewInboxCmd(),
		NewVersionCmd(),
	)

	return cmd
}
