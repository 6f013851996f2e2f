package commands

import (
	"errors"
	"fmt"

	"github.com/MEKXH/nudge/internal/store"
	"github.com/spf13/cobra"
)

// NewPermitCmd creates the permit command
func NewPermitCmd() *cobra.Command {
	var flags askFlags
	var command string

	cmd := &cobra.Command{
		Use:   "permit <question>",
		Short: "Ask the human to approve or deny a command",
		Long: `Posts a permission request for the given command and waits for the
human's decision. Exits 0 when approved, 2 when denied, 3 on timeout.
A free-text answer that is not a structured decision counts as a
denial.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if command == "" {
				return errors.New("--command is required")
			}
			req, err := submitAndWait(store.CreateInput{
				Question: args[0],
				Context:  flags.context,
				Agent:    flags.agent,
				Task:     flags.task,
				Type:     store.TypePermission,
				Command:  command,
			}, flags)
			if err != nil {
				return err
			}

			decision, ok := store.ParseDecision(req.Answer)
			if !ok {
				// Plain text from the web page or answer command.
				fmt.Println(req.Answer)
				return fmt.Errorf("unstructured answer treated as denial: %w", ErrDenied)
			}
			if decision.Comment != "" {
				fmt.Println(decision.Comment)
			}
			if !decision.Approved() {
				return ErrDenied
			}
			fmt.Println("approved")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&command, "command", "", "Command the agent wants to run (required)")
	return cmd
}
