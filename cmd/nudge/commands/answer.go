package commands

import (
	"errors"
	"fmt"

	"github.com/MEKXH/nudge/internal/client"
	"github.com/MEKXH/nudge/internal/config"
	"github.com/MEKXH/nudge/internal/store"
	"github.com/spf13/cobra"
)

// brokerClient builds a client for the configured (or overridden) port,
// failing fast when no broker is listening.
func brokerClient(portOverride int) (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	port := cfg.Server.Port
	if portOverride != 0 {
		port = portOverride
	}
	if !client.IsRunning(port) {
		return nil, fmt.Errorf("no broker running on port %d", port)
	}
	return client.New(port), nil
}

// NewAnswerCmd creates the answer command
func NewAnswerCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "answer <id> <text>",
		Short: "Answer a pending question from the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			return submitAnswer(c, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	return cmd
}

// NewApproveCmd creates the approve command
func NewApproveCmd() *cobra.Command {
	var port int
	var comment string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending permission request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			return submitDecision(c, args[0], store.DecisionApproved, comment)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment passed back to the agent")
	return cmd
}

// NewDenyCmd creates the deny command
func NewDenyCmd() *cobra.Command {
	var port int
	var comment string

	cmd := &cobra.Command{
		Use:   "deny <id>",
		Short: "Deny a pending permission request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			return submitDecision(c, args[0], store.DecisionDenied, comment)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment passed back to the agent")
	return cmd
}

func submitAnswer(c *client.Client, id, text string) error {
	if err := c.Answer(id, text); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("request %s not found or already answered", id)
		}
		return err
	}
	fmt.Printf("Answered %s\n", id)
	return nil
}

func submitDecision(c *client.Client, id, decision, comment string) error {
	encoded := store.Decision{Decision: decision, Comment: comment}.Encode()
	if err := c.Answer(id, encoded); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("request %s not found or already answered", id)
		}
		return err
	}
	fmt.Printf("%s %s\n", decision, id)
	return nil
}
