package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MEKXH/nudge/internal/client"
	"github.com/MEKXH/nudge/internal/config"
	"github.com/MEKXH/nudge/internal/store"
	"github.com/spf13/cobra"
)

type askFlags struct {
	context string
	agent   string
	task    string
	timeout int
	port    int
}

func (f *askFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.context, "context", "", "Extra context shown to the human (markdown)")
	cmd.Flags().StringVar(&f.agent, "agent", "", "Name of the asking agent")
	cmd.Flags().StringVar(&f.task, "task", "", "Short description of the current task")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "Seconds to wait for an answer (overrides config)")
	cmd.Flags().IntVar(&f.port, "port", 0, "Broker port (overrides config)")
}

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	var flags askFlags

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the human a question and wait for the answer",
		Long: `Posts a question to the broker, starting one if none is running, then
polls until the human answers or the timeout passes. The answer is
printed to stdout. Exits 3 on timeout; the question stays pending.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := submitAndWait(store.CreateInput{
				Question: args[0],
				Context:  flags.context,
				Agent:    flags.agent,
				Task:     flags.task,
				Type:     store.TypeQuestion,
			}, flags)
			if err != nil {
				return err
			}
			fmt.Println(req.Answer)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// submitAndWait creates a request on the broker (launching it if needed)
// and polls until it is answered or the timeout elapses.
func submitAndWait(input store.CreateInput, flags askFlags) (store.Request, error) {
	cfg, err := config.Load()
	if err != nil {
		return store.Request{}, fmt.Errorf("failed to load config: %w", err)
	}
	port := cfg.Server.Port
	if flags.port != 0 {
		port = flags.port
	}
	timeout := time.Duration(cfg.Client.Timeout) * time.Second
	if flags.timeout != 0 {
		timeout = time.Duration(flags.timeout) * time.Second
	}

	if err := client.EnsureServer(port); err != nil {
		return store.Request{}, err
	}

	c := client.New(port)
	id, err := c.Ask(client.AskInput{
		Question: input.Question,
		Context:  input.Context,
		Agent:    input.Agent,
		Task:     input.Task,
		Type:     input.Type,
		Command:  input.Command,
	})
	if err != nil {
		return store.Request{}, err
	}

	fmt.Fprintf(os.Stderr, "request %s pending, answer at %s\n", id, c.URL())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.WaitForAnswer(ctx, id, time.Duration(cfg.Client.PollInterval)*time.Second)
}
