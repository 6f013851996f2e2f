package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCmd creates the stop command
func NewStopCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := brokerClient(port)
			if err != nil {
				return err
			}
			if err := c.Shutdown(); err != nil {
				return err
			}
			fmt.Println("Broker stopping.")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Broker port (overrides config)")
	return cmd
}
