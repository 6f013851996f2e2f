package main

import (
	"errors"
	"os"

	"github.com/MEKXH/nudge/cmd/nudge/commands"
	"github.com/MEKXH/nudge/internal/client"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		switch {
		case errors.Is(err, commands.ErrDenied):
			os.Exit(2)
		case errors.Is(err, client.ErrTimeout):
			os.Exit(3)
		}
		os.Exit(1)
	}
}
