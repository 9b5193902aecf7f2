package main

import (
	"errors"
	"log"
	"os"

	"tableflip.dev/momentum/pkg/commands"
	"tableflip.dev/momentum/pkg/runner"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		if errors.Is(err, runner.ErrReported) {
			os.Exit(1)
		}
		log.Fatalf("error during command execution: %v", err)
	}
}
