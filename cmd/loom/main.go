package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"loom/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		// Configuration problems exit 2 so launch scripts can tell a bad
		// setup from a failed run.
		if errors.Is(err, services.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
