package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runEditor opens path with command, a program followed by optional
// arguments, attached to the terminal.
func runEditor(ctx context.Context, command, path string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("editor command is empty")
	}
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", fields[0], err)
	}
	return nil
}
