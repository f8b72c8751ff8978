//go:build !windows

package utils

import (
	"context"
	"os/exec"
)

// Command creates a command. Only Windows needs the console window hidden.
func Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
