//go:build windows

package utils

import (
	"context"
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

// Command creates a command that won't flash a console window.
func Command(name string, args ...string) *exec.Cmd {
	return hide(exec.Command(name, args...))
}

// CommandContext is Command bound to ctx.
func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return hide(exec.CommandContext(ctx, name, args...))
}

func hide(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
	return cmd
}
