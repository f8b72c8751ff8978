//go:build windows

package utils

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// ErrAlreadyRunning is returned when another instance holds the mutex.
var ErrAlreadyRunning = errors.New("another instance is already running")

// SingleInstanceMutex holds a named Windows mutex for the process lifetime.
type SingleInstanceMutex struct {
	handle windows.Handle
}

// AcquireSingleInstance creates a named mutex to ensure only one instance runs
func AcquireSingleInstance(name string) (*SingleInstanceMutex, error) {
	mutexName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create mutex: %w", err)
	}

	return &SingleInstanceMutex{handle: handle}, nil
}

func (m *SingleInstanceMutex) Release() {
	if m.handle != 0 {
		windows.CloseHandle(m.handle)
		m.handle = 0
	}
}
