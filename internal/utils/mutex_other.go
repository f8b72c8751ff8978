//go:build !windows

package utils

import "errors"

var ErrAlreadyRunning = errors.New("another instance is already running")

// SingleInstanceMutex is a no-op outside Windows.
type SingleInstanceMutex struct{}

func AcquireSingleInstance(name string) (*SingleInstanceMutex, error) {
	return &SingleInstanceMutex{}, nil
}

func (m *SingleInstanceMutex) Release() {}
