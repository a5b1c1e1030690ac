// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when no command is configured for an action.
var ErrUnknownAction = errors.New("no command for action")

// IsConnectionTimeoutError checks if an error is due to connection timeout.
func IsConnectionTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "i/o timeout")
}

// IsConnectionRefusedError checks if the board actively refused the
// connection or is unreachable.
func IsConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no route to host")
}

// IsAuthenticationError checks if an error is due to rejected credentials.
func IsAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "authentication failed") ||
		strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "public key")
}

// IsHostKeyError checks if an error came from host key verification.
func IsHostKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "host key mismatch") ||
		strings.Contains(errStr, "unknown host key") ||
		strings.Contains(errStr, "host key verification failed")
}

// ClassifyConnectionError wraps err with a short, operator-readable reason.
func ClassifyConnectionError(host string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsConnectionTimeoutError(err):
		return fmt.Errorf("connection to %s timed out: %w", host, err)
	case IsConnectionRefusedError(err):
		return fmt.Errorf("connection to %s refused: %w", host, err)
	case IsAuthenticationError(err):
		return fmt.Errorf("authentication failed for %s: %w", host, err)
	case IsHostKeyError(err):
		return fmt.Errorf("host key verification failed for %s: %w", host, err)
	default:
		return fmt.Errorf("failed to connect to %s: %w", host, err)
	}
}
