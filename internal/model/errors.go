package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork marks failures to reach a remote download or speech service
	ErrNetwork = errors.New("service unreachable")

	// ErrRecognition marks audio the speech service could not understand
	ErrRecognition = errors.New("could not understand the audio")
)

// LaunchError means an external tool is missing or could not be started
type LaunchError struct {
	Tool string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Tool, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ToolError means an external tool exited with a non-zero code
type ToolError struct {
	Tool        string
	ExitCode    int
	Diagnostics string // captured diagnostic stream
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if d := strings.TrimSpace(e.Diagnostics); d != "" {
		msg += ": " + d
	}
	return msg
}

// NetworkError wraps err so that errors.Is(result, ErrNetwork) holds
func NetworkError(err error) error {
	if err == nil {
		return ErrNetwork
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// RecognitionError wraps err so that errors.Is(result, ErrRecognition) holds
func RecognitionError(err error) error {
	if err == nil {
		return ErrRecognition
	}
	return fmt.Errorf("%w: %v", ErrRecognition, err)
}

// UserMessage renders err as the text shown in the status line
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var launchErr *LaunchError
	var toolErr *ToolError
	switch {
	case errors.As(err, &launchErr):
		return fmt.Sprintf("Error: %s is not available (%v)", launchErr.Tool, launchErr.Err)
	case errors.As(err, &toolErr):
		return "Error: " + toolErr.Error()
	case errors.Is(err, ErrRecognition):
		return "Error: Could not understand the audio."
	default:
		return "Error: " + err.Error()
	}
}
