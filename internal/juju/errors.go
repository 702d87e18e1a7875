package juju

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/bundletester/internal/util/retry"
)

// connectivityMarkers are stderr fragments the tool prints when the
// environment's API cannot be reached for a transient reason.
var connectivityMarkers = []string{
	"Unable to connect to environment",
	"MissingOrIncorrectVersionHeader",
	"307: Temporary Redirect",
}

// ErrProtocolViolation is matched by errors raised when tool output lacks a
// marker the protocol depends on.
var ErrProtocolViolation = errors.New("unexpected tool output")

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Argv     []string
	ExitCode int
	Output   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", strings.Join(e.Argv, " "), e.ExitCode)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// ConnectivityError reports a command that failed because the environment
// could not be reached. It unwraps to the underlying *CommandError, so
// callers that do not retry can treat it as an ordinary command failure.
type ConnectivityError struct {
	Cause *CommandError
}

func (e *ConnectivityError) Error() string {
	return "cannot connect to environment: " + e.Cause.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Cause
}

// IsConnectivity reports whether err is a ConnectivityError.
func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// classify turns a non-zero exit into a CommandError or ConnectivityError.
func classify(cmdErr *CommandError) error {
	for _, marker := range connectivityMarkers {
		if strings.Contains(cmdErr.Stderr, marker) {
			return &ConnectivityError{Cause: cmdErr}
		}
	}
	return cmdErr
}

// ActionIDNotFoundError reports "action do" output without a queued action id.
type ActionIDNotFoundError struct {
	Output string
}

func (e *ActionIDNotFoundError) Error() string {
	return "action id not found in output: " + e.Output
}

// Is reports ErrProtocolViolation.
func (e *ActionIDNotFoundError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// ActionTimedOutError reports a fetched action whose status is not
// "completed" once the wait window has passed.
type ActionTimedOutError struct {
	ID     string
	Action string
	Status string
	// Wait is the window passed to the fetch, e.g. "1m".
	Wait string
}

func (e *ActionTimedOutError) Error() string {
	name := ""
	if e.Action != "" {
		name = " " + e.Action
	}
	msg := fmt.Sprintf("timed out waiting for action%s to complete during fetch", name)
	if e.Wait != "" {
		msg += " after " + e.Wait
	}
	return fmt.Sprintf("%s (id %s, status %q)", msg, e.ID, e.Status)
}

// Is reports retry.ErrDeadlineExceeded.
func (e *ActionTimedOutError) Is(target error) bool {
	return target == retry.ErrDeadlineExceeded
}

// Check converts the outcome of running cmd into an error: nil on a zero
// exit, a wrapped start failure, or a classified *CommandError.
func Check(cmd Command, result RunResult, err error) error {
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	if result.ExitCode == 0 {
		return nil
	}
	return classify(&CommandError{
		Argv:     cmd.Argv(),
		ExitCode: result.ExitCode,
		Output:   string(result.Stdout),
		Stderr:   string(result.Stderr),
	})
}
