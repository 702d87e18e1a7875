package juju

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	// Env holds KEY=VALUE entries added to the inherited environment.
	Env []string
}

// Argv returns the full argument vector, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// RunResult is the captured outcome of a finished process.
type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner abstracts process execution so callers can be tested without
// spawning anything.
//
// A process that starts and exits non-zero is reported through ExitCode with
// a nil error. The error return is reserved for processes that could not be
// started or waited on.
type Runner interface {
	// Run executes cmd to completion, capturing stdout and stderr separately.
	Run(ctx context.Context, cmd Command) (RunResult, error)

	// Stream executes cmd with stderr merged into stdout and calls onLine for
	// every line as it arrives. The merged output is returned in Stdout.
	Stream(ctx context.Context, cmd Command, onLine func(line string)) (RunResult, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	// #nosec G204 -- argument vectors are assembled by this package, not a shell
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) (RunResult, error) {
	cmd := r.command(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	return exitResult(result, err)
}

// Stream implements Runner.
func (r ExecRunner) Stream(ctx context.Context, c Command, onLine func(string)) (RunResult, error) {
	cmd := r.command(ctx, c)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return RunResult{ExitCode: -1}, fmt.Errorf("failed to open output pipe for %s: %w", c.Name, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return exitResult(RunResult{}, err)
	}

	var output bytes.Buffer
	reader := bufio.NewReader(pipe)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			output.WriteString(line)
			if onLine != nil {
				onLine(strings.TrimRight(line, "\r\n"))
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				_ = cmd.Wait()
				return RunResult{Stdout: output.Bytes(), ExitCode: -1},
					fmt.Errorf("failed to read output of %s: %w", c.Name, readErr)
			}
			break
		}
	}

	return exitResult(RunResult{Stdout: output.Bytes()}, cmd.Wait())
}

// exitResult folds a process error into the result. Non-zero exits are not
// errors; anything else is.
func exitResult(result RunResult, err error) (RunResult, error) {
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.ExitCode = -1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		result.ExitCode = 127
	}
	return result, err
}
