package juju

import (
	"context"
	"errors"
)

// scriptedRunner replays canned results in call order and records every
// command it was asked to run.
type scriptedRunner struct {
	results []RunResult
	errs    []error
	calls   []Command
}

func (r *scriptedRunner) next() (RunResult, error) {
	n := len(r.calls) - 1
	if n >= len(r.results) {
		return RunResult{}, errors.New("scriptedRunner: no more results")
	}
	var err error
	if n < len(r.errs) {
		err = r.errs[n]
	}
	return r.results[n], err
}

func (r *scriptedRunner) Run(_ context.Context, cmd Command) (RunResult, error) {
	r.calls = append(r.calls, cmd)
	return r.next()
}

func (r *scriptedRunner) Stream(_ context.Context, cmd Command, onLine func(string)) (RunResult, error) {
	r.calls = append(r.calls, cmd)
	return r.next()
}

func stdout(s string) RunResult {
	return RunResult{Stdout: []byte(s)}
}
