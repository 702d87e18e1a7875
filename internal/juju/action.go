package juju

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/imamik/bundletester/internal/metrics"
)

const (
	// StatusCompleted is the only action status treated as success.
	StatusCompleted = "completed"

	// DefaultActionWait is how long fetch waits for a result.
	DefaultActionWait = "1m"

	// DryRunActionID is returned by Do under dry-run.
	DryRunActionID = "00000000-0000-0000-0000-000000000000"
)

var actionIDPattern = regexp.MustCompile(`Action queued with id: ([a-f0-9-]{36})`)

// ParseActionID extracts the queued action id from "action do" output.
func ParseActionID(output string) (string, error) {
	match := actionIDPattern.FindStringSubmatch(output)
	if match == nil {
		return "", &ActionIDNotFoundError{Output: output}
	}
	return match[1], nil
}

// ActionResult is a fetched action result.
type ActionResult struct {
	ID     string
	Status string
	// Raw is the tool's output, unchanged.
	Raw string
	// Payload is Raw decoded as a YAML mapping.
	Payload map[string]any
}

// DecodeActionResult decodes the YAML document printed by "action fetch".
func DecodeActionResult(id, raw string) (*ActionResult, error) {
	var payload map[string]any
	if err := yaml.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode result of action %s: %w", id, err)
	}
	status, ok := payload["status"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to decode result of action %s: missing status in %q", id, raw)
	}
	return &ActionResult{
		ID:      id,
		Status:  status,
		Raw:     raw,
		Payload: payload,
	}, nil
}

// Actions queues actions on units and fetches their results.
//
// Do and Fetch are separate tool calls. If the process dies between them the
// queued action keeps running but its id is lost.
type Actions struct {
	invoker *Invoker
	wait    string
	log     logr.Logger
	metrics *metrics.Metrics
}

// ActionOptions configures Actions.
type ActionOptions struct {
	// Wait defaults to DefaultActionWait.
	Wait    string
	Logger  logr.Logger
	Metrics *metrics.Metrics
}

// NewActions creates Actions on top of invoker.
func NewActions(invoker *Invoker, opts ActionOptions) *Actions {
	wait := opts.Wait
	if wait == "" {
		wait = DefaultActionWait
	}
	return &Actions{
		invoker: invoker,
		wait:    wait,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Do queues action on unit and returns the action id. params are passed to
// "action do" unchanged, so they may mix key=value pairs with tool flags such
// as "--params file.yaml".
func (a *Actions) Do(ctx context.Context, unit, action string, params ...string) (string, error) {
	if a.invoker.DryRun() {
		a.log.V(1).Info("Dry run, not queueing action", "unit", unit, "action", action)
		return DryRunActionID, nil
	}

	args := append([]string{unit, action}, params...)
	output, err := a.invoker.Output(ctx, "action do", args)
	if err != nil {
		return "", fmt.Errorf("failed to queue action %s on %s: %w", action, unit, err)
	}

	id, err := ParseActionID(output)
	if err != nil {
		return "", err
	}
	a.log.V(1).Info("Action queued", "unit", unit, "action", action, "id", id)
	return id, nil
}

// Fetch waits up to wait (DefaultActionWait when empty) for the action with
// the given id and returns its result. action only names the action in errors.
// Any status other than "completed" yields an *ActionTimedOutError. Fetching
// the same id again returns the same result and does not re-run the action.
func (a *Actions) Fetch(ctx context.Context, id, action, wait string) (*ActionResult, error) {
	if wait == "" {
		wait = a.wait
	}

	if a.invoker.DryRun() {
		a.metrics.ObserveAction(StatusCompleted)
		return &ActionResult{
			ID:      id,
			Status:  StatusCompleted,
			Raw:     "status: " + StatusCompleted + "\n",
			Payload: map[string]any{"status": StatusCompleted},
		}, nil
	}

	output, err := a.invoker.Output(ctx, "action fetch", []string{id, "--wait", wait})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch action %s: %w", id, err)
	}

	result, err := DecodeActionResult(id, output)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveAction(result.Status)

	if result.Status != StatusCompleted {
		return nil, &ActionTimedOutError{ID: id, Action: action, Status: result.Status, Wait: wait}
	}
	return result, nil
}

// DoFetch queues action on unit and waits for its result.
func (a *Actions) DoFetch(ctx context.Context, unit, action, wait string, params ...string) (*ActionResult, error) {
	id, err := a.Do(ctx, unit, action, params...)
	if err != nil {
		return nil, err
	}
	return a.Fetch(ctx, id, action, wait)
}
