package handlers

import (
	"context"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/imamik/bundletester/internal/juju"
)

// Output formats for action results.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// ActionDo handles the action do command and prints the queued action id.
func ActionDo(ctx context.Context, opts Options, unit, action string, params []string) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	id, err := s.actions().Do(ctx, unit, action, params...)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, id)
	return nil
}

// ActionFetch handles the action fetch command.
func ActionFetch(ctx context.Context, opts Options, id, wait, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	res, err := s.actions().Fetch(ctx, id, "", wait)
	if err != nil {
		return err
	}
	return s.printActionResult(res, output)
}

// ActionRun handles the action run command: queue the action, wait for it
// and print its result.
func ActionRun(ctx context.Context, opts Options, unit, action, wait, output string, params []string) error {
	if err := validateOutput(output); err != nil {
		return err
	}
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	res, err := s.actions().DoFetch(ctx, unit, action, wait, params...)
	if err != nil {
		return err
	}
	return s.printActionResult(res, output)
}

func validateOutput(output string) error {
	switch output {
	case "", OutputYAML, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use %s or %s)", output, OutputYAML, OutputJSON)
	}
}

func (s *session) printActionResult(res *juju.ActionResult, output string) error {
	if output != OutputJSON {
		fmt.Fprint(s.out, res.Raw)
		return nil
	}
	data, err := yaml.YAMLToJSON([]byte(res.Raw))
	if err != nil {
		return fmt.Errorf("failed to convert action result to JSON: %w", err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}
