package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imamik/bundletester/internal/lifecycle"
	"github.com/imamik/bundletester/internal/util/prerequisites"
)

// checkTools checks the external tools. Replaceable in tests.
var checkTools = prerequisites.CheckAll

// DoctorStatus is the doctor report.
type DoctorStatus struct {
	Environment string                      `json:"environment,omitempty"`
	State       string                      `json:"state,omitempty"`
	ProbeError  string                      `json:"probeError,omitempty"`
	Bootstrap   bool                        `json:"bootstrap"`
	Sources     int                         `json:"sources"`
	Packages    int                         `json:"packages"`
	Tools       []prerequisites.CheckResult `json:"tools"`
	Healthy     bool                        `json:"healthy"`
}

// Doctor handles the doctor command.
//
// It checks the required tools and, when an environment is selected, whether
// that environment is running.
func Doctor(ctx context.Context, opts Options, jsonOutput bool) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	tools := checkTools(ctx)
	status := DoctorStatus{
		Environment: s.env.Name(),
		Bootstrap:   s.cfg.Bootstrap,
		Sources:     len(s.cfg.Sources),
		Packages:    len(s.cfg.Packages),
		Tools:       tools.Results,
		Healthy:     !tools.HasErrors(),
	}

	if s.env.Configured() {
		ctrl, err := s.controller()
		if err != nil {
			return err
		}
		probe := ctrl.Probe(ctx)
		status.State = probe.State.String()
		if probe.State == lifecycle.ProbeError {
			status.ProbeError = probe.Err.Error()
			status.Healthy = false
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode doctor status: %w", err)
		}
		fmt.Fprintln(s.out, string(data))
	} else {
		fmt.Fprint(s.out, renderDoctor(&status))
	}

	if err := tools.Error(); err != nil {
		return err
	}
	return nil
}
