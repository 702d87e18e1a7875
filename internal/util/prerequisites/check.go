// Package prerequisites checks that the external tools a run shells out to
// are installed.
package prerequisites

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/util/async"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallHint tells the user how to get the tool.
	InstallHint string

	// VersionArgs prints the tool version. Empty skips version detection.
	VersionArgs []string
}

// LifecycleTools returns the tools needed to bootstrap, deploy, reset and
// destroy an environment.
func LifecycleTools() []Tool {
	return []Tool{
		{
			Name:        "juju",
			Required:    true,
			Description: "Required for every environment and action command",
			InstallHint: "sudo apt-get install juju-core",
			VersionArgs: []string{"version"},
		},
		{
			Name:        "juju-deployer",
			Required:    true,
			Description: "Required for deploying bundles",
			InstallHint: "sudo apt-get install juju-deployer",
		},
	}
}

// PackageTools returns the tools needed to install configured packages.
func PackageTools() []Tool {
	return []Tool{
		{
			Name:        "sudo",
			Required:    false,
			Description: "Runs package installation with root privileges",
			InstallHint: "apt-get install sudo",
		},
		{
			Name:        "apt-get",
			Required:    false,
			Description: "Installs configured packages",
		},
		{
			Name:        "apt-add-repository",
			Required:    false,
			Description: "Adds configured package sources",
			InstallHint: "sudo apt-get install software-properties-common",
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "timeout",
			Required:    false,
			Description: "Bounds tool commands when a command timeout is configured",
			InstallHint: "sudo apt-get install coreutils",
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool   `json:"tool"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult `json:"results"`
	Missing []Tool        `json:"missing,omitempty"`
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if !tool.Required {
			continue
		}
		if tool.InstallHint != "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallHint))
		} else {
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Checker looks tools up and asks them for their version.
type Checker struct {
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// Runner defaults to juju.ExecRunner.
	Runner juju.Runner
	// VersionTimeout bounds each version probe.
	VersionTimeout time.Duration
}

// Check verifies that the specified tools are available.
func (c Checker) Check(ctx context.Context, tools []Tool) *CheckResults {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	results := &CheckResults{Results: make([]CheckResult, len(tools))}
	var probes []async.Task
	for i, tool := range tools {
		result := &results.Results[i]
		result.Tool = tool

		path, err := lookPath(tool.Name)
		if err != nil {
			results.Missing = append(results.Missing, tool)
			continue
		}
		result.Found = true
		result.Path = path
		probes = append(probes, async.Task{Name: tool.Name, Func: func(ctx context.Context) error {
			result.Version = c.version(ctx, tool)
			return nil
		}})
	}

	// Version probes only fill in detail, so they never fail the check.
	_ = async.Run(ctx, probes)
	return results
}

// Check verifies tools with the default Checker.
func Check(ctx context.Context, tools []Tool) *CheckResults {
	return Checker{}.Check(ctx, tools)
}

// CheckAll checks every known tool.
func CheckAll(ctx context.Context) *CheckResults {
	var all []Tool
	all = append(all, LifecycleTools()...)
	all = append(all, PackageTools()...)
	all = append(all, OptionalTools()...)
	return Check(ctx, all)
}

// version returns the first line of the tool's version output, or "" when it
// cannot be determined.
func (c Checker) version(ctx context.Context, tool Tool) string {
	if len(tool.VersionArgs) == 0 {
		return ""
	}
	runner := c.Runner
	if runner == nil {
		runner = juju.ExecRunner{}
	}
	timeout := c.VersionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := runner.Run(ctx, juju.Command{Name: tool.Name, Args: tool.VersionArgs})
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	first, _, _ := strings.Cut(string(res.Stdout), "\n")
	return strings.TrimSpace(first)
}
