package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var build = BuildInfo{Version: "dev", Commit: "none", Date: "unknown"}

// SetVersionInfo records the values stamped into main at link time.
func SetVersionInfo(version, commit, date string) {
	build = BuildInfo{Version: version, Commit: commit, Date: date}
}

// Version returns the version command.
func Version() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout(), short)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, build.Version)
		return
	}
	fmt.Fprintf(w, "bundletester %s (%s/%s, %s)\n", build.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(w, "  commit: %s\n", build.Commit)
	fmt.Fprintf(w, "  built:  %s\n", build.Date)
}
