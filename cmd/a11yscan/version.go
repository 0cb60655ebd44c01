package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
)

// Release builds stamp these at link time:
//
//	go build -ldflags "-X main.version=v1.2.0 -X main.commit=abc1234 -X main.date=2026-01-02"
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the running binary. Link-time values win over the
// VCS stamp the Go toolchain embeds.
type buildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Modified  bool
}

var readBuildInfo = sync.OnceValue(func() buildInfo {
	info := buildInfo{
		Version:   "(devel)",
		Commit:    "unknown",
		Date:      "unknown",
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = shortRevision(s.Value)
			case "vcs.time":
				info.Date = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if version != "" {
		info.Version = version
	}
	if commit != "" {
		info.Commit = commit
	}
	if date != "" {
		info.Date = date
	}
	return info
})

// getVersion returns the version reported by --version and in JSON reports.
func getVersion() string {
	return readBuildInfo().Version
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit, build date and Go toolchain of a11yscan.
Use --short in scripts to print the version alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return err
			}

			info := readBuildInfo()
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, info.Version)
				return nil
			}

			rev := info.Commit
			if info.Modified {
				rev += " (modified)"
			}
			fmt.Fprintf(out, "a11yscan version %s\n", info.Version)
			fmt.Fprintf(out, "  commit: %s\n", rev)
			fmt.Fprintf(out, "  built:  %s\n", info.Date)
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Print only the version")
	return cmd
}
