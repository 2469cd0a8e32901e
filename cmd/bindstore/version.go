package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the bindstore version and the toolchain it was built with.`,
		Run: func(cmd *cobra.Command, args []string) {
			v, rev := buildVersion()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "version\t%s\n", v)
			fmt.Fprintf(tw, "commit\t%s\n", rev)
			fmt.Fprintf(tw, "built\t%s\n", date)
			fmt.Fprintf(tw, "go\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

// buildVersion prefers ldflags values and falls back to module build info
// for binaries installed with go install.
func buildVersion() (string, string) {
	v, rev := version, commit
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, rev
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if rev == "none" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				rev = s.Value
			}
		}
	}
	return v, rev
}
