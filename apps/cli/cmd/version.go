package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// commit is set at link time:
//
//	go build -ldflags "-X github.com/abdul-hamid-achik/domspec/apps/cli/cmd.commit=$(git rev-parse --short HEAD)"
//
// When empty, the VCS revision stamped by the go tool is used.
var commit string

var versionJSON bool

type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	Built    string `json:"built"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		bi, _ := debug.ReadBuildInfo()
		info := currentBuildInfo(bi)
		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "domspec version %s\n", info.Version)
		if info.Commit != "" {
			fmt.Fprintf(out, "Commit: %s\n", info.Commit)
		}
		fmt.Fprintf(out, "Built: %s (%s, %s)\n", info.Built, info.Go, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version information as JSON")
}

// currentBuildInfo merges the link-time variables with what bi records.
// A "dev" version is replaced by the module version of a `go install`.
func currentBuildInfo(bi *debug.BuildInfo) buildInfo {
	info := buildInfo{
		Version:  version,
		Commit:   commit,
		Built:    buildTime,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if info.Commit != "" {
		return info
	}
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		case "vcs.time":
			if info.Built == "unknown" {
				info.Built = s.Value
			}
		}
	}
	if dirty && info.Commit != "" {
		info.Commit += "-dirty"
	}
	return info
}
