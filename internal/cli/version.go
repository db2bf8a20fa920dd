package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/buildinfo"
	"github.com/aidanlsb/rook/internal/roam"
)

type versionInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	Commit     string `json:"commit,omitempty"`
	Date       string `json:"date,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
	Platform   string `json:"platform"`
}

func currentVersionInfo() versionInfo {
	info := buildinfo.Resolve()
	return versionInfo{
		Version:    info.Version,
		APIVersion: roam.ExpectedAPIVersion,
		Commit:     info.Commit,
		Date:       info.Date,
		GoVersion:  info.GoVer,
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show rook version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersionInfo()
			if jsonOutput {
				outputSuccess(info)
				return nil
			}

			fmt.Fprintf(stdout, "rook %s\n", info.Version)
			fmt.Fprintf(stdout, "local API: %s\n", info.APIVersion)
			if info.Commit != "" {
				fmt.Fprintf(stdout, "commit: %s\n", info.Commit)
			}
			if info.Date != "" {
				fmt.Fprintf(stdout, "built: %s\n", info.Date)
			}
			if info.GoVersion != "" {
				fmt.Fprintf(stdout, "go: %s\n", info.GoVersion)
			}
			fmt.Fprintf(stdout, "platform: %s\n", info.Platform)
			return nil
		},
	}
}
