package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/l3aro/cprep/internal/config"
	"github.com/l3aro/cprep/internal/healthcheck"
	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, name lists and journal",
		Long: `Checks the effective configuration: the engine loads, the function and
state name lists can be read, and the backup journal is usable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := healthcheck.Check(a.cfg, effectiveConfigPath())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			displayDoctorResult(cmd.OutOrStdout(), result)

			if result.HasError() {
				return fmt.Errorf("health check failed: one or more items are not usable")
			}
			return nil
		},
	}
}

// effectiveConfigPath returns the highest-priority config file that exists.
func effectiveConfigPath() string {
	for _, path := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayDoctorResult(w io.Writer, result *healthcheck.HealthCheckResult) {
	if result.SavedPath == "" {
		fmt.Fprintln(w, "Using config: defaults (no config file found)")
	} else {
		fmt.Fprintf(w, "Using config: %s (%s)\n", result.SavedPath, result.SavedScope)
	}

	for _, item := range result.Items() {
		fmt.Fprintf(w, "\n%s:\n", item.Name)
		if item.Path != "" {
			fmt.Fprintf(w, "  Path: %s\n", item.Path)
		}
		if item.Detail != "" {
			fmt.Fprintf(w, "  Detail: %s\n", item.Detail)
		}
		fmt.Fprintf(w, "  Status: %s %s\n", formatStatusIcon(item.Status), item.Status)
		if item.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", item.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusReady:
		return "✓"
	case healthcheck.StatusDisabled:
		return "-"
	case healthcheck.StatusError:
		return "✗"
	default:
		return "?"
	}
}
