package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/l3aro/cprep/internal/config"
	"github.com/l3aro/cprep/internal/healthcheck"
	"github.com/l3aro/cprep/pkg/syntax"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize cprep configuration interactively",
		Long: `Guides you through setting up cprep configuration step by step and runs
the doctor checks on the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd)
		},
	}
}

func runInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cfg := config.DefaultConfig()

	// === SECTION 1: Engine ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Engine - How functions and state entries are located").
				Description("The syntax tree engine understands nested braces and comments").
				Options(
					huh.NewOption("Line scanner", string(syntax.EngineLines)),
					huh.NewOption("Syntax tree (tree-sitter)", string(syntax.EngineAST)),
				).
				Value(&cfg.Engine),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Name lists ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Functions list (press Enter to use the file next to the executable)").
				Placeholder("functions_to_remove.txt").
				Value(&cfg.FunctionsList),
			huh.NewInput().
				Title("States list (press Enter to use the file next to the executable)").
				Placeholder("states_to_remove.txt").
				Value(&cfg.StatesList),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Backups ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Backups").
				Description("Record the original content of every rewritten file?").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Backup),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.Backup {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Journal path").
					Placeholder(cfg.JournalPath).
					Value(&cfg.JournalPath),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.cprep/config.yaml)", "global"),
					huh.NewOption("Project (./.cprep/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if cfg.JournalPath == "" {
		cfg.JournalPath = config.DefaultConfig().JournalPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", configPath)

	// === SECTION 5: Health Check ===
	fmt.Fprintln(out, "\n=== Running Health Check ===")
	result, err := healthcheck.Check(cfg, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	displayDoctorResult(out, result)
	return nil
}
