package commands

import (
	"fmt"
	"os"

	"github.com/l3aro/cprep/internal/config"
	"github.com/l3aro/cprep/internal/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose bool
	logJSON bool
	dryRun  bool
	backup  bool
}

// app carries the state a subcommand needs once flags and config are
// resolved.
type app struct {
	opts   globalOptions
	cfg    *config.Config
	logger *log.DefaultLogger
}

func addGlobalFlags(fs *pflag.FlagSet, o *globalOptions) {
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	fs.BoolVar(&o.logJSON, "log-json", false, "Emit log lines as JSON")
	fs.BoolVar(&o.dryRun, "dry-run", false, "Print a unified diff instead of writing files")
	fs.BoolVar(&o.backup, "backup", false, "Record original contents in the journal before writing")
}

// NewRootCmd builds the cprep command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cprep",
		Short: "cprep - build-preparation rewriter for C sources",
		Long: `cprep rewrites C source and header files before a build.

Commands:
  resolve-flags     Replace IS_ENABLED(FLAG) with 0 or 1 from a config header
  remove-functions  Remove listed function definitions or declarations
  remove-states     Remove listed [NAME] = { ... }, state table entries
  restore           Restore a file from the backup journal
  init              Create a configuration file interactively
  doctor            Check configuration, name lists and journal

Use "cprep [command] --help" for more information about a command.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid by now; later failures are not usage errors.
			cmd.SilenceUsage = true
			return a.setup(cmd)
		},
	}
	addGlobalFlags(root.PersistentFlags(), &a.opts)
	// Usage text for argument errors goes to stdout; errors stay on stderr.
	root.SetOut(os.Stdout)

	root.AddCommand(newResolveCmd(a))
	root.AddCommand(newFunctionsCmd(a))
	root.AddCommand(newStatesCmd(a))
	root.AddCommand(newRestoreCmd(a))
	root.AddCommand(newInitCmd())
	root.AddCommand(newDoctorCmd(a))
	return root
}

// Execute runs root and reports a failure on its error stream.
func Execute(root *cobra.Command) error {
	cmd, err := root.ExecuteC()
	if err == nil {
		return nil
	}
	if cmd != nil && !cmd.SilenceUsage {
		// Usage errors: cobra already printed the usage text.
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	log.New(log.LoggerConfig{Level: log.ErrorLevel, Output: root.ErrOrStderr()}).Error(err.Error())
	return err
}

// setup loads configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = a.opts.verbose
	}
	if flags.Changed("backup") {
		cfg.Backup = a.opts.backup
	}
	a.cfg = cfg

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	a.logger = log.New(log.LoggerConfig{
		Level:      level,
		JSONOutput: a.opts.logJSON,
		Output:     cmd.ErrOrStderr(),
	})
	return nil
}

// colorOutput reports whether cmd writes to a terminal.
func colorOutput(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
