package commands

import (
	"fmt"
	"os"

	"github.com/l3aro/cprep/internal/diffview"
	"github.com/l3aro/cprep/internal/scanner"
	"github.com/l3aro/cprep/pkg/journal"
	"github.com/l3aro/cprep/pkg/namelist"
	"github.com/l3aro/cprep/pkg/syntax"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// transformFunc rewrites the content of one file. It reports whether the
// content changed.
type transformFunc func(path, content string) (string, bool, error)

// removerOptions are the flags shared by remove-functions and remove-states.
type removerOptions struct {
	engine  string
	list    string
	all     bool
	lenient bool
}

func addRemoverFlags(fs *pflag.FlagSet, o *removerOptions) {
	fs.StringVar(&o.engine, "engine", "", "Locator engine: lines or ast (default from config)")
	fs.StringVar(&o.list, "list", "", "Name list file (default: next to the executable)")
	fs.BoolVar(&o.all, "all", false, "Remove every match instead of the first")
	fs.BoolVar(&o.lenient, "lenient", false, "Skip malformed matches with a warning instead of failing")
}

// engine resolves the --engine flag against the config.
func (a *app) engine(o *removerOptions) (syntax.Engine, error) {
	if o.engine == "" {
		return a.cfg.EngineValue(), nil
	}
	return syntax.ParseEngine(o.engine)
}

// names loads the name list from --list, the config, or the companion file
// next to the executable, in that order.
func (a *app) names(o *removerOptions, configured, companion string) ([]string, error) {
	path := o.list
	if path == "" {
		path = configured
	}
	if path == "" {
		p, err := namelist.DefaultPath(companion)
		if err != nil {
			return nil, err
		}
		path = p
	}

	names, err := namelist.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Loaded name list", "path", path, "names", len(names))
	return names, nil
}

// targets expands a path argument into the files to process.
func targets(path string, kinds ...scanner.Kind) ([]string, error) {
	opts := scanner.DefaultOptions()
	opts.Kinds = kinds
	files, err := scanner.Expand(path, opts)
	if err != nil {
		return nil, fmt.Errorf("resolving target %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no C files found under %s", path)
	}
	return files, nil
}

// apply runs fn over every file and writes each changed file once. With
// --dry-run it prints the diff instead; with --backup the original content
// is recorded in the journal before the file is overwritten.
func (a *app) apply(cmd *cobra.Command, tool string, files []string, fn transformFunc) error {
	var jr *journal.Journal
	if a.cfg.Backup && !a.opts.dryRun {
		j, err := journal.Open(a.cfg.JournalPath, journal.WithLimit(a.cfg.JournalLimit))
		if err != nil {
			return err
		}
		jr = j
	}

	changed := 0
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		out, ok, err := fn(path, string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			a.logger.Debug("No changes", "file", path)
			continue
		}
		changed++

		if a.opts.dryRun {
			if err := diffview.Write(cmd.OutOrStdout(), path, string(data), out, colorOutput(cmd)); err != nil {
				return err
			}
			continue
		}

		if jr != nil {
			stored, err := jr.Record(path, tool, data, info.Mode())
			if err != nil {
				return err
			}
			if !stored {
				a.logger.Debug("Keeping earlier backup", "file", path)
			}
			if err := jr.Save(); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		a.logger.Info("Updated file", "file", path)
	}

	a.logger.Debug("Done", "tool", tool, "files", len(files), "changed", changed, "dry_run", a.opts.dryRun)
	return nil
}
