package commands

import (
	"github.com/l3aro/cprep/internal/scanner"
	"github.com/l3aro/cprep/pkg/namelist"
	"github.com/l3aro/cprep/pkg/states"
	"github.com/l3aro/cprep/pkg/textbuf"
	"github.com/spf13/cobra"
)

func newStatesCmd(a *app) *cobra.Command {
	var o removerOptions
	cmd := &cobra.Command{
		Use:   "remove-states <file_name>",
		Short: "Remove listed entries from C state tables",
		Long: `Removes every [NAME] = { ... }, entry whose NAME is listed in
states_to_remove.txt (next to the executable, or --list), including a
one-line /* comment */ directly above it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStates(cmd, args[0], &o)
		},
	}
	addRemoverFlags(cmd.Flags(), &o)
	return cmd
}

func (a *app) runStates(cmd *cobra.Command, target string, o *removerOptions) error {
	engine, err := a.engine(o)
	if err != nil {
		return err
	}
	names, err := a.names(o, a.cfg.StatesList, namelist.StatesFile)
	if err != nil {
		return err
	}
	files, err := targets(target, scanner.Source)
	if err != nil {
		return err
	}

	return a.apply(cmd, "remove-states", files, func(path, content string) (string, bool, error) {
		res, err := states.Remove(textbuf.Split(content), names, states.Options{
			All:     o.all,
			Lenient: o.lenient,
			Engine:  engine,
		})
		if err != nil {
			return "", false, err
		}
		for _, r := range res.Removals {
			a.logger.Debug("Removed state", "file", path, "name", r.Name, "lines", r.Span.String())
		}
		for _, name := range res.Missing {
			a.logger.Debug("State not found", "file", path, "name", name)
		}
		for _, err := range res.Skipped {
			a.logger.Warn("Skipped malformed state entry", "file", path, "error", err)
		}
		return res.Lines.String(), res.Changed(), nil
	})
}
