package commands

import (
	"github.com/l3aro/cprep/pkg/funcs"
	"github.com/l3aro/cprep/pkg/namelist"
	"github.com/l3aro/cprep/pkg/textbuf"
	"github.com/spf13/cobra"
)

func newFunctionsCmd(a *app) *cobra.Command {
	var o removerOptions
	cmd := &cobra.Command{
		Use:   "remove-functions <file_name>",
		Short: "Remove listed functions from a C source or header file",
		Long: `Removes every function named in functions_to_remove.txt (next to the
executable, or --list). In a .c file the definition is removed together with
the comment block directly above it. In a .h file the declaration lines
starting with the name are removed. A directory argument processes every
.c and .h file below it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFunctions(cmd, args[0], &o)
		},
	}
	addRemoverFlags(cmd.Flags(), &o)
	return cmd
}

func (a *app) runFunctions(cmd *cobra.Command, target string, o *removerOptions) error {
	engine, err := a.engine(o)
	if err != nil {
		return err
	}
	names, err := a.names(o, a.cfg.FunctionsList, namelist.FunctionsFile)
	if err != nil {
		return err
	}
	files, err := targets(target)
	if err != nil {
		return err
	}

	return a.apply(cmd, "remove-functions", files, func(path, content string) (string, bool, error) {
		res, err := funcs.Remove(textbuf.Split(content), names, funcs.Options{
			Header:  funcs.IsHeader(path),
			All:     o.all,
			Lenient: o.lenient,
			Engine:  engine,
		})
		if err != nil {
			return "", false, err
		}
		for _, r := range res.Removals {
			a.logger.Debug("Removed function", "file", path, "name", r.Name, "lines", r.Span.String())
		}
		for _, name := range res.Missing {
			a.logger.Debug("Function not found", "file", path, "name", name)
		}
		for _, err := range res.Skipped {
			a.logger.Warn("Skipped malformed function", "file", path, "error", err)
		}
		return res.Lines.String(), res.Changed(), nil
	})
}
