package commands

import (
	"fmt"
	"os"

	"github.com/l3aro/cprep/internal/scanner"
	"github.com/l3aro/cprep/pkg/macro"
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-flags <c_file_path> <h_file_path>",
		Short: "Replace IS_ENABLED(FLAG) with literals from a config header",
		Long: `Reads #define and #undef directives from the header and replaces every
IS_ENABLED(FLAG) in the source with 1 or 0, keeping the original invocation
in a trailing comment:

  if (IS_ENABLED(CONFIG_USB_PD_REV30))  ->  if (1/*IS_ENABLED(CONFIG_USB_PD_REV30)*/)

Flags that the header neither defines nor undefines are left untouched.
When c_file_path is a directory every .c file below it is resolved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd, args[0], args[1])
		},
	}
}

func (a *app) runResolve(cmd *cobra.Command, srcPath, headerPath string) error {
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	flags := macro.ParseHeader(string(header))
	a.logger.Debug("Parsed header", "path", headerPath, "flags", flags.Len())

	files, err := targets(srcPath, scanner.Source)
	if err != nil {
		return err
	}

	return a.apply(cmd, "resolve-flags", files, func(path, content string) (string, bool, error) {
		res := macro.Resolve(content, flags)
		for _, s := range res.Substitutions {
			a.logger.Debug("Resolved flag", "file", path, "flag", s.Name, "value", s.Value, "count", s.Count)
		}
		for _, name := range res.Unresolved {
			a.logger.Debug("Flag not in header", "file", path, "flag", name)
		}
		return res.Content, res.Changed(), nil
	})
}
