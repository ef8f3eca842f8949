package commands

import (
	"fmt"
	"os"

	"github.com/l3aro/cprep/internal/diffview"
	"github.com/l3aro/cprep/pkg/journal"
	"github.com/spf13/cobra"
)

func newRestoreCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "restore [file_name]",
		Short: "Restore a file from the backup journal",
		Long: `Writes back the content recorded by the last --backup run for the file and
drops the journal entry. With --dry-run the diff between the current file
and the backup is printed instead. With --list the journal entries are shown.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(a.cfg.JournalPath, journal.WithLimit(a.cfg.JournalLimit))
			if err != nil {
				return err
			}
			if list {
				return listJournal(cmd, j)
			}
			return a.runRestore(cmd, j, args[0])
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List journal entries")
	return cmd
}

func (a *app) runRestore(cmd *cobra.Command, j *journal.Journal, path string) error {
	if a.opts.dryRun {
		e, err := j.Get(path)
		if err != nil {
			return err
		}
		current, err := os.ReadFile(e.Path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", e.Path, err)
		}
		return diffview.Write(cmd.OutOrStdout(), path, string(current), string(e.Content), colorOutput(cmd))
	}

	e, err := j.Restore(path)
	if err != nil {
		return err
	}
	if err := j.Save(); err != nil {
		return err
	}
	a.logger.Info("Restored file", "file", e.Path, "tool", e.Tool, "recorded", e.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func listJournal(cmd *cobra.Command, j *journal.Journal) error {
	out := cmd.OutOrStdout()
	entries := j.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Journal is empty.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-16s  %s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tool, e.SHA256[:12], e.Path)
	}
	return nil
}
