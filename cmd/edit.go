package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/review"
)

var editCmd = &cobra.Command{
	Use:   "edit <record.json> <edited-values.json>",
	Short: "Apply an edited value-set to a record",
	Long:  "Diffs the edited value-set against the record, appends a provenance entry for any changes, and saves a new timestamped revision.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordPath, editedPath := args[0], args[1]
		notes, _ := cmd.Flags().GetString("notes")

		user, err := currentUser()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(editedPath)
		if err != nil {
			return eris.Wrapf(err, "read edited values %s", editedPath)
		}
		values, err := review.ParseRows(data)
		if err != nil {
			return err
		}

		sess := review.Open(user, recordPath)
		defer sess.Close()
		if loadErr := sess.LoadError(); loadErr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v (starting from empty record)\n", loadErr)
		}

		result, err := sess.Submit(values, notes)
		if err != nil {
			return err
		}

		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
		}

		if !result.Committed {
			fmt.Fprintln(os.Stderr, "No changes detected; record content unchanged.")
		} else {
			formatChanges(result.Changes)
		}

		savedPath, err := sess.Save()
		if err != nil {
			return err
		}
		fmt.Printf("Saved revision: %s\n", savedPath)
		return nil
	},
}

func formatChanges(changes []model.Change) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tACTION\tOLD\tNEW")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", c.Field, c.Action, orDash(c.OldValue), orDash(c.NewValue))
	}
	w.Flush()
}

func orDash(v any) any {
	if v == nil {
		return "-"
	}
	return v
}

func init() {
	editCmd.Flags().String("notes", "", "free-text notes recorded with the provenance entry")
	rootCmd.AddCommand(editCmd)
}
