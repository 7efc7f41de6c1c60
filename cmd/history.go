package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/provenance"
	"github.com/sells-group/review-cli/internal/recordio"
)

var historyCmd = &cobra.Command{
	Use:   "history <record.json>",
	Short: "Show the audit history of a record",
	Long:  "Prints the provenance log, optionally filtered to one field's flattened change history or to one reviewer's entries.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, _ := cmd.Flags().GetString("field")
		userEmail, _ := cmd.Flags().GetString("user")

		rec, err := recordio.Load(args[0])
		if err != nil {
			return err
		}

		if field != "" {
			events := provenance.FieldHistory(rec, field)
			if len(events) == 0 {
				fmt.Fprintf(os.Stderr, "No history for field %q.\n", field)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tUSER\tACTION\tOLD\tNEW\tNOTES")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\t%s\n",
					e.Timestamp, e.User.Email, e.Action, orDash(e.OldValue), orDash(e.NewValue), e.Notes)
			}
			w.Flush()
			return nil
		}

		entries := rec.Provenance
		if userEmail != "" {
			entries = provenance.UserHistory(rec, userEmail)
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No provenance entries.")
			return nil
		}

		for i, entry := range entries {
			fmt.Printf("Edit %d: %s by %s <%s>\n", i+1, entry.Timestamp, entry.User.Name, entry.User.Email)
			fmt.Printf("  document: %s\n", entry.Document)
			for _, c := range entry.Changes {
				fmt.Printf("  %-10s %s: %v -> %v\n", c.Action, c.Field, orDash(c.OldValue), orDash(c.NewValue))
			}
			if entry.Notes != "" {
				fmt.Printf("  notes: %s\n", entry.Notes)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("field", "", "show flattened history for one field")
	historyCmd.Flags().String("user", "", "filter entries to one reviewer email")
	rootCmd.AddCommand(historyCmd)
}
