package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/recordio"
)

var showCmd = &cobra.Command{
	Use:   "show <record.json>",
	Short: "Print the current values of a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recordio.Load(args[0])
		if err != nil {
			return err
		}

		if len(rec.Values) == 0 {
			fmt.Fprintln(os.Stderr, "Record has no values.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tVALUE\tTYPE\tRULES")
		for i, v := range rec.Values {
			fmt.Fprintf(w, "%d\t%s\t%v\t%s\t%s\n", i, v.Name, v.Value, v.Type, v.RulesText())
		}
		w.Flush()

		fmt.Printf("\n%d value(s), %d provenance entr(ies)\n", len(rec.Values), len(rec.Provenance))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
