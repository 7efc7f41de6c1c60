package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/provenance"
	"github.com/sells-group/review-cli/internal/recordio"
)

var exportCmd = &cobra.Command{
	Use:   "export <record.json> <report.json>",
	Short: "Export a timestamp-sorted provenance report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recordio.Load(args[0])
		if err != nil {
			return err
		}
		if err := provenance.ExportFile(rec, args[1]); err != nil {
			return err
		}
		fmt.Printf("Wrote provenance report: %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
