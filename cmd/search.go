package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/document"
	"github.com/sells-group/review-cli/internal/ocr"
	"github.com/sells-group/review-cli/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <document> <query>",
	Short: "Search a document's text or OCR blocks",
	Long:  "Searches XML/text documents line by line, or OCR blocks when --ocr is given for image/PDF documents.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath, query := args[0], args[1]
		matchType, _ := cmd.Flags().GetString("match")
		ocrPath, _ := cmd.Flags().GetString("ocr")

		if matchType == "" {
			matchType = cfg.Review.DefaultMatch
		}
		matcher, err := search.ByName(matchType)
		if err != nil {
			return err
		}

		var results []search.Result
		switch kind := document.Detect(docPath); kind {
		case document.KindXML, document.KindText:
			data, err := document.Load(docPath)
			if err != nil {
				return err
			}
			results = search.Lines(string(data), query, matcher)
		case document.KindImage, document.KindPDF:
			if ocrPath == "" {
				return eris.Errorf("searching %s documents requires --ocr data", kind)
			}
			blocks, err := ocr.LoadFile(ocrPath)
			if err != nil {
				return err
			}
			results = search.Blocks(blocks, query, matcher)
		default:
			return eris.Errorf("search not supported for file type of %s", docPath)
		}

		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "No matches for %q.\n", query)
			return nil
		}
		fmt.Printf("Found %d match(es):\n", len(results))
		for i, r := range results {
			switch {
			case r.Line > 0:
				fmt.Printf("%d. line %d: %s\n", i+1, r.Line, r.Text)
			case r.Box != nil:
				fmt.Printf("%d. page %d (%.1f%% conf): %s\n", i+1, r.Page, r.Confidence, r.Text)
			default:
				fmt.Printf("%d. %s\n", i+1, r.Text)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("match", "", "match strategy: exact, fuzzy, or semantic (default from config)")
	searchCmd.Flags().String("ocr", "", "OCR data file for image/PDF search")
	rootCmd.AddCommand(searchCmd)
}
