// Package main provides the CLI entry point for unitable.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tsawler/unitable"
	"github.com/tsawler/unitable/match"
)

var (
	// analyze flags
	pattern   string
	modelName string
	noMatch   bool
	parallel  int
	minRows   int
	ocrLang   string
	output    string
	verbose   bool
	debug     bool

	// tables flags
	sheetName    string
	delimiter    string
	tableMinRows int
	tableOutput  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "unitable",
		Short: "Extract tables from tabular files and unify their column names",
		Long: `unitable finds the rectangular table regions inside spreadsheet, CSV,
HTML and image files, and can group column labels that mean the same
thing across every table into one canonical name per group.`,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze every matching file in a directory",
		Long: `analyze extracts the tables from every file in a directory that matches
the glob pattern, asks the configured model which column labels are
synonyms, renames the grouped columns everywhere, and prints a report.

Reads OPENAI_API_KEY from the environment or a .env file unless
--no-match is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&pattern, "pattern", "p", "*.xlsx", "Glob pattern for files to analyze")
	analyzeCmd.Flags().StringVarP(&modelName, "model", "m", "", "OpenAI model for column matching (default: gpt-4o)")
	analyzeCmd.Flags().BoolVar(&noMatch, "no-match", false, "Skip column matching, extract tables only")
	analyzeCmd.Flags().IntVar(&parallel, "parallel", 4, "Number of files to process concurrently")
	analyzeCmd.Flags().IntVar(&minRows, "min-rows", 2, "Minimum data rows a table region must have")
	analyzeCmd.Flags().StringVar(&ocrLang, "ocr-lang", "", "Tesseract language for image sources (default: eng)")
	analyzeCmd.Flags().StringVarP(&output, "output", "o", "text", "Report format: text, markdown, json")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each processing stage to stderr")
	analyzeCmd.Flags().BoolVar(&debug, "debug", false, "Dump the full analysis to stderr")

	tablesCmd := &cobra.Command{
		Use:   "tables [input file]",
		Short: "Print the tables found in a single file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTables,
	}
	tablesCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet to read (default: first sheet)")
	tablesCmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "Field delimiter for CSV input")
	tablesCmd.Flags().IntVar(&tableMinRows, "min-rows", 2, "Minimum data rows a table region must have")
	tablesCmd.Flags().StringVarP(&tableOutput, "output", "o", "markdown", "Table format: markdown, csv")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tablesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	// Validate the directory exists
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	reportFormat, err := unitable.ParseReportFormat(output)
	if err != nil {
		return err
	}

	opts := []unitable.AnalyzeOption{
		unitable.WithParallelism(parallel),
		unitable.WithMinDataRows(minRows),
	}
	if ocrLang != "" {
		opts = append(opts, unitable.WithOCRLanguage(ocrLang))
	}
	if verbose {
		opts = append(opts, unitable.WithObserver(logEvent))
	}

	if !noMatch {
		// The key may live in a .env file next to where the command runs.
		_ = godotenv.Load()

		var matchOpts []match.OpenAIOption
		if modelName != "" {
			matchOpts = append(matchOpts, match.WithModel(modelName))
		}
		matcher, err := match.NewOpenAI(matchOpts...)
		if err != nil {
			return fmt.Errorf("column matching unavailable (use --no-match to skip it): %w", err)
		}
		opts = append(opts, unitable.WithMatcher(matcher))
	}

	analysis, err := unitable.AnalyzeDirectory(cmd.Context(), dir, pattern, opts...)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if debug {
		fmt.Fprint(os.Stderr, spew.Sdump(analysis))
	}

	report, err := analysis.Render(reportFormat)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Println(report)

	return nil
}

func logEvent(ev unitable.Event) {
	slog.Info(string(ev.Kind), "source", ev.Source, "detail", ev.Detail, "count", ev.Count)
}

func runTables(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	ex := unitable.Open(inputPath).MinDataRows(tableMinRows)
	if sheetName != "" {
		ex = ex.Sheet(sheetName)
	}
	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return fmt.Errorf("invalid delimiter: %q (must be a single character)", delimiter)
		}
		ex = ex.Delimiter(runes[0])
	}

	tables, warnings, err := ex.Tables()
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.String())
	}

	for i, tbl := range tables {
		if i > 0 {
			fmt.Println()
		}
		switch tableOutput {
		case "markdown":
			fmt.Printf("## Table %d (rows %d-%d)\n\n", i+1, tbl.StartRow, tbl.EndRow)
			fmt.Println(tbl.ToMarkdown())
		case "csv":
			fmt.Print(tbl.ToCSV())
		default:
			return fmt.Errorf("invalid output format: %s (must be markdown or csv)", tableOutput)
		}
	}

	return nil
}
