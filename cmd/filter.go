package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sievelabs/sieve"
	"github.com/sievelabs/sieve/formatter"
	"github.com/sievelabs/sieve/internal/types"
)

var (
	filterExpr       string
	filterJsonOutput bool
	filterOutPath    string
	filterAll        bool
)

var filterCmd = &cobra.Command{
	Use:   "filter -e EXPRESSION [files...]",
	Short: "Evaluate a filter expression against JSON event records",
	Run: func(cmd *cobra.Command, args []string) {
		if filterExpr == "" {
			fmt.Println("error: Please provide a filter expression with -e")
			os.Exit(1)
		}
		if len(args) == 0 {
			fmt.Println("error: Please provide record files")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := sieve.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		f, err := engine.Compile(filterExpr)
		if err != nil {
			logger.Fatal("Failed to compile filter", zap.Error(err))
		}

		runFilterProcess(ctx, logger, engine, f, args, filterJsonOutput, filterOutPath)
	},
}

func init() {
	filterCmd.Flags().StringVarP(&filterExpr, "expression", "e", "", "Filter expression")
	filterCmd.Flags().BoolVar(&filterJsonOutput, "json", false, "Output matches in JSON format")
	filterCmd.Flags().StringVarP(&filterOutPath, "output", "o", "", "Output path (when using JSON)")
	filterCmd.Flags().BoolVarP(&filterAll, "all", "a", false, "Show non-matching records too")
}

func runFilterProcess(ctx context.Context, logger *zap.Logger, engine *sieve.Engine, f *sieve.Filter, paths []string, isJson bool, jsonOutput string) {
	var allMatches []types.Match
	for _, path := range paths {
		records, err := sieve.LoadRecords(path)
		if err != nil {
			logger.Error("Error loading records", zap.String("file", path), zap.Error(err))
			os.Exit(1)
		}

		matches, err := sieve.ProcessRecords(ctx, logger, engine, f, records, !isJson)
		if err != nil {
			logger.Error("Error processing records", zap.String("file", path), zap.Error(err))
			os.Exit(1)
		}
		for i := range matches {
			matches[i].File = path
		}
		allMatches = append(allMatches, matches...)
	}

	printMatches(logger, allMatches, isJson, jsonOutput)

	for _, m := range allMatches {
		if m.Matched {
			return
		}
	}
	// grep-like: nothing matched
	os.Exit(1)
}

func printMatches(logger *zap.Logger, matches []types.Match, isJson bool, jsonOutput string) {
	if !isJson {
		fmt.Print(formatter.Format(matches, !filterAll))
		return
	}

	d, err := formatter.FormatJSON(matches)
	if err != nil {
		logger.Error("Error marshalling matches to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(d)
		return
	}
	if err := os.WriteFile(jsonOutput, []byte(d), 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
