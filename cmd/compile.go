package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sievelabs/sieve"
)

// compileCmd: sieve compile -e 'EXPR'
// Prints the type-specialized rule tree, which is useful for checking
// how field schema coercion and constant folding rewrite a filter.
var compileCmd = &cobra.Command{
	Use:   "compile -e EXPRESSION",
	Short: "Show the compiled form of a filter expression",
	Run: func(cmd *cobra.Command, args []string) {
		if filterExpr == "" && len(args) == 1 {
			filterExpr = args[0]
		}
		if filterExpr == "" {
			fmt.Println("error: Please provide a filter expression with -e")
			os.Exit(1)
		}

		engine, err := sieve.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		f, err := engine.Compile(filterExpr)
		if err != nil {
			logger.Fatal("Failed to compile filter", zap.Error(err))
		}
		fmt.Println(f.Tree.String())
	},
}

func init() {
	compileCmd.Flags().StringVarP(&filterExpr, "expression", "e", "", "Filter expression")
}
