package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [groups...]",
	Short: "Pre-compile asset bundle groups",
	Long: `Compile script and stylesheet bundles for the given groups and store
them in content-addressed storage, so serving processes find every bundle
already materialized.

Examples:
  assetctl compile site              # Compile the "site" group
  assetctl compile site admin        # Compile several groups
  assetctl compile "*.js"            # Glob over the static catalog`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().Duration("timeout", 10*time.Minute, "overall compile timeout")
}

func runCompile(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	p, err := setupPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	start := time.Now()
	if err := p.Compiler.CompileAll(ctx, args); err != nil {
		return err
	}

	fmt.Printf("Compiled %d group(s) in %s\n", len(args), time.Since(start).Round(time.Millisecond))
	return nil
}
