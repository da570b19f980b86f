package main

import (
	"fmt"
	"io"
	"os"

	"github.com/example/statement-consolidator/internal/bank"
	"github.com/example/statement-consolidator/internal/config"
	"github.com/example/statement-consolidator/internal/consolidate"
	"github.com/example/statement-consolidator/internal/export"
	"github.com/example/statement-consolidator/internal/loader"
	"github.com/example/statement-consolidator/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputPath string
	format     string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "statement-consolidator",
	Short: "Consolidate bank statement exports into a single ledger",
	Long: `Statement Consolidator reads yearly statement exports from several banks,
checks that every account has continuous coverage, and merges them into one
chronological ledger with a running balance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <dir>",
	Short: "Consolidate every statement in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runConsolidate,
}

var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Check file names, bank codes and year coverage without loading",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List supported bank codes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, b := range bank.DefaultRegistry().All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Code, b.Name)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
	consolidateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	consolidateCmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv or xlsx; overrides config")

	rootCmd.AddCommand(consolidateCmd, validateCmd, banksCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default()
	}
	return config.LoadConfig(configPath)
}

func newPipeline(cmd *cobra.Command) (*consolidate.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.New(cfg.LogLevel)
	cmd.SetContext(logger.WithContext(cmd.Context(), log))

	return &consolidate.Pipeline{
		Loader:         loader.New(loader.Options{MinColumns: cfg.MinColumns, Workers: cfg.Workers}, log),
		Registry:       bank.DefaultRegistry(),
		AccountHolders: cfg.AccountHolders,
	}, cfg, nil
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	pipeline, cfg, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	name := cfg.OutputFormat
	if format != "" {
		name = format
	}
	outFormat, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	ledger, report, err := pipeline.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, skipped := range report.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", skipped.File)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, ledger, outFormat); err != nil {
		return err
	}

	if outputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d transactions (%d accounts) to %s\n", ledger.Total, len(ledger.Accounts()), outputPath)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	pipeline, _, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	files, err := pipeline.Validate(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d statement files OK\n", len(files))
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f.Name)
	}
	return nil
}
