package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/exporter"
	"github.com/nonsonwune/nestrank/importer"
	"github.com/nonsonwune/nestrank/merit"
	"github.com/nonsonwune/nestrank/models"
	"github.com/nonsonwune/nestrank/report"
	"github.com/nonsonwune/nestrank/store"
)

var (
	configPath string
	inputPath  string
	outputPath string
	format     string
	saveToDB   bool
	runLabel   string
)

var rootCmd = &cobra.Command{
	Use:           "nestrank",
	Short:         "NEST merit ranking engine",
	Long:          `Computes percentiles, subject minimum admissible scores and the five NEST rank lists from a candidate results sheet.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Rank a candidate sheet and write the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runProcess(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the summary of the snapshot stored in the results database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runReport(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

var smasCmd = &cobra.Command{
	Use:   "smas",
	Short: "Print the subject minimum admissible scores for a candidate sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runSMAS(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "policy file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "candidate CSV file")

	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "results file")
	processCmd.Flags().StringVarP(&format, "format", "f", "", "results format (csv or json)")
	processCmd.Flags().BoolVar(&saveToDB, "db", false, "save the ranked snapshot to the results database")
	processCmd.Flags().StringVar(&runLabel, "label", "", "label stored with the snapshot")

	rootCmd.AddCommand(processCmd, reportCmd, smasCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig applies command-line overrides on top of config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath = inputPath
	}
	if flags.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(format)
	}
	if flags.Changed("db") {
		cfg.SaveSnapshot = saveToDB
	}
	if flags.Changed("label") {
		cfg.Label = runLabel
	}
	return cfg, cfg.Validate()
}

func importCandidates(ctx context.Context, cfg *config.Config) (*importer.Table, error) {
	ci := importer.NewCandidateImporter(importer.ImportConfig{
		SourceFile:    cfg.InputPath,
		Subjects:      cfg.Policy.Subjects,
		ClampNegative: cfg.Policy.ClampNegative,
	})

	log.Printf("Loading candidates from %s", cfg.InputPath)
	table, err := ci.ImportFile(ctx, "")
	if err != nil {
		return nil, err
	}
	ci.Stats().PrintSummary()
	return table, nil
}

func runProcess(ctx context.Context, cfg *config.Config, out io.Writer) error {
	start := time.Now()

	table, err := importCandidates(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := merit.NewPipeline(cfg.Policy).Run(ctx, table.Candidates)
	if err != nil {
		return err
	}
	report.RenderSMAS(out, cfg.Policy.Subjects, result.SMAS)

	exp := exporter.NewExporter(cfg.Policy.PercentileDecimal)
	if err := exp.ExportFile(cfg.OutputPath, cfg.Format, table, result.Candidates); err != nil {
		return err
	}

	report.RenderSummary(out, report.Summarize(result.Candidates))

	if cfg.SaveSnapshot {
		if err := saveSnapshot(ctx, cfg, result); err != nil {
			return err
		}
	}

	color.New(color.FgGreen).Fprintf(out, "\nRanking completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func saveSnapshot(ctx context.Context, cfg *config.Config, result *merit.Result) error {
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SaveSnapshot(ctx, models.Snapshot{
		Label:      cfg.Label,
		CreatedAt:  time.Now(),
		Subjects:   cfg.Policy.Subjects,
		SMAS:       result.SMAS,
		Candidates: result.Candidates,
	})
}

func runReport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.LoadSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		color.New(color.FgYellow).Fprintln(out, "No ranking snapshot has been saved yet. Run `nestrank process --db` first.")
		return nil
	}
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(out, "\nSnapshot %q saved %s\n", snap.Label, snap.CreatedAt.Format(time.RFC3339))
	report.RenderSMAS(out, snap.Subjects, snap.SMAS)
	report.RenderSummary(out, report.Summarize(snap.Candidates))
	return nil
}

func runSMAS(ctx context.Context, cfg *config.Config, out io.Writer) error {
	table, err := importCandidates(ctx, cfg)
	if err != nil {
		return err
	}

	rescaled := merit.NewRescaler(cfg.Policy).Apply(table.Candidates)
	report.RenderSMAS(out, cfg.Policy.Subjects, merit.CalculateSMAS(rescaled, cfg.Policy))
	fmt.Fprintf(out, "Computed from %d candidates\n", len(table.Candidates))
	return nil
}
