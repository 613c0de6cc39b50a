package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"quantlab/cmd"
	"quantlab/internal/domain"
	"quantlab/internal/logger"
	"quantlab/internal/service"
	"quantlab/internal/util"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	_ "github.com/lib/pq"
)

var rootCmd = &cobra.Command{
	Use:   "quantlab",
	Short: "quantlab backtesting toolbox",
}

var (
	backtestDefinitionPath string
	backtestStart          string
	backtestEnd            string
	backtestCapital        float64
	backtestSkipPersist    bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest from a strategy definition file",
	RunE:  runBacktest,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load market data into the store",
}

var (
	ingestTickers []string
	ingestStart   string
	ingestEnd     string
	ingestFile    string
	ingestDate    string
)

var ingestBarsCmd = &cobra.Command{
	Use:   "bars",
	Short: "Fetch daily bars and derive indicator columns",
	RunE:  runIngestBars,
}

var ingestFinancialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Load quarterly statement line items from CSV",
	RunE:  runIngestFinancials,
}

var ingestSecuritiesCmd = &cobra.Command{
	Use:   "securities",
	Short: "Load the ticker master from CSV",
	RunE:  runIngestSecurities,
}

var ingestFundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "Derive daily valuation ratios for a date",
	RunE:  runIngestFundamentals,
}

var (
	workloadName        string
	workloadDescription string
	workloadCount       int
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Generate a synthetic query workload",
	RunE:  runWorkload,
}

var (
	scheduleSpec     string
	scheduleLookback int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run bar ingest on a cron schedule",
	RunE:  runSchedule,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestDefinitionPath, "definition", "", "path to a strategy definition JSON file")
	backtestCmd.Flags().StringVar(&backtestStart, "start", "", "backtest start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestEnd, "end", "", "backtest end date (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 1_000_000, "initial capital")
	backtestCmd.Flags().BoolVar(&backtestSkipPersist, "skip-persist", false, "do not store the result")
	rootCmd.AddCommand(backtestCmd)

	ingestBarsCmd.Flags().StringSliceVar(&ingestTickers, "tickers", nil, "tickers to ingest, defaults to every known security")
	ingestBarsCmd.Flags().StringVar(&ingestStart, "start", "", "first bar date (YYYY-MM-DD)")
	ingestFinancialsCmd.Flags().StringVar(&ingestFile, "file", "", "CSV file of statement line items")
	ingestSecuritiesCmd.Flags().StringVar(&ingestFile, "file", "", "CSV file of the ticker master")
	ingestFundamentalsCmd.Flags().StringVar(&ingestDate, "date", "", "event date (YYYY-MM-DD), defaults to today")
	ingestFundamentalsCmd.Flags().StringVar(&ingestStart, "start", "", "backfill start date (YYYY-MM-DD)")
	ingestFundamentalsCmd.Flags().StringVar(&ingestEnd, "end", "", "backfill end date (YYYY-MM-DD)")
	ingestCmd.AddCommand(ingestBarsCmd)
	ingestCmd.AddCommand(ingestFinancialsCmd)
	ingestCmd.AddCommand(ingestSecuritiesCmd)
	ingestCmd.AddCommand(ingestFundamentalsCmd)
	rootCmd.AddCommand(ingestCmd)

	workloadCmd.Flags().StringVar(&workloadName, "name", "", "workload name")
	workloadCmd.Flags().StringVar(&workloadDescription, "description", "", "workload description")
	workloadCmd.Flags().IntVar(&workloadCount, "count", 100, "number of strategies to draw")
	rootCmd.AddCommand(workloadCmd)

	// weekday evenings, after the KRX close settles
	scheduleCmd.Flags().StringVar(&scheduleSpec, "spec", "0 19 * * 1-5", "cron spec, evaluated in Asia/Seoul")
	scheduleCmd.Flags().IntVar(&scheduleLookback, "lookback-days", 7, "how many days of bars to refresh")
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newToolContext() context.Context {
	profile, _ := domain.NewProfile()
	ctx := context.WithValue(context.Background(), domain.ContextProfileKey, profile)
	return logger.ToContext(ctx, logger.New())
}

func parseDateFlag(name string, value string) (time.Time, error) {
	d, err := util.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse --%s: %w", name, err)
	}
	return d, nil
}

func runBacktest(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	raw, err := os.ReadFile(backtestDefinitionPath)
	if err != nil {
		return fmt.Errorf("could not read definition file: %w", err)
	}
	definition := map[string]any{}
	if err := json.Unmarshal(raw, &definition); err != nil {
		return fmt.Errorf("could not parse definition file: %w", err)
	}

	start, err := parseDateFlag("start", backtestStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("end", backtestEnd)
	if err != nil {
		return err
	}

	result, err := handler.BacktestService.Run(newToolContext(), service.RunBacktestInput{
		StrategyID:     uuid.New(),
		Definition:     definition,
		Start:          start,
		End:            end,
		InitialCapital: decimal.NewFromFloat(backtestCapital),
		SkipPersist:    backtestSkipPersist,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"backtestId":  result.BacktestID,
		"equityCurve": result.EquityCurve,
		"metrics":     result.Metrics,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runIngestBars(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	start, err := parseDateFlag("start", ingestStart)
	if err != nil {
		return err
	}

	return handler.IngestService.IngestDailyBars(newToolContext(), ingestTickers, start)
}

func runIngestFinancials(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	f, err := os.Open(ingestFile)
	if err != nil {
		return fmt.Errorf("could not open --file: %w", err)
	}
	defer f.Close()

	count, err := handler.IngestService.IngestFinancialsCSV(newToolContext(), f)
	if err != nil {
		return err
	}
	fmt.Printf("ingested %d statement rows\n", count)
	return nil
}

func runIngestSecurities(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	f, err := os.Open(ingestFile)
	if err != nil {
		return fmt.Errorf("could not open --file: %w", err)
	}
	defer f.Close()

	count, err := handler.IngestService.IngestSecuritiesCSV(newToolContext(), f)
	if err != nil {
		return err
	}
	fmt.Printf("ingested %d securities\n", count)
	return nil
}

func runIngestFundamentals(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	if ingestStart != "" || ingestEnd != "" {
		start, err := parseDateFlag("start", ingestStart)
		if err != nil {
			return err
		}
		end, err := parseDateFlag("end", ingestEnd)
		if err != nil {
			return err
		}
		count, err := handler.IngestService.IngestFundamentalsRange(newToolContext(), start, end)
		if err != nil {
			return err
		}
		fmt.Printf("derived fundamentals for %d ticker-days\n", count)
		return nil
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if ingestDate != "" {
		date, err = parseDateFlag("date", ingestDate)
		if err != nil {
			return err
		}
	}

	count, err := handler.IngestService.IngestFundamentals(newToolContext(), date)
	if err != nil {
		return err
	}
	fmt.Printf("derived fundamentals for %d tickers\n", count)
	return nil
}

func runWorkload(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	workload, err := handler.WorkloadService.Generate(newToolContext(), workloadName, workloadDescription, workloadCount)
	if err != nil {
		return err
	}
	fmt.Printf("stored workload %s (%s)\n", workload.WorkloadID, workload.WorkloadName)
	return nil
}

func runSchedule(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return fmt.Errorf("could not load KST: %w", err)
	}

	scheduler := cron.New(cron.WithLocation(loc))
	_, err = scheduler.AddFunc(scheduleSpec, func() {
		ctx := newToolContext()
		start := time.Now().UTC().AddDate(0, 0, -scheduleLookback)
		if err := handler.IngestService.IngestDailyBars(ctx, nil, start); err != nil {
			logger.Error(fmt.Errorf("scheduled ingest failed: %w", err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ingest: %w", err)
	}

	scheduler.Start()
	logger.Info("bar ingest scheduled with spec %q", scheduleSpec)
	select {}
}
