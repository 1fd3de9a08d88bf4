package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/advisor/config"
	"github.com/rustyeddy/advisor/journal"
	"github.com/rustyeddy/advisor/ledger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/marketdata"
	"github.com/rustyeddy/advisor/metrics"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/trader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the advisor loop from a config file",
	Long: `Run the paper-trading decision loop using settings from a
configuration file. Each cycle fetches candles, computes signals, asks
the oracle for a verdict and settles any resulting paper order.

Example:
  advisor run -f advisor.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runMetricsAddr string
	runVerbose     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "debug logging")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := zerolog.InfoLevel
	if runVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	outcomes, summarizer, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer outcomes.Close()

	data, err := buildData(cfg)
	if err != nil {
		return fmt.Errorf("create data source: %w", err)
	}

	if runMetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(runMetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
		log.Info().Str("addr", runMetricsAddr).Msg("serving metrics")
	}

	opts := []trader.Option{
		trader.WithLogger(log),
	}
	if cfg.Trading.Period != "" {
		opts = append(opts, trader.WithPeriod(cfg.Trading.Period))
	}
	if cfg.Trading.RiskFactor != 0 {
		opts = append(opts, trader.WithRiskFactor(cfg.Trading.RiskFactor))
	}

	book := ledger.New(cfg.Account.Balance)
	at := trader.New(book, oracle.Rule{}, data, outcomes, opts...)

	interval, _ := cfg.Trading.ParseInterval()

	log.Info().
		Str("account", cfg.Account.ID).
		Str("symbol", cfg.Trading.Symbol).
		Int("cycles", cfg.Trading.Cycles).
		Float64("balance", cfg.Account.Balance).
		Msg("starting advisor")

	ctx := context.Background()
	var lastPrice float64
	for i := 0; i < cfg.Trading.Cycles; i++ {
		res := at.RunCycle(ctx, cfg.Trading.Symbol)
		if res.Err != "" {
			metrics.IncCycleError()
		} else {
			metrics.IncCycle(res.Action)
			if res.Action != "NONE" {
				metrics.IncOrder(res.Action)
			}
			lastPrice = res.Price
		}
		metrics.SetCash(book.Cash())
		metrics.SetRiskFactor(at.Risk().Factor)
		if lastPrice > 0 {
			metrics.SetPortfolioValue(book.PortfolioValue(market.Prices{cfg.Trading.Symbol: lastPrice}))
		}

		if interval > 0 && i < cfg.Trading.Cycles-1 {
			time.Sleep(interval)
		}
	}

	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Cash: $%.2f\n", book.Cash())
	if lastPrice > 0 {
		prices := market.Prices{cfg.Trading.Symbol: lastPrice}
		fmt.Printf("  Portfolio Value: $%.2f\n", book.PortfolioValue(prices))
		fmt.Printf("  Profit/Loss: $%.2f\n", book.ProfitLoss(prices))
	}

	if summarizer != nil {
		sum, err := summarizer.Summarize()
		if err != nil {
			return fmt.Errorf("summarize outcomes: %w", err)
		}
		fmt.Printf("  Outcomes: %d (wins %d, losses %d, avg $%.2f)\n",
			sum.Total, sum.Wins, sum.Losses, sum.AvgResult)
	}

	return nil
}

func buildJournal(cfg *config.Config) (journal.Journal, journal.Summarizer, error) {
	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.OutcomesFile)
		if err != nil {
			return nil, nil, err
		}
		// CSV files aren't queryable; keep a summary in memory too.
		mem := journal.NewMemory()
		return journal.Tee{j, mem}, mem, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return j, j, nil
	default:
		return journal.Nop{}, nil, nil
	}
}

func buildData(cfg *config.Config) (trader.MarketData, error) {
	switch cfg.Data.Source {
	case "csv":
		return marketdata.NewCSV(cfg.Data.Dir), nil
	case "walk":
		return marketdata.NewWalk(cfg.Data.Seed, cfg.Data.Start, cfg.Data.Bars, time.Hour), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}
