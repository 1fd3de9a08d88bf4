package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/advisor/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded trade outcomes",
	Long: `Query and display trade outcomes from the SQLite journal.

Subcommands:
  summary - Aggregate wins, losses and average result
  today   - List outcomes recorded today
  day     - List outcomes recorded on a specific day

Examples:
  advisor journal summary
  advisor journal today
  advisor journal day 2026-08-15`,
}

var journalSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate wins, losses and average result",
	Args:  cobra.NoArgs,
	RunE:  runJournalSummary,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List outcomes recorded today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List outcomes recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalSummaryCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./advisor.db", "path to SQLite journal DB")
}

func runJournalSummary(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	sum, err := j.Summarize()
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	fmt.Printf("Outcomes: %d\n", sum.Total)
	fmt.Printf("  Wins: %d\n", sum.Wins)
	fmt.Printf("  Losses: %d\n", sum.Losses)
	fmt.Printf("  Average Result: $%.2f\n", sum.AvgResult)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return listDay(time.Now().In(loc).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(args[0])
}

func listDay(day string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListOutcomesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query outcomes: %w", err)
	}

	if len(recs) == 0 {
		fmt.Printf("No outcomes on %s\n", day)
		return nil
	}
	for _, rec := range recs {
		fmt.Printf("%s  %-4s %-10s qty=%.4f price=%.2f result=%.2f\n",
			rec.Time.Format(time.RFC3339), rec.Action, rec.Symbol,
			rec.Quantity, rec.Price, rec.Result)
	}
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
