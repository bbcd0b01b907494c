package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"contribot/internal/backend"
	"contribot/internal/cli"
	"contribot/internal/config"
	"contribot/internal/core"
	"contribot/internal/export"
	"contribot/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var run func(ctx context.Context, store backend.Store, args []string) error
	switch os.Args[1] {
	case "summary":
		run = runSummary
	case "user":
		run = runUser
	case "export":
		run = runExport
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	result, err := backend.NewFactory(logger.Logger).Create(cfg)
	if err != nil {
		logger.Error("Failed to open record store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	runErr := run(ctx, result.Store, os.Args[2:])
	cancel()

	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close record store", "error", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Contribution report CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  contribot-report <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary   Print per-category totals for one month")
	fmt.Println("  user      List the contributions of one user")
	fmt.Println("  export    Write every contribution to an .xlsx file")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'contribot-report <command> -h' for more information on a command.")
}

func runSummary(ctx context.Context, store backend.Store, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	now := time.Now()
	year := fs.Int("year", now.Year(), "contribution year")
	monthName := fs.String("month", now.Month().String(), "month name, e.g. March")
	fs.Parse(args)

	month, ok := core.ParseMonth(*monthName)
	if !ok {
		return fmt.Errorf("unknown month %q", *monthName)
	}

	summary, err := store.MonthlySummary(ctx, *year, month)
	if err != nil {
		return fmt.Errorf("monthly summary: %w", err)
	}
	return printSummary(os.Stdout, summary)
}

func printSummary(out io.Writer, s core.MonthlySummary) error {
	fmt.Fprintf(out, "Contributions for %s %d\n\n", s.Month, s.Year)
	if len(s.ByCategory) == 0 {
		fmt.Fprintln(out, "No contributions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tTOTAL")
	for _, ct := range s.ByCategory {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", ct.Category, ct.Count, ct.Total.StringFixed(2))
	}
	return tw.Flush()
}

func runUser(ctx context.Context, store backend.Store, args []string) error {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	userID := fs.Int64("id", 0, "Telegram user id")
	fs.Parse(args)

	if *userID == 0 {
		return errors.New("--id is required")
	}

	records, err := store.ByUser(ctx, *userID)
	if err != nil {
		return fmt.Errorf("list contributions: %w", err)
	}
	return printRecords(os.Stdout, records)
}

func printRecords(out io.Writer, records []core.Contribution) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No contributions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tYEAR\tMONTH\tCATEGORY\tMEMBER\tAMOUNT\tPROOF\tRECORDED AT")
	for _, c := range records {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Year, c.Month, c.Category, c.Member(), c.Amount.String(), c.ProofPath,
			c.RecordedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func runExport(ctx context.Context, store backend.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", "", "output .xlsx path (default: timestamped file in the current directory)")
	fs.Parse(args)

	path := *output
	if path == "" {
		path = fmt.Sprintf("contributions_export_%s.xlsx", time.Now().Format("20060102_150405"))
	}

	n, err := export.New(store, nil, ".").WriteFile(ctx, path)
	if errors.Is(err, core.ErrNothingToExport) {
		fmt.Println("No contributions to export.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d contributions to %s\n", n, path)
	return nil
}
