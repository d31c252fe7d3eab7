// Command rentledger-dashboard opens the configured ledger store, optionally
// seeds sample data, and prints the dashboard KPIs or a yearly report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"rentledger/internal/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rentledger-dashboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Bool("seed", false, "seed sample properties when the ledger is empty")
	year := fs.String("year", "", "print the yearly report for YYYY instead of the dashboard")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	store, err := core.OpenPersistentStore()
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	svc := core.NewService(store, core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("rentledger_dashboard")))

	if *seed {
		if err := svc.InitializeSampleData(ctx); err != nil {
			fmt.Fprintf(stderr, "seed sample data: %v\n", err)
			return 1
		}
	}

	var payload any
	if *year != "" {
		if _, err := strconv.Atoi(*year); err != nil || len(*year) != 4 {
			fmt.Fprintf(stderr, "invalid year %q\n", *year)
			return 2
		}
		report, err := svc.AnnualReport(ctx, *year)
		if err != nil {
			fmt.Fprintf(stderr, "generate report: %v\n", err)
			return 1
		}
		payload = report
	} else {
		stats, err := svc.Dashboard(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "compute dashboard: %v\n", err)
			return 1
		}
		payload = struct {
			GeneratedAt time.Time           `json:"generated_at"`
			Stats       core.DashboardStats `json:"stats"`
		}{GeneratedAt: time.Now().UTC(), Stats: stats}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		fmt.Fprintf(stderr, "encode output: %v\n", err)
		return 1
	}
	return 0
}
