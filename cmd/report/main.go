package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/report"
	"sales-dashboard/internal/services"
)

const reportTitle = "Sales Analytics Pro"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

type options struct {
	csv      string
	format   string
	xlsx     string
	logLevel string
	filters  models.FilterRequest
}

// dimensionFlag collects a comma separated value list for one dimension.
// Setting the flag at all, even to "", narrows that dimension.
type dimensionFlag struct {
	req *models.FilterRequest
	dim models.Dimension
}

func (f dimensionFlag) String() string {
	if f.req == nil {
		return ""
	}
	return strings.Join(f.req.Values(f.dim), ",")
}

func (f dimensionFlag) Set(s string) error {
	values := f.req.Values(f.dim)
	if values == nil {
		values = []string{}
	}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	f.req.Set(f.dim, values)
	return nil
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.csv, "csv", "ventas_data.csv", "Path to the sales CSV")
	fs.StringVar(&opts.format, "format", string(report.FormatText), "Output format: text, markdown")
	fs.StringVar(&opts.xlsx, "xlsx", "", "Also write the filtered rows to this XLSX file")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	for _, d := range models.FilterDimensions {
		fs.Var(dimensionFlag{req: &opts.filters, dim: d}, string(d), "Comma-separated "+string(d)+" values (default all)")
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	logger := observability.NewLoggerTo(stderr, config.LoggerConfig{Level: opts.logLevel, Format: "text"})

	analytics := services.NewAnalytics(
		dataset.NewStore(opts.csv, dataset.WithLogger(logger)),
		services.WithLogger(logger),
	)

	d, err := analytics.Dashboard(ctx, opts.filters)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.csv, err)
	}

	if err := report.Write(stdout, reportTitle, d, format); err != nil {
		return err
	}

	if opts.xlsx != "" {
		return writeWorkbook(ctx, analytics, opts, d.KPIs)
	}
	return nil
}

func writeWorkbook(ctx context.Context, analytics *services.Analytics, opts options, kpis models.KPISet) error {
	table, _, err := analytics.Filtered(ctx, opts.filters)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.xlsx)
	if err != nil {
		return err
	}
	if err := export.Write(f, table.Rows(), kpis); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", opts.xlsx, err)
	}
	return f.Close()
}
