package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/cleaning"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	cfg      *config.Config
	file     string
	pipeline string
	logLevel string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:          "salesctl",
		Short:        "Clean, summarise and export the bike sales dataset",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", cfg.Dataset.File, "Sales dataset (CSV or XLSX)")
	cmd.PersistentFlags().StringVar(&opts.pipeline, "pipeline", cfg.Dataset.Pipeline, "Cleaning pipeline: standard or safe")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(
		newReportCmd(opts),
		newSeasonalityCmd(opts),
		newSplitCmd(opts),
		newExportCmd(opts),
		newChartCmd(opts),
	)
	return cmd
}

// analytics loads and cleans the dataset named by --file.
func (o *rootOptions) analytics(cmd *cobra.Command) (*services.Analytics, error) {
	pipeline, err := cleaning.ParsePipeline(o.pipeline)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), config.LoggerConfig{Level: o.logLevel, Format: "text"})
	opts := []services.Option{
		services.WithLogger(logger),
		services.WithPipeline(pipeline),
		services.WithReportDefaults(services.ReportDefaults{
			TopProducts:     o.cfg.Reports.TopProducts,
			TopCountries:    o.cfg.Reports.TopCountries,
			SeasonalityFrom: o.cfg.Reports.SeasonalityFrom,
			SeasonalityTo:   o.cfg.Reports.SeasonalityTo,
			VolumeYear:      o.cfg.Reports.VolumeYear,
		}),
	}
	if o.cfg.Dataset.CacheEnabled {
		opts = append(opts, services.WithCache(o.cfg.Dataset.CacheDir))
	}
	a := services.NewAnalytics(opts...)

	ctx, cancel := context.WithTimeout(cmd.Context(), o.cfg.Dataset.LoadTimeout)
	defer cancel()
	if err := a.LoadFromFile(ctx, o.file); err != nil {
		return nil, fmt.Errorf("load %s: %w", o.file, err)
	}
	return a, nil
}
