package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every default view to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analytics(cmd)
			if err != nil {
				return err
			}

			snap, err := a.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			sheets := export.SnapshotSheets(snap)
			if err := export.SaveWorkbook(path, sheets); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sheets)\n", path, len(sheets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "out", "o", "report.xlsx", "Workbook path")
	return cmd
}

type chartFlags struct {
	path    string
	country string
	year    int
}

func newChartCmd(opts *rootOptions) *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "chart <view>",
		Short: "Render one view as a PNG chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			a, err := opts.analytics(cmd)
			if err != nil {
				return err
			}

			var render func(io.Writer) error
			switch view {
			case aggregate.ViewSeasonality:
				d := a.Defaults()
				s := a.Seasonality(d.TopCountries, d.SeasonalityFrom, d.SeasonalityTo)
				render = func(w io.Writer) error { return charts.RenderSeasonality(w, s) }
			case aggregate.ViewCountrySeasonality, aggregate.ViewVolumeByMonth:
				if flags.country == "" {
					return fmt.Errorf("%s needs --country", view)
				}
				country, err := a.SelectCountry(flags.country)
				if err != nil {
					return err
				}
				if view == aggregate.ViewVolumeByMonth {
					s := a.VolumeByMonth(flags.year, country)
					render = func(w io.Writer) error { return charts.RenderSeries(w, s) }
				} else {
					s := a.CountrySeasonality(country)
					render = func(w io.Writer) error { return charts.RenderSeasonality(w, s) }
				}
			default:
				s, ok := a.Series(view)
				if !ok {
					return fmt.Errorf("no chart for view %q", view)
				}
				render = func(w io.Writer) error { return charts.RenderSeries(w, s) }
			}

			path := flags.path
			if path == "" {
				path = view + ".png"
			}
			if err := saveFile(path, render); err != nil {
				return fmt.Errorf("chart %s: %w", view, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.path, "out", "o", "", "PNG path (default <view>.png)")
	cmd.Flags().StringVarP(&flags.country, "country", "c", "", "Country name or 1-based index")
	cmd.Flags().IntVar(&flags.year, "year", opts.cfg.Reports.VolumeYear, "Year for volume_by_month")
	return cmd
}

// saveFile removes the partial file when render fails.
func saveFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
