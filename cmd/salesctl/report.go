package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/models"
)

var reportViews = []string{
	aggregate.ViewRevenueByYear,
	aggregate.ViewRevenueByMonth,
	aggregate.ViewRevenueByCountry,
	aggregate.ViewRevenueByGender,
	aggregate.ViewRevenueByCountryGender,
	aggregate.ViewVolumeByMonth,
	aggregate.ViewSeasonality,
	aggregate.ViewTopProducts,
	aggregate.ViewCategoryVolume,
	"quality",
}

type reportFlags struct {
	n       int
	year    int
	country string
	top     int
	from    int
	to      int
	json    bool
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var flags reportFlags
	reports := opts.cfg.Reports

	cmd := &cobra.Command{
		Use:       "report <view>",
		Short:     "Print one report view as a table",
		Long:      "Print one report view as a table. Views: " + strings.Join(reportViews, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: reportViews,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, flags, args[0])
		},
	}

	cmd.Flags().IntVarP(&flags.n, "limit", "n", reports.TopProducts, "Number of products for top_products")
	cmd.Flags().IntVar(&flags.year, "year", reports.VolumeYear, "Year for volume_by_month")
	cmd.Flags().StringVarP(&flags.country, "country", "c", "", "Country name or 1-based index for volume_by_month")
	cmd.Flags().IntVar(&flags.top, "top", reports.TopCountries, "Number of countries for seasonality")
	cmd.Flags().IntVar(&flags.from, "from", reports.SeasonalityFrom, "First year of the seasonality period")
	cmd.Flags().IntVar(&flags.to, "to", reports.SeasonalityTo, "Last year of the seasonality period")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Write JSON instead of a table")
	return cmd
}

func runReport(cmd *cobra.Command, opts *rootOptions, flags reportFlags, view string) error {
	if !slices.Contains(reportViews, view) {
		return fmt.Errorf("unknown view %q, must be one of: %s", view, strings.Join(reportViews, ", "))
	}

	if err := flags.check(view); err != nil {
		return err
	}

	a, err := opts.analytics(cmd)
	if err != nil {
		return err
	}

	var (
		result models.Result
		render func()
		out    = cmd.OutOrStdout()
	)

	switch view {
	case aggregate.ViewRevenueByCountryGender:
		p := a.RevenueByCountryGender()
		result, render = p, func() { writePivot(out, p) }
	case aggregate.ViewVolumeByMonth:
		if flags.country == "" {
			return fmt.Errorf("%s needs --country", view)
		}
		country, err := a.SelectCountry(flags.country)
		if err != nil {
			return err
		}
		s := a.VolumeByMonth(flags.year, country)
		result, render = s, func() { writeSeries(out, s) }
	case aggregate.ViewSeasonality:
		s := a.Seasonality(flags.top, flags.from, flags.to)
		result, render = s, func() { writeSeasonality(out, s) }
	case aggregate.ViewTopProducts:
		s := a.TopProducts(flags.n)
		result, render = s, func() { writeSeries(out, s) }
	case aggregate.ViewCategoryVolume:
		c := a.CategoryVolume()
		result, render = c, func() { writeCategories(out, c) }
	case "quality":
		q := a.Quality()
		if flags.json {
			return writeJSON(cmd, q)
		}
		writeQuality(out, q)
		return nil
	default:
		s, _ := a.Series(view)
		result, render = s, func() { writeSeries(out, s) }
	}

	if flags.json {
		return writeJSON(cmd, result)
	}
	if result.Empty() {
		fmt.Fprintf(out, "No data for %s.\n", view)
		return nil
	}
	render()
	return nil
}

// check rejects flag values the view cannot use. A zero year leaves that end
// of the seasonality period open.
func (f reportFlags) check(view string) error {
	switch view {
	case aggregate.ViewTopProducts:
		if f.n < 1 {
			return fmt.Errorf("--limit must be at least 1, got %d", f.n)
		}
	case aggregate.ViewSeasonality:
		if f.top < 1 {
			return fmt.Errorf("--top must be at least 1, got %d", f.top)
		}
		if f.from != 0 && f.to != 0 && f.to < f.from {
			return fmt.Errorf("seasonality period %d-%d is inverted", f.from, f.to)
		}
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
