package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/selection"
)

func newSeasonalityCmd(opts *rootOptions) *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "seasonality",
		Short: "Show monthly order volume for one country",
		Long: "Show monthly order volume for one country, aggregated across years.\n" +
			"Without --country the available countries are listed and one is read from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analytics(cmd)
			if err != nil {
				return err
			}

			var chosen string
			if country == "" {
				chosen, err = selection.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), a.Countries())
			} else {
				chosen, err = a.SelectCountry(country)
			}
			if err != nil {
				return fmt.Errorf("selection rejected: %w", err)
			}

			out := cmd.OutOrStdout()
			s := a.CountrySeasonality(chosen)
			if s.Empty() {
				fmt.Fprintf(out, "No sales recorded for %s.\n", chosen)
				return nil
			}
			fmt.Fprintf(out, "%s: %s orders\n", chosen, formatValue(s.Countries[0].Total))
			writeSeasonality(out, s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "Country name or 1-based index; prompts when empty")
	return cmd
}
