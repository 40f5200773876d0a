package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/export"
)

type splitFlags struct {
	dir    string
	bom    bool
	sqlite string
}

func newSplitCmd(opts *rootOptions) *cobra.Command {
	var flags splitFlags

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Write cleaned rows as separate bikes and accessories tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.analytics(cmd)
			if err != nil {
				return err
			}

			parts := export.Split(a.Table())
			paths, err := export.SaveSplitCSV(flags.dir, parts, flags.bom)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "Table", "Rows", "Destination")
			table.Append([]string{export.TableBikes, strconv.Itoa(len(parts.Bikes)), paths[0]})
			table.Append([]string{export.TableAccessories, strconv.Itoa(len(parts.Accessories)), paths[1]})

			if flags.sqlite != "" {
				if err := export.SaveSplitSQLite(cmd.Context(), flags.sqlite, parts); err != nil {
					return err
				}
				table.SetCaption(true, "sqlite: "+flags.sqlite)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.dir, "out", "o", "split", "Directory for bikes.csv and accessories.csv")
	cmd.Flags().BoolVar(&flags.bom, "bom", false, "Prefix CSV files with a UTF-8 byte order mark")
	cmd.Flags().StringVar(&flags.sqlite, "sqlite", "", "Also write both tables to this SQLite database")
	return cmd
}
