package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bondstream/internal/adminapi"
)

var (
	listKind     string
	listCurrency string
	listStatus   string
	listRating   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List instruments, optionally filtered by one field",
	Run: func(cmd *cobra.Command, args []string) {
		key, value := "", ""
		switch {
		case listKind != "":
			key, value = "kind", listKind
		case listCurrency != "":
			key, value = "currency", listCurrency
		case listStatus != "":
			key, value = "status", listStatus
		case listRating != "":
			key, value = "rating", listRating
		}

		views, err := listInstruments(key, value)
		requireNoError(err)
		printInstrumentTable(views)
	},
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by instrument kind (Bond, Swap, Future, Option)")
	listCmd.Flags().StringVar(&listCurrency, "currency", "", "Filter by currency")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&listRating, "rating", "", "Filter by credit rating")
}

func printInstrumentTable(views []adminapi.InstrumentView) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSYMBOL\tCCY\tSTATUS\tPRICE")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Kind, v.Symbol, v.Currency, v.Status, formatPrice(v.Fields))
	}
	tw.Flush()
}

// formatPrice picks the most relevant price-like field for a one-line
// table view, favoring mid-price over a raw premium or rate.
func formatPrice(fields map[string]any) string {
	for _, key := range []string{"price", "premium", "swapRate"} {
		if v, ok := fields[key]; ok {
			if f, ok := v.(float64); ok {
				return humanize.Commaf(f)
			}
		}
	}
	return "-"
}
