package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one instrument",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		view, err := getInstrument(args[0])
		requireNoError(err)

		fmt.Printf("id:         %s\n", view.ID)
		fmt.Printf("kind:       %s\n", view.Kind)
		fmt.Printf("symbol:     %s\n", view.Symbol)
		fmt.Printf("currency:   %s\n", view.Currency)
		fmt.Printf("sector:     %s\n", view.Sector)
		fmt.Printf("rating:     %s\n", view.Rating)
		fmt.Printf("status:     %s\n", view.Status)
		fmt.Printf("lastUpdate: %s\n", humanize.Time(timeFromEpochMs(view.LastUpdate)))

		keys := make([]string, 0, len(view.Fields))
		for k := range view.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-18s %v\n", k, view.Fields[k])
		}
	},
}
