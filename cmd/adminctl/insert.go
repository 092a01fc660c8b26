package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <file.json>",
	Short: "Create an instrument from a JSON request body",
	Long:  `insert reads a JSON object shaped like {"id","kind","symbol","currency","sector","rating","status","fields"} and POSTs it to the Admin HTTP API.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body, err := os.ReadFile(args[0])
		requireNoError(err)

		view, err := insertInstrument(body)
		requireNoError(err)

		fmt.Printf("inserted %s (%s)\n", view.ID, view.Kind)
	},
}
