// adminctl is a command-line client for the bondstream Admin HTTP API and
// WebSocket transport.
//
// Subcommands:
//
//	list                 list instruments, optionally filtered
//	get <id>             show one instrument
//	insert <file.json>   create an instrument from a JSON request body
//	remove <id>          delete an instrument
//	watch <id...>        subscribe over the WS transport and print deltas as they arrive
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	adminAddr     string
	transportAddr string
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "adminctl administers a bondstream fan-out server",
	Long:  "adminctl administers a bondstream fan-out server over its Admin HTTP API and WebSocket transport",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&adminAddr, "admin-addr", "http://localhost:8090", "Admin HTTP API base URL")
	rootCmd.PersistentFlags().StringVar(&transportAddr, "ws-addr", "ws://localhost:8091/ws", "WebSocket transport URL")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
