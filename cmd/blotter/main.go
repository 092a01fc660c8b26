// blotter is a terminal dashboard that subscribes to every instrument on a
// bondstream fan-out server, with no predicate filter, and renders live
// price updates as a scrolling table.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-resty/resty/v2"

	"bondstream/internal/adminapi"
)

func main() {
	adminAddr := flag.String("admin-addr", "http://localhost:8090", "Admin HTTP API base URL")
	wsAddr := flag.String("ws-addr", "ws://localhost:8091/ws", "WebSocket transport URL")
	flag.Parse()

	views, err := fetchInstruments(*adminAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
	if len(views) == 0 {
		fmt.Fprintln(os.Stderr, "error: server has no instruments to watch")
		os.Exit(1)
	}

	m := newModel(*wsAddr, views)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func fetchInstruments(adminAddr string) ([]adminapi.InstrumentView, error) {
	var views []adminapi.InstrumentView
	resp, err := resty.New().R().SetResult(&views).Get(adminAddr + "/api/instruments")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list instruments: %s", resp.Status())
	}
	return views, nil
}
