package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// envelope mirrors internal/transport.Envelope; it is a local copy, not an
// import of that package.
type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type subscribeRequest struct {
	InstrumentIDs   []string `json:"instrumentIds"`
	UpdateFrequency float64  `json:"updateFrequency,omitempty"`
}

type wireDelta struct {
	InstrumentID string         `json:"instrumentId"`
	Timestamp    int64          `json:"timestamp"`
	Fields       map[string]any `json:"fields"`
}

var watchCmd = &cobra.Command{
	Use:   "watch <id...>",
	Short: "Subscribe over the WS transport and print deltas as they arrive",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conn, _, err := websocket.DefaultDialer.Dial(transportAddr, nil)
		requireNoError(err)
		defer conn.Close()

		subPayload, err := json.Marshal(subscribeRequest{InstrumentIDs: args})
		requireNoError(err)
		subEnv := envelope{Type: "subscribe", RequestID: "adminctl-1", Payload: subPayload}
		requireNoError(conn.WriteJSON(subEnv))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			conn.Close()
			os.Exit(0)
		}()

		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				fmt.Fprintf(os.Stderr, "connection closed: %s\n", err.Error())
				return
			}
			switch env.Type {
			case "ack":
				fmt.Println("subscribed")
			case "initial-data":
				fmt.Println("-- initial snapshot --")
			case "instrument-update":
				var delta wireDelta
				if err := json.Unmarshal(env.Payload, &delta); err != nil {
					continue
				}
				printDelta(delta)
			}
		}
	},
}

func printDelta(d wireDelta) {
	ts := time.UnixMilli(d.Timestamp)
	fmt.Printf("[%s] %s:", ts.Format("15:04:05.000"), d.InstrumentID)
	for k, v := range d.Fields {
		if f, ok := v.(float64); ok {
			fmt.Printf(" %s=%s", k, humanize.Commaf(f))
			continue
		}
		fmt.Printf(" %s=%v", k, v)
	}
	fmt.Println()
}
