package main

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type subscribeRequest struct {
	InstrumentIDs   []string `json:"instrumentIds"`
	UpdateFrequency float64  `json:"updateFrequency,omitempty"`
}

// blotterUpdateFrequency is a modest frequency hint (updates per second):
// the server paces this session's updates for each instrument to at most
// this rate.
const blotterUpdateFrequency = 5

type wireDelta struct {
	InstrumentID string         `json:"instrumentId"`
	Timestamp    int64          `json:"timestamp"`
	Fields       map[string]any `json:"fields"`
}

type initialDataPayload struct {
	SubscriptionID string           `json:"subscriptionId"`
	Instruments    []map[string]any `json:"instruments"`
}

// feed owns the WebSocket connection and decodes inbound frames into the
// messages the bubbletea model cares about, handing each one back on a
// channel that the model's read loop command drains one at a time.
type feed struct {
	conn *websocket.Conn
	out  chan any
}

func dialFeed(wsAddr string, instrumentIDs []string) (*feed, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsAddr, err)
	}

	payload, err := json.Marshal(subscribeRequest{InstrumentIDs: instrumentIDs, UpdateFrequency: blotterUpdateFrequency})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.WriteJSON(envelope{Type: "subscribe", RequestID: "blotter-1", Payload: payload}); err != nil {
		conn.Close()
		return nil, err
	}

	f := &feed{conn: conn, out: make(chan any, 256)}
	go f.readLoop()
	return f, nil
}

func (f *feed) readLoop() {
	defer close(f.out)
	for {
		var env envelope
		if err := f.conn.ReadJSON(&env); err != nil {
			f.out <- feedErrMsg{err: err}
			return
		}
		switch env.Type {
		case "initial-data":
			var payload initialDataPayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				continue
			}
			f.out <- initialDataMsg{instruments: payload.Instruments}
		case "instrument-update":
			var delta wireDelta
			if err := json.Unmarshal(env.Payload, &delta); err != nil {
				continue
			}
			f.out <- deltaMsg{delta: delta}
		}
	}
}

func (f *feed) close() {
	f.conn.Close()
}

// feed-sourced bubbletea messages.
type (
	initialDataMsg struct{ instruments []map[string]any }
	deltaMsg       struct{ delta wireDelta }
	feedErrMsg     struct{ err error }
)
