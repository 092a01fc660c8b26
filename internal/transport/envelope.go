package transport

import (
	"github.com/segmentio/encoding/json"
	"github.com/valyala/fastjson"
)

var fastjsonParserPool fastjson.ParserPool

// Envelope is the wire frame every message — inbound or outbound — is
// wrapped in.
type Envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Frame types recognized on the wire.
const (
	FrameSubscribe        = "subscribe"
	FrameUnsubscribe      = "unsubscribe"
	FrameAck              = "ack"
	FrameInitialData      = "initial-data"
	FrameInstrumentUpdate = "instrument-update"
)

func encodeEnvelope(typ, requestID string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, RequestID: requestID, Payload: raw})
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// peekType extracts just the "type" discriminant from a raw frame without
// paying for a full Envelope unmarshal — a fastjson parse on a pooled
// parser that reuses its allocations, since inbound frames are
// client-controlled and frames this session rejects on type never reach
// the Envelope unmarshal.
func peekType(data []byte) (string, error) {
	p := fastjsonParserPool.Get()
	defer fastjsonParserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return "", err
	}
	return string(v.GetStringBytes("type")), nil
}
