package model

import "time"

// Delta is the minimal set of changed fields for one instrument, with the
// timestamp at which the Delta Engine observed the change. Fields is never
// empty on an emitted Delta.
type Delta struct {
	InstrumentID string
	Timestamp    time.Time
	Fields       map[string]any
}

// WireDelta is the JSON shape of a Delta on the transport: epoch-millisecond
// timestamp, enum fields as their string tag, date fields as epoch-ms
// integers.
type WireDelta struct {
	InstrumentID string         `json:"instrumentId"`
	Timestamp    int64          `json:"timestamp"`
	Fields       map[string]any `json:"fields"`
}

// ToWire converts a Delta to its wire representation, serializing any
// time.Time field values to epoch milliseconds.
func (d Delta) ToWire() WireDelta {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		if t, ok := v.(time.Time); ok {
			fields[k] = t.UnixMilli()
			continue
		}
		fields[k] = v
	}
	return WireDelta{
		InstrumentID: d.InstrumentID,
		Timestamp:    d.Timestamp.UnixMilli(),
		Fields:       fields,
	}
}
