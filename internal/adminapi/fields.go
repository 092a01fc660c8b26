package adminapi

import (
	"time"

	"github.com/relvacode/iso8601"
	"github.com/shopspring/decimal"

	"bondstream/internal/model"
)

// stringFields never go through decimal parsing even when the JSON value
// happens to be a string that looks numeric (e.g. a "AAA" rating).
var stringFields = map[string]bool{
	model.FieldID:           true,
	model.FieldSymbol:       true,
	model.FieldCurrency:     true,
	model.FieldSector:       true,
	model.FieldRating:       true,
	model.FieldStatus:       true,
	model.FieldSecurityType: true,
	model.FieldOptionType:   true,
	model.FieldUnderlyingID: true,
}

// timeFields carry a time.Time value in the internal model; on the wire
// they may arrive as an ISO-8601 string or an epoch-ms integer.
var timeFields = map[string]bool{
	model.FieldLastUpdate:    true,
	model.FieldLastTradeTime: true,
}

// normalizeFields converts the admin API's JSON-decoded field map into the
// Go-native types model.Instrument.ApplyFieldMap expects: numeric fields
// accept either a JSON number or a decimal string (parsed with
// shopspring/decimal), and the two time-bearing fields accept either an
// epoch-ms integer or an ISO-8601 string (parsed with relvacode/iso8601).
// Everything past this boundary stays on float64/time.Time, so the delta
// engine's float-equality rules are untouched.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		switch {
		case stringFields[name]:
			out[name] = v
		case timeFields[name]:
			out[name] = normalizeTime(v)
		default:
			out[name] = normalizeNumeric(v)
		}
	}
	return out
}

func normalizeNumeric(v any) any {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return v
		}
		f, _ := d.Float64()
		return f
	case float64:
		return n
	default:
		return v
	}
}

func normalizeTime(v any) any {
	switch n := v.(type) {
	case string:
		t, err := iso8601.ParseString(n)
		if err != nil {
			return v
		}
		return t
	case float64:
		return time.UnixMilli(int64(n))
	default:
		return v
	}
}
