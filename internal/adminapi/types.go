package adminapi

import (
	"bondstream/internal/model"
)

// InstrumentView is the wire shape of an instrument on the Admin HTTP API
// — a flattened field map plus the common header, so admin clients see
// exactly the same field names the delta/filter layers use internally.
type InstrumentView struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Symbol     string         `json:"symbol"`
	Currency   string         `json:"currency"`
	Sector     string         `json:"sector"`
	Rating     string         `json:"rating"`
	Status     string         `json:"status"`
	LastUpdate int64          `json:"lastUpdate"`
	Fields     map[string]any `json:"fields"`
}

func toView(inst *model.Instrument) InstrumentView {
	fields := inst.ToWireFieldMap()
	// The common header is reported separately from Fields so admin
	// clients don't have to special-case the header keys out of the
	// flattened map; Fields still carries them too, since ToFieldMap is
	// the single source both the delta engine and this view draw from.
	return InstrumentView{
		ID:         inst.ID,
		Kind:       string(inst.Kind),
		Symbol:     inst.Symbol,
		Currency:   inst.Currency,
		Sector:     inst.Sector,
		Rating:     inst.Rating,
		Status:     string(inst.Status),
		LastUpdate: inst.LastUpdate.UnixMilli(),
		Fields:     fields,
	}
}

// InsertRequest is the POST /api/instruments body: a common header plus a
// kind-specific payload decoded from the same flat field names ToFieldMap
// produces, so round-tripping a GET response back through POST works
// unmodified.
type InsertRequest struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Symbol   string         `json:"symbol"`
	Currency string         `json:"currency"`
	Sector   string         `json:"sector"`
	Rating   string         `json:"rating"`
	Status   string         `json:"status"`
	Fields   map[string]any `json:"fields"`
}

// UpdateRequest is the PATCH /api/instruments/{id} body: a partial field
// map merge-applied onto the existing instrument.
type UpdateRequest struct {
	Fields map[string]any `json:"fields"`
}

// errorBody is the JSON shape of a non-2xx admin API response.
type errorBody struct {
	Error string `json:"error"`
}

// correlationRow is one entry of the GET /api/correlation/{id} response.
type correlationRow struct {
	InstrumentID string  `json:"instrumentId"`
	Coefficient  float64 `json:"coefficient"`
}
