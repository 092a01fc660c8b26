package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"bondstream/internal/correlation"
	"bondstream/internal/model"
	"bondstream/internal/store"
)

// RemovalListener is notified after an instrument leaves the catalog, so
// components that keep per-instrument state outside the Store (the Tick
// Generator's pct-change tracker) can forget it.
type RemovalListener interface {
	OnInstrumentRemoved(id string)
}

// Handlers holds the Admin HTTP API's handler dependencies: one struct
// holding every collaborator a route needs, constructed once in New and
// threaded through ServeMux.
type Handlers struct {
	store    *store.Store
	graph    *correlation.Graph
	removals RemovalListener
	logger   *slog.Logger
}

// NewHandlers creates a Handlers bound to st and graph. removals may be nil.
func NewHandlers(st *store.Store, graph *correlation.Graph, removals RemovalListener, logger *slog.Logger) *Handlers {
	return &Handlers{store: st, graph: graph, removals: removals, logger: logger.With("component", "admin-handlers")}
}

// HandleHealth reports liveness only — it never touches the store, so it
// stays truthful even if the catalog is empty or a single instrument's
// lock is contended.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleList serves GET /api/instruments?kind=&currency=&status=&rating=.
// At most one filter is honored; an empty query lists everything.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var instruments []*model.Instrument
	switch {
	case q.Get("kind") != "":
		instruments = h.store.ListByKind(model.InstrumentKind(q.Get("kind")))
	case q.Get("currency") != "":
		instruments = h.store.ListByCurrency(q.Get("currency"))
	case q.Get("status") != "":
		instruments = h.store.ListByStatus(model.InstrumentStatus(q.Get("status")))
	case q.Get("rating") != "":
		instruments = h.store.ListByRating(q.Get("rating"))
	default:
		instruments = h.store.ListAll()
	}

	views := make([]InstrumentView, 0, len(instruments))
	for _, inst := range instruments {
		views = append(views, toView(inst))
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet serves GET /api/instruments/{id}.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inst, err := h.store.Lookup(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(inst))
}

// HandleInsert serves POST /api/instruments.
func (h *Handlers) HandleInsert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id must not be empty")
		return
	}

	inst, err := buildInstrument(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Insert(inst); err != nil {
		writeStoreError(w, err)
		return
	}
	h.growCorrelationGraph(inst)

	h.logger.Info("instrument inserted", "id", inst.ID, "kind", inst.Kind)
	writeJSON(w, http.StatusCreated, toView(inst))
}

// HandleUpdate serves PATCH /api/instruments/{id}: a merge-update of the
// supplied fields, going through the Instrument Store's own UpdateMerge so
// the admin boundary never bypasses the store's per-entry locking.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.store.UpdateMerge(id, normalizeFields(req.Fields)); err != nil {
		writeStoreError(w, err)
		return
	}

	inst, err := h.store.Lookup(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(inst))
}

// HandleRemove serves DELETE /api/instruments/{id}.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Remove(id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.graph.OnRemove(id)
	if h.removals != nil {
		h.removals.OnInstrumentRemoved(id)
	}
	h.logger.Info("instrument removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCorrelation serves GET /api/correlation/{id}: every coefficient
// involving id, as computed by the Correlation Graph.
func (h *Handlers) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.Exists(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("instrument %q not found", id))
		return
	}

	row := h.graph.Row(id)
	out := make([]correlationRow, 0, len(row))
	for otherID, c := range row {
		out = append(out, correlationRow{InstrumentID: otherID, Coefficient: c})
	}
	writeJSON(w, http.StatusOK, out)
}

// growCorrelationGraph computes coefficients between the newly-inserted
// instrument and every other instrument already in the catalog. Uses a
// time-seeded RNG since this is a live admin action, not the deterministic
// startup seeding in internal/engine.
func (h *Handlers) growCorrelationGraph(inst *model.Instrument) {
	existing := h.store.ListAll()
	attrs := make([]correlation.Attrs, 0, len(existing))
	for _, other := range existing {
		if other.ID == inst.ID {
			continue
		}
		attrs = append(attrs, correlation.Attrs{ID: other.ID, Kind: other.Kind, Sector: other.Sector, Currency: other.Currency})
	}
	h.graph.OnInsert(
		correlation.Attrs{ID: inst.ID, Kind: inst.Kind, Sector: inst.Sector, Currency: inst.Currency},
		attrs,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// buildInstrument constructs a zero-valued instrument of the requested
// kind and merge-applies the request's field map onto it, reusing
// model.Instrument.ApplyFieldMap so this boundary and the Tick
// Generator's own field writes can never drift apart.
func buildInstrument(req InsertRequest) (*model.Instrument, error) {
	kind := model.InstrumentKind(req.Kind)

	inst := &model.Instrument{
		ID:         req.ID,
		Kind:       kind,
		Symbol:     req.Symbol,
		Currency:   req.Currency,
		Sector:     req.Sector,
		Rating:     req.Rating,
		Status:     model.StatusActive,
		LastUpdate: time.Now(),
	}
	if req.Status != "" {
		inst.Status = model.InstrumentStatus(req.Status)
	}

	switch kind {
	case model.KindBond:
		inst.Bond = &model.BondFields{}
	case model.KindSwap:
		inst.Swap = &model.SwapFields{}
	case model.KindFuture:
		inst.Future = &model.FutureFields{}
	case model.KindOption:
		inst.Option = &model.OptionFields{}
	default:
		return nil, fmt.Errorf("%w: unknown instrument kind %q", model.ErrInvalidArgument, req.Kind)
	}

	inst.ApplyFieldMap(normalizeFields(req.Fields))
	return inst, nil
}
