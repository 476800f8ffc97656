/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the settlement engine via REST API for what-if recomputation.
  Handles HTTP request/response and JSON serialization, and delegates to
  the engine. The engine stays pure; archiving and metrics live here.

ENDPOINTS:
  Settlements:
    POST   /api/settlements              Settle a quarter, archive by default
    POST   /api/settlements/preview      Settle without archiving
    GET    /api/settlements              List archived runs (?edition=&quarter=&limit=)
    GET    /api/settlements/{id}         Archived run with inputs and result
    GET    /api/settlements/{id}/report  Markdown report (?format=csv for CSV)

  Editions:
    GET    /api/editions                 List registered editions
    GET    /api/editions/{name}          Full parameter table
    POST   /api/editions                 Register a custom edition

  Scenarios:
    GET    /api/scenarios                List canned quarters
    POST   /api/scenarios/{id}/settle    Settle a canned quarter

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, structural input errors, unusable edition table
  - 404: Unknown run, edition or scenario
  - 409: Duplicate run, attempt to replace a built-in edition
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Canned quarters
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/factory"
	"github.com/mirage-sim/settlement-engine/observability"
	"github.com/mirage-sim/settlement-engine/report"
	"github.com/mirage-sim/settlement-engine/settlement"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var (
	errScenarioNotFound = errors.New("scenario not found")
	errBuiltInEdition   = errors.New("built-in editions cannot be replaced")
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Runs           settlement.RunStore
	Editions       edition.Archive // optional
	Metrics        *observability.Metrics
	DefaultEdition string

	now   func() time.Time
	newID func() string
}

// NewHandler creates a new handler archiving runs in the given store.
func NewHandler(runs settlement.RunStore, metrics *observability.Metrics) *Handler {
	if metrics == nil {
		metrics = observability.NewMetrics("")
	}
	return &Handler{
		Runs:           runs,
		Metrics:        metrics,
		DefaultEdition: edition.NameClassic,
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
	}
}

// LoadEditions registers every archived custom edition. A document that no
// longer parses is reported and skipped.
func (h *Handler) LoadEditions(ctx context.Context) (loaded int, skipped []error) {
	if h.Editions == nil {
		return 0, nil
	}
	records, err := h.Editions.ListEditions(ctx)
	if err != nil {
		return 0, []error{err}
	}
	for _, rec := range records {
		p, err := factory.ParseEdition(rec.Document, factory.FormatJSON)
		if err == nil {
			err = edition.Register(p)
		}
		if err != nil {
			skipped = append(skipped, fmt.Errorf("edition %q: %w", rec.Name, err))
			continue
		}
		loaded++
	}
	return loaded, skipped
}

// settle runs one quarter on a named edition and records metrics.
func (h *Handler) settle(editionName string, d settlement.Decisions, s settlement.PeriodState, f settlement.Forecast) (*settlement.Result, string, error) {
	if editionName == "" {
		editionName = h.DefaultEdition
	}
	engine, err := edition.Engine(editionName)
	if err != nil {
		// Unknown names stay out of the label set.
		h.Metrics.RecordSettlement("unknown", 0, nil, err)
		return nil, editionName, err
	}
	start := time.Now()
	result, err := engine.Settle(d, s, f)
	h.Metrics.RecordSettlement(editionName, time.Since(start), result, err)
	return result, editionName, err
}

// archive stores a settled run under a fresh ID.
func (h *Handler) archive(ctx context.Context, editionName, label string, d settlement.Decisions, s settlement.PeriodState, f settlement.Forecast, result *settlement.Result) (settlement.RunID, error) {
	run := settlement.Run{
		ID:        settlement.RunID(h.newID()),
		Edition:   editionName,
		Label:     label,
		Decisions: d,
		State:     s,
		Forecast:  f,
		Result:    result,
		CreatedAt: h.now(),
	}
	if err := h.Runs.Save(ctx, run); err != nil {
		return "", fmt.Errorf("archive run: %w", err)
	}
	h.Metrics.RecordArchived()
	return run.ID, nil
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// CreateSettlement settles a quarter and archives it unless told otherwise.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, true)
}

// PreviewSettlement settles a quarter without archiving it.
func (h *Handler) PreviewSettlement(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, false)
}

func (h *Handler) settleRequest(w http.ResponseWriter, r *http.Request, allowArchive bool) {
	var req SettleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, err := req.Decisions.ToDecisions()
	if err != nil {
		writeFailure(w, "Invalid decisions", err)
		return
	}
	s, err := req.State.ToState()
	if err != nil {
		writeFailure(w, "Invalid period state", err)
		return
	}
	f, err := req.Forecast.ToForecast()
	if err != nil {
		writeFailure(w, "Invalid forecast", err)
		return
	}

	result, editionName, err := h.settle(req.Edition, d, s, f)
	if err != nil {
		writeFailure(w, "Settlement failed", err)
		return
	}

	resp := SettlementResponse{Edition: editionName, Result: result}
	status := http.StatusOK
	if allowArchive && (req.Archive == nil || *req.Archive) {
		id, err := h.archive(r.Context(), editionName, req.Label, d, s, f, result)
		if err != nil {
			writeFailure(w, "Failed to archive run", err)
			return
		}
		resp.RunID = string(id)
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// ListSettlements returns archived run summaries, newest first.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	filter := settlement.RunFilter{Edition: r.URL.Query().Get("edition")}
	for name, dst := range map[string]*int{"quarter": &filter.Quarter, "limit": &filter.Limit} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid "+name, fmt.Errorf("%q is not a non-negative integer", v))
			return
		}
		*dst = n
	}

	summaries, err := h.Runs.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, "Failed to list runs", err)
		return
	}
	dtos := make([]RunSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSettlement returns an archived run with inputs and result.
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	run, err := h.Runs.Get(r.Context(), settlement.RunID(chi.URLParam(r, "id")))
	if err != nil {
		writeFailure(w, "Failed to get run", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// GetSettlementReport renders an archived run as markdown or CSV.
func (h *Handler) GetSettlementReport(w http.ResponseWriter, r *http.Request) {
	run, err := h.Runs.Get(r.Context(), settlement.RunID(chi.URLParam(r, "id")))
	if err != nil {
		writeFailure(w, "Failed to get run", err)
		return
	}
	if run.Result == nil {
		writeError(w, http.StatusNotFound, "Run has no result", nil)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.RenderMarkdown(run.Result, report.Meta{RunID: string(run.ID), Label: run.Label})))
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteSummaryCSV(&buf, run.Result); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render report", err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, "Unknown report format", fmt.Errorf("format %q, want markdown or csv", format))
	}
}

// =============================================================================
// EDITION HANDLERS
// =============================================================================

// ListEditions returns every registered edition.
func (h *Handler) ListEditions(w http.ResponseWriter, r *http.Request) {
	names := edition.Names()
	dtos := make([]EditionDTO, len(names))
	for i, name := range names {
		dtos[i] = EditionDTO{Name: name, BuiltIn: edition.IsBuiltIn(name), Default: name == h.DefaultEdition}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEdition returns one parameter table in file schema.
func (h *Handler) GetEdition(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := edition.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Edition not found", fmt.Errorf("%w: %q", edition.ErrUnknownEdition, name))
		return
	}
	writeJSON(w, http.StatusOK, factory.EditionToJSON(p))
}

// CreateEdition registers a custom edition and archives its document.
func (h *Handler) CreateEdition(w http.ResponseWriter, r *http.Request) {
	var ej factory.EditionJSON
	if err := decodeBody(w, r, &ej); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if edition.IsBuiltIn(ej.Name) {
		writeError(w, http.StatusConflict, "Cannot replace edition", fmt.Errorf("%w: %q", errBuiltInEdition, ej.Name))
		return
	}
	p, err := ej.ToParams()
	if err != nil {
		writeFailure(w, "Invalid edition", err)
		return
	}
	if h.Editions != nil {
		document, err := json.Marshal(ej)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to encode edition", err)
			return
		}
		if err := h.Editions.SaveEdition(r.Context(), p.Name, document); err != nil {
			writeFailure(w, "Failed to save edition", err)
			return
		}
	}
	if err := edition.Register(p); err != nil {
		writeFailure(w, "Failed to register edition", err)
		return
	}
	writeJSON(w, http.StatusCreated, EditionDTO{Name: p.Name, Default: p.Name == h.DefaultEdition})
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure picks the status from the error chain.
func writeFailure(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case settlement.IsClientError(err), errors.Is(err, settlement.ErrInvalidParams):
		return http.StatusBadRequest
	case settlement.IsNotFound(err), errors.Is(err, edition.ErrUnknownEdition), errors.Is(err, errScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, settlement.ErrDuplicateRun), errors.Is(err, errBuiltInEdition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
