package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/factory"
	"github.com/mirage-sim/settlement-engine/observability"
	"github.com/mirage-sim/settlement-engine/settlement"
	"github.com/mirage-sim/settlement-engine/settlement/store"
	"github.com/mirage-sim/settlement-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	handler *Handler
	runs    *store.Memory
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	runs := store.NewMemory()
	h := NewHandler(runs, observability.NewMetrics("test"))

	seq := 0
	h.newID = func() string {
		seq++
		return fmt.Sprintf("run-%d", seq)
	}
	clock := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &testServer{handler: h, runs: runs, router: NewRouter(h, nil)}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func startingRequest() SettleRequest {
	d, s, f := startingQuarter()
	return SettleRequest{
		Label:     "baseline",
		Decisions: factory.DecisionsToJSON(d),
		State:     factory.StateToJSON(s),
		Forecast:  factory.ForecastToJSON(f),
	}
}

// =============================================================================
// SETTLEMENT TESTS
// =============================================================================

func TestCreateSettlement_ArchivesRun(t *testing.T) {
	// GIVEN: The starting quarter posted as a request body
	// WHEN: Settled through the API
	// THEN: 201, the run is archived, listed and reportable

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/settlements", startingRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeJSON[SettlementResponse](t, rec)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, edition.NameClassic, resp.Edition)
	require.NotNil(t, resp.Result)
	assert.True(t, settlement.Dec("8652").Equal(resp.Result.Revenue.Total), resp.Result.Revenue.Total.String())

	rec = ts.do(t, http.MethodGet, "/api/settlements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]RunSummaryDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "baseline", list[0].Label)
	assert.Equal(t, 1, list[0].Quarter)
	assert.True(t, resp.Result.Income.NetResult.Equal(list[0].NetResult))

	rec = ts.do(t, http.MethodGet, "/api/settlements/run-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	run := decodeJSON[RunDTO](t, rec)
	assert.Equal(t, 580, run.State.Workforce)
	assert.Equal(t, 15, run.Decisions.Production.Machines["M1"].Active)

	rec = ts.do(t, http.MethodGet, "/api/settlements/run-1/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, rec.Body.String(), "Run: run-1 (baseline)")

	rec = ts.do(t, http.MethodGet, "/api/settlements/run-1/report?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "section,line,value\n"))

	rec = ts.do(t, http.MethodGet, "/api/settlements/run-1/report?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSettlement_ArchiveFalse(t *testing.T) {
	ts := newTestServer(t)
	req := startingRequest()
	archive := false
	req.Archive = &archive

	rec := ts.do(t, http.MethodPost, "/api/settlements", req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[SettlementResponse](t, rec).RunID)

	summaries, err := ts.runs.List(context.Background(), settlement.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestPreviewSettlement_NeverArchives(t *testing.T) {
	ts := newTestServer(t)
	req := startingRequest()
	req.Edition = edition.NameRevised

	rec := ts.do(t, http.MethodPost, "/api/settlements/preview", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeJSON[SettlementResponse](t, rec)
	assert.Empty(t, resp.RunID)
	assert.Equal(t, edition.NameRevised, resp.Result.Edition)

	summaries, err := ts.runs.List(context.Background(), settlement.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCreateSettlement_Errors(t *testing.T) {
	quality := 150.0
	badQuality := startingRequest()
	ch := badQuality.Decisions.Channels["A-CT"]
	ch.Quality = &quality
	badQuality.Decisions.Channels["A-CT"] = ch

	badQuarter := startingRequest()
	badQuarter.State.Quarter = 5

	badForecast := startingRequest()
	badForecast.Forecast = factory.ForecastJSON{"Q-CT": 1}

	unknownEdition := startingRequest()
	unknownEdition.Edition = "nope"

	tests := []struct {
		name    string
		body    any
		status  int
		details string
	}{
		{"malformed body", `{"decisions": `, http.StatusBadRequest, ""},
		{"unknown field", `{"decision": {}}`, http.StatusBadRequest, "unknown field"},
		{"quality out of range", badQuality, http.StatusBadRequest, "channels.A-CT.quality"},
		{"quarter out of range", badQuarter, http.StatusBadRequest, "quarter"},
		{"unknown forecast channel", badForecast, http.StatusBadRequest, "Q-CT"},
		{"unknown edition", unknownEdition, http.StatusNotFound, "unknown edition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(t, http.MethodPost, "/api/settlements", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeJSON[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Details, tt.details)
		})
	}
}

func TestListSettlements_Filters(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{edition.NameClassic, edition.NameRevised, edition.NameClassic} {
		req := startingRequest()
		req.Edition = name
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/settlements", req).Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/settlements?edition=classic&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]RunSummaryDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "run-3", list[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/settlements?quarter=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]RunSummaryDTO](t, rec))

	rec = ts.do(t, http.MethodGet, "/api/settlements?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSettlement_NotFound(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/settlements/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/settlements/missing/report", nil).Code)
}

// =============================================================================
// EDITION TESTS
// =============================================================================

func TestEditions_ListAndGet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/editions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byName := make(map[string]EditionDTO)
	for _, e := range decodeJSON[[]EditionDTO](t, rec) {
		byName[e.Name] = e
	}
	assert.True(t, byName[edition.NameClassic].Default)
	assert.True(t, byName[edition.NameClassic].BuiltIn)
	assert.False(t, byName[edition.NameRevised].Default)

	rec = ts.do(t, http.MethodGet, "/api/editions/revised", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ej := decodeJSON[factory.EditionJSON](t, rec)
	assert.Equal(t, edition.NameRevised, ej.Name)
	assert.Equal(t, 0.25, ej.StockoutPenaltyRate)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/editions/nope", nil).Code)
}

func TestCreateEdition_RegistersAndPersists(t *testing.T) {
	// GIVEN: A custom edition derived from classic, posted with a SQLite archive
	// WHEN: Registered, then reloaded by a fresh handler
	// THEN: Settlements can use it and the document survives

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ts := newTestServer(t)
	ts.handler.Editions = db

	ej := factory.EditionToJSON(edition.Classic())
	ej.Name = "api-test-house"
	ej.Finance.CorporateTaxRate = 0.5

	rec := ts.do(t, http.MethodPost, "/api/editions", ej)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req := startingRequest()
	req.Edition = "api-test-house"
	rec = ts.do(t, http.MethodPost, "/api/settlements/preview", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	other := NewHandler(store.NewMemory(), nil)
	other.Editions = db
	loaded, skipped := other.LoadEditions(context.Background())
	assert.Equal(t, 1, loaded)
	assert.Empty(t, skipped)
}

func TestCreateEdition_Rejects(t *testing.T) {
	ts := newTestServer(t)

	builtIn := factory.EditionToJSON(edition.Classic())
	rec := ts.do(t, http.MethodPost, "/api/editions", builtIn)
	assert.Equal(t, http.StatusConflict, rec.Code)

	invalid := factory.EditionToJSON(edition.Classic())
	invalid.Name = "api-test-invalid"
	invalid.RoyaltyRate = 2
	rec = ts.do(t, http.MethodPost, "/api/editions", invalid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, ok := edition.Lookup("api-test-invalid")
	assert.False(t, ok)
}

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestScenarios_EachRaisesItsHighlight(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]ScenarioDTO](t, rec)
	require.Len(t, list, len(scenarios))

	for _, sc := range list {
		t.Run(sc.ID, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/scenarios/"+sc.ID+"/settle", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeJSON[SettlementResponse](t, rec)
			assert.True(t, resp.Result.HasWarning(settlement.WarningKind(sc.Highlights)),
				"scenario %s should raise %s, got %v", sc.ID, sc.Highlights, resp.Result.Warnings)
		})
	}
}

func TestScenarios_StartingQuarterFigures(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/scenarios/starting-quarter/settle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	r := decodeJSON[SettlementResponse](t, rec).Result

	assert.True(t, settlement.Dec("8652").Equal(r.Revenue.Total))
	assert.Equal(t, 75, r.Workforce.Shortfall) // 600 required, 580 - 35 absent - 20 workshop
	assert.True(t, r.Materials.Grades[settlement.GradeN].Balance.IsZero())
	assert.False(t, r.HasWarning(settlement.WarnNegativeCash))
}

func TestSettleScenario_ArchiveAndErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/scenarios/overdraft/settle", ScenarioSettleRequest{Edition: edition.NameRevised, Archive: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeJSON[SettlementResponse](t, rec)
	run, err := ts.runs.Get(context.Background(), settlement.RunID(resp.RunID))
	require.NoError(t, err)
	assert.Equal(t, "Overdraft", run.Label)
	assert.Equal(t, edition.NameRevised, run.Edition)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/scenarios/nope/settle", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/scenarios/overdraft/settle", `{"edtion": "x"}`).Code)
}

// =============================================================================
// INFRASTRUCTURE TESTS
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", nil).Code)
	ts.do(t, http.MethodPost, "/api/scenarios/starting-quarter/settle", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_settlement_runs_total{edition="classic",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `test_settlement_warnings_total{kind="workforce_shortfall",stage="workforce"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", settlement.ErrInvalidDecision), http.StatusBadRequest},
		{settlement.ErrInvalidParams, http.StatusBadRequest},
		{settlement.ErrRunNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: x", edition.ErrUnknownEdition), http.StatusNotFound},
		{fmt.Errorf("archive run: %w", settlement.ErrDuplicateRun), http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRetentionScheduler_Purge(t *testing.T) {
	ctx := context.Background()
	runs := store.NewMemory()
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i, age := range []time.Duration{40 * 24 * time.Hour, 10 * 24 * time.Hour, time.Hour} {
		require.NoError(t, runs.Save(ctx, settlement.Run{
			ID: settlement.RunID(fmt.Sprintf("r%d", i)), Edition: edition.NameClassic, CreatedAt: now.Add(-age),
		}))
	}

	metrics := observability.NewMetrics("test")
	rs := NewRetentionScheduler(runs, metrics, 30*24*time.Hour)
	rs.now = func() time.Time { return now }

	assert.Equal(t, 1, rs.Purge(ctx))
	assert.Equal(t, 0, rs.Purge(ctx))
	left, err := runs.List(ctx, settlement.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestRetentionScheduler_StartStop(t *testing.T) {
	rs := NewRetentionScheduler(store.NewMemory(), nil, time.Hour)
	rs.CheckInterval = time.Millisecond
	rs.Start()
	rs.Start() // second start is a no-op
	time.Sleep(5 * time.Millisecond)
	rs.Stop()
	rs.Stop()

	disabled := NewRetentionScheduler(store.NewMemory(), nil, 0)
	disabled.Start()
	disabled.Stop()
}
