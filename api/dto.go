/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Inputs reuse the
  factory file schemas, so a decision file and a request body are the same
  document; the Result is returned as the engine builds it.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/: Input schemas
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mirage-sim/settlement-engine/factory"
	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SettleRequest is the body of POST /api/settlements and its preview.
type SettleRequest struct {
	Edition   string               `json:"edition,omitempty"` // default edition when empty
	Label     string               `json:"label,omitempty"`
	Archive   *bool                `json:"archive,omitempty"` // default true; ignored by preview
	Decisions factory.DecisionsJSON `json:"decisions"`
	State     factory.StateJSON     `json:"state"`
	Forecast  factory.ForecastJSON  `json:"forecast,omitempty"`
}

// SettlementResponse wraps a computed result.
type SettlementResponse struct {
	RunID   string             `json:"run_id,omitempty"` // set when archived
	Edition string             `json:"edition"`
	Result  *settlement.Result `json:"result"`
}

// RunSummaryDTO is one entry of GET /api/settlements.
type RunSummaryDTO struct {
	ID           string          `json:"id"`
	Edition      string          `json:"edition"`
	Label        string          `json:"label,omitempty"`
	Quarter      int             `json:"quarter"`
	WarningCount int             `json:"warning_count"`
	NetResult    decimal.Decimal `json:"net_result"`
	EndingCash   decimal.Decimal `json:"ending_cash"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RunDTO is an archived run with its inputs in file schema.
type RunDTO struct {
	RunSummaryDTO
	Decisions factory.DecisionsJSON `json:"decisions"`
	State     factory.StateJSON     `json:"state"`
	Forecast  factory.ForecastJSON  `json:"forecast,omitempty"`
	Result    *settlement.Result    `json:"result"`
}

// EditionDTO lists a registered edition.
type EditionDTO struct {
	Name    string `json:"name"`
	BuiltIn bool   `json:"built_in"`
	Default bool   `json:"default"`
}

// ScenarioDTO describes a canned quarter.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Highlights  string `json:"highlights"` // warning kind the scenario exercises
}

// ScenarioSettleRequest is the optional body of POST /api/scenarios/{id}/settle.
type ScenarioSettleRequest struct {
	Edition string `json:"edition,omitempty"`
	Archive bool   `json:"archive,omitempty"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSummaryDTO(s settlement.RunSummary) RunSummaryDTO {
	return RunSummaryDTO{
		ID:           string(s.ID),
		Edition:      s.Edition,
		Label:        s.Label,
		Quarter:      s.Quarter,
		WarningCount: s.WarningCount,
		NetResult:    s.NetResult,
		EndingCash:   s.EndingCash,
		CreatedAt:    s.CreatedAt,
	}
}

func toRunDTO(run settlement.Run) RunDTO {
	return RunDTO{
		RunSummaryDTO: toSummaryDTO(run.Summary()),
		Decisions:     factory.DecisionsToJSON(run.Decisions),
		State:         factory.StateToJSON(run.State),
		Forecast:      factory.ForecastToJSON(run.Forecast),
		Result:        run.Result,
	}
}
