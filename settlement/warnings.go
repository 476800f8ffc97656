package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WARNINGS - Non-fatal business-rule violations
// =============================================================================

// Stage names the pipeline stage that raised a warning.
type Stage string

const (
	StageCapacity  Stage = "capacity"
	StageWorkforce Stage = "workforce"
	StageMaterials Stage = "materials"
	StageContracts Stage = "contracts"
	StageDividends Stage = "dividends"
	StageIncome    Stage = "income"
	StageCash      Stage = "cash"
)

// WarningKind classifies a warning so callers can assert on it without
// parsing the message.
type WarningKind string

const (
	WarnMachinesClamped    WarningKind = "machines_clamped"
	WarnMaintenanceSkipped WarningKind = "maintenance_skipped"
	WarnCapacityExceeded   WarningKind = "capacity_exceeded"
	WarnWorkforceShortfall WarningKind = "workforce_shortfall"
	WarnWorkforceSurplus   WarningKind = "workforce_surplus"
	WarnMaterialShortage   WarningKind = "material_shortage"
	WarnContractStockout   WarningKind = "contract_stockout"
	WarnDividendCapped     WarningKind = "dividend_capped"
	WarnNetLoss            WarningKind = "net_loss"
	WarnNegativeCash       WarningKind = "negative_cash"
)

// Warning is one business-rule violation. The engine applied its fallback
// (clamp, penalty, cap) and kept going.
type Warning struct {
	Stage     Stage           `json:"stage"`
	Kind      WarningKind     `json:"kind"`
	Subject   string          `json:"subject,omitempty"` // channel, grade or machine class
	Magnitude decimal.Decimal `json:"magnitude"`
	Message   string          `json:"message"`
}

func (w Warning) String() string { return w.Message }

func newWarning(stage Stage, kind WarningKind, subject string, magnitude decimal.Decimal, format string, args ...any) Warning {
	return Warning{
		Stage:     stage,
		Kind:      kind,
		Subject:   subject,
		Magnitude: magnitude,
		Message:   fmt.Sprintf(format, args...),
	}
}

// WarningsOf returns the warnings of one kind, in pipeline order.
func (r *Result) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// HasWarning reports whether at least one warning of the kind was raised.
func (r *Result) HasWarning(kind WarningKind) bool {
	return len(r.WarningsOf(kind)) > 0
}
