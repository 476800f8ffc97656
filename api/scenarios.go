/*
scenarios.go - Canned quarters for demos and smoke tests

PURPOSE:
  Provides pre-built decision bundles and opening states that show specific
  engine behavior. Each scenario starts from the reference firm and changes
  one thing.

AVAILABLE SCENARIOS:
  starting-quarter:  Reference firm, 15 M1 machines, 580 workers,
                     product A on CT at 20.60 €, 420 KU
  contract-stockout: A-GS has contracted more than it can deliver
  no-maintenance:    Maintenance skipped, capacity lost
  overdraft:         Twenty M2 machines bought on thin cash

USAGE VIA API:
  POST /api/scenarios/starting-quarter/settle
  {"edition": "revised", "archive": true}

ADDING NEW SCENARIOS:
  1. Write a builder that starts from startingQuarter()
  2. Add it to the 'scenarios' slice

SEE ALSO:
  - handlers.go: Shared settle and archive helpers
*/
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario is a canned quarter.
type Scenario struct {
	ScenarioDTO
	Build func() (settlement.Decisions, settlement.PeriodState, settlement.Forecast)
}

var scenarios = []Scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "starting-quarter",
			Name:        "Starting Quarter",
			Description: "Reference firm selling 420 KU of product A on the CT network at 20.60 €",
			Highlights:  string(settlement.WarnWorkforceShortfall),
		},
		Build: startingQuarter,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "contract-stockout",
			Name:        "Contract Stockout",
			Description: "A-GS contracted 30 000 units with only 10 000 in stock",
			Highlights:  string(settlement.WarnContractStockout),
		},
		Build: contractStockout,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "no-maintenance",
			Name:        "No Maintenance",
			Description: "Maintenance skipped: capacity drops by the productivity loss",
			Highlights:  string(settlement.WarnMaintenanceSkipped),
		},
		Build: noMaintenance,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overdraft",
			Name:        "Overdraft",
			Description: "Twenty M2 machines bought with 200 K€ of opening cash",
			Highlights:  string(settlement.WarnNegativeCash),
		},
		Build: overdraft,
	},
}

func findScenario(id string) (Scenario, error) {
	for _, sc := range scenarios {
		if sc.ID == id {
			return sc, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %q", errScenarioNotFound, id)
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

var dec = settlement.Dec

func startingQuarter() (settlement.Decisions, settlement.PeriodState, settlement.Forecast) {
	var d settlement.Decisions
	for _, c := range settlement.Channels {
		d.Channels[c].Quality = dec("100")
	}
	d.Channels[settlement.ChannelACT] = settlement.ChannelDecision{
		TariffPrice:  dec("20.60"),
		ProductionKU: dec("420"),
		Quality:      dec("100"),
	}
	d.Supply.Maintenance = true
	d.Supply.Orders[settlement.GradeN] = settlement.MaterialOrder{OrderKU: dec("600"), ContractQuarters: 4}
	d.Production.Machines[settlement.MachineM1].Active = 15
	d.Marketing.StudiesABCD = "N"
	d.Marketing.StudiesEFGH = "N"

	s := settlement.PeriodState{
		Quarter:      1,
		Workforce:    580,
		Fleet:        [settlement.NumMachineClasses]int{15, 0},
		Cash:         dec("1000"),
		LongTermDebt: dec("1500"),
		Reserves:     dec("800"),
		PriceIndex:   dec("100"),
		WageIndex:    dec("100"),
	}
	s.RawMaterials[settlement.GradeN] = dec("1500000")
	return d, s, nil
}

func contractStockout() (settlement.Decisions, settlement.PeriodState, settlement.Forecast) {
	d, s, f := startingQuarter()
	d.Channels[settlement.ChannelAGS].TariffPrice = dec("19")
	d.Channels[settlement.ChannelAGS].ContractSale = dec("30000")
	s.FinishedGoods[settlement.ChannelAGS] = dec("10000")
	return d, s, f
}

func noMaintenance() (settlement.Decisions, settlement.PeriodState, settlement.Forecast) {
	d, s, f := startingQuarter()
	d.Supply.Maintenance = false
	return d, s, f
}

func overdraft() (settlement.Decisions, settlement.PeriodState, settlement.Forecast) {
	d, s, f := startingQuarter()
	d.Production.Machines[settlement.MachineM2].Bought = 20
	s.Cash = dec("200")
	return d, s, f
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the canned quarters.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, sc := range scenarios {
		dtos[i] = sc.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SettleScenario settles a canned quarter, optionally archiving it.
func (h *Handler) SettleScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := findScenario(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "Scenario not found", err)
		return
	}

	var req ScenarioSettleRequest
	if err := decodeBody(w, r, &req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, s, f := sc.Build()
	result, editionName, err := h.settle(req.Edition, d, s, f)
	if err != nil {
		writeFailure(w, "Settlement failed", err)
		return
	}

	resp := SettlementResponse{Edition: editionName, Result: result}
	status := http.StatusOK
	if req.Archive {
		id, err := h.archive(r.Context(), editionName, sc.Name, d, s, f, result)
		if err != nil {
			writeFailure(w, "Failed to archive run", err)
			return
		}
		resp.RunID = string(id)
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}
