/*
params.go - The Parameter Table

PURPOSE:
  Static per-edition constants: machine yields, material consumption,
  wages, rates, study fees. A Params value is pure data; the engine copies
  it at construction and never mutates it, so two editions can settle the
  same quarter side by side.

GROUPS:
  MachineParams:  per machine class (yield, price, life, staffing)
  WorkforceParams: wages, absenteeism table, retirements, workshop
  FinanceParams:  interest, overdraft, tax, dividend cap, VAT

VALIDATION:
  Validate() rejects tables that would make the pipeline meaningless
  (negative prices, fractions above one, missing quarters). Rates that are
  multipliers (temporary-worker cost) may exceed one.

SEE ALSO:
  - edition/editions.go: Named parameter tables
  - factory/params.go: JSON/YAML edition files
*/
package settlement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMETER TABLE
// =============================================================================

// MachineParams describes one machine class.
type MachineParams struct {
	// Units produced per active machine per quarter, by product.
	Yield [NumProducts]decimal.Decimal

	PurchasePrice     decimal.Decimal // K€
	ResaleRatio       decimal.Decimal // fraction of purchase price
	LifeQuarters      int             // straight-line depreciation horizon
	MaintenanceCost   decimal.Decimal // K€ per active machine, when maintained
	WorkersPerMachine int
	StructureCost     decimal.Decimal // K€ per active machine, price-indexed
}

// WorkforceParams describes labor costs and headcount movements.
type WorkforceParams struct {
	BaseMonthlyWage  decimal.Decimal // €
	SocialCharges    decimal.Decimal // fraction loaded on every wage
	MonthsPerQuarter int

	TempMultiplier decimal.Decimal // cost multiplier for temporary workers
	ShortTimeRate  decimal.Decimal // fraction of wage paid on technical short-time

	// Absenteeism[q-1] is the share of headcount on leave in quarter q.
	Absenteeism [4]decimal.Decimal

	RetirementQuarters  []int
	RetirementHeadcount int
	WorkshopHeadcount   int
}

// FinanceParams describes financial charges and taxation.
type FinanceParams struct {
	LongTermRate      decimal.Decimal // per quarter
	ShortTermRate     decimal.Decimal // per quarter
	OverdraftMultiple decimal.Decimal // applied to the short-term rate
	ImmediateShare    decimal.Decimal // revenue share collected with cash discount
	FactoringFeeRate  decimal.Decimal
	CorporateTaxRate  decimal.Decimal
	DividendCapRate   decimal.Decimal // of reserves + prior result
	VATRate           decimal.Decimal
}

// Params is the full parameter table of an edition.
type Params struct {
	Name string

	Machines         [NumMachineClasses]MachineParams
	CapacityWeight   [NumProducts]decimal.Decimal
	ProductivityLoss decimal.Decimal // capacity loss without maintenance

	MaterialPerUnit [NumProducts]decimal.Decimal // material units per finished unit
	MaterialPrice   [NumGrades]decimal.Decimal   // € per material unit

	// Variable manufacturing costs in € per unit produced, price-indexed.
	EnergyPerUnit         decimal.Decimal
	SubcontractingPerUnit decimal.Decimal
	MiscPerUnit           decimal.Decimal

	Workforce WorkforceParams

	SalesSalary      [NumNetworks]decimal.Decimal // € per head per month
	TransportPerUnit [NumNetworks]decimal.Decimal // € per unit sold, price-indexed

	// StudyFees maps each study letter A-H to its fixed fee in K€.
	StudyFees map[rune]decimal.Decimal

	StockoutPenaltyRate  decimal.Decimal
	RoyaltyRate          decimal.Decimal // recycled packaging, on channel revenue
	ContractPurchaseRate decimal.Decimal // of the channel's net price
	TaxesAndDutiesRate   decimal.Decimal // on revenue

	Finance FinanceParams
}

// Clone returns a deep copy so callers cannot alias the study fee map or the
// retirement schedule of a table held by an engine.
func (p Params) Clone() Params {
	out := p
	out.StudyFees = make(map[rune]decimal.Decimal, len(p.StudyFees))
	for k, v := range p.StudyFees {
		out.StudyFees[k] = v
	}
	out.Workforce.RetirementQuarters = append([]int(nil), p.Workforce.RetirementQuarters...)
	return out
}

// AbsenteeismFor returns the leave share for a quarter in 1..4.
func (p Params) AbsenteeismFor(quarter int) decimal.Decimal {
	return p.Workforce.Absenteeism[quarter-1]
}

// RetiresIn reports whether the retirement headcount departs in the quarter.
func (p Params) RetiresIn(quarter int) bool {
	for _, q := range p.Workforce.RetirementQuarters {
		if q == quarter {
			return true
		}
	}
	return false
}

// WorkerQuarterRate returns the fully loaded quarterly cost of one worker in
// K€ at the given wage index.
func (p Params) WorkerQuarterRate(wageIndex decimal.Decimal) decimal.Decimal {
	w := p.Workforce
	monthly := indexed(w.BaseMonthlyWage, wageIndex)
	return toKilo(monthly.Mul(Int(w.MonthsPerQuarter)).Mul(one.Add(w.SocialCharges)))
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the table for values the pipeline cannot work with.
func (p Params) Validate() error {
	var errs ValidationErrors
	check := func(field string, v decimal.Decimal, fraction bool) {
		if v.IsNegative() {
			errs = append(errs, paramError(field, v.String(), "must not be negative"))
			return
		}
		if fraction && v.GreaterThan(one) {
			errs = append(errs, paramError(field, v.String(), "must be a fraction in [0,1]"))
		}
	}

	for _, m := range MachineClasses {
		mp := p.Machines[m]
		for _, pr := range Products {
			check(fmt.Sprintf("machines.%s.yield.%s", m, pr), mp.Yield[pr], false)
		}
		check(fmt.Sprintf("machines.%s.purchase_price", m), mp.PurchasePrice, false)
		check(fmt.Sprintf("machines.%s.resale_ratio", m), mp.ResaleRatio, true)
		check(fmt.Sprintf("machines.%s.maintenance_cost", m), mp.MaintenanceCost, false)
		check(fmt.Sprintf("machines.%s.structure_cost", m), mp.StructureCost, false)
		if mp.LifeQuarters <= 0 {
			errs = append(errs, paramError(fmt.Sprintf("machines.%s.life_quarters", m), fmt.Sprint(mp.LifeQuarters), "must be positive"))
		}
		if mp.WorkersPerMachine < 0 {
			errs = append(errs, paramError(fmt.Sprintf("machines.%s.workers_per_machine", m), fmt.Sprint(mp.WorkersPerMachine), "must not be negative"))
		}
	}
	for _, pr := range Products {
		check(fmt.Sprintf("capacity_weight.%s", pr), p.CapacityWeight[pr], false)
		check(fmt.Sprintf("material_per_unit.%s", pr), p.MaterialPerUnit[pr], false)
	}
	for _, g := range Grades {
		check(fmt.Sprintf("material_price.%s", g), p.MaterialPrice[g], false)
	}
	check("productivity_loss", p.ProductivityLoss, true)
	check("energy_per_unit", p.EnergyPerUnit, false)
	check("subcontracting_per_unit", p.SubcontractingPerUnit, false)
	check("misc_per_unit", p.MiscPerUnit, false)

	w := p.Workforce
	check("workforce.base_monthly_wage", w.BaseMonthlyWage, false)
	check("workforce.social_charges", w.SocialCharges, false)
	check("workforce.temp_multiplier", w.TempMultiplier, false)
	check("workforce.short_time_rate", w.ShortTimeRate, true)
	if w.MonthsPerQuarter <= 0 {
		errs = append(errs, paramError("workforce.months_per_quarter", fmt.Sprint(w.MonthsPerQuarter), "must be positive"))
	}
	for i, a := range w.Absenteeism {
		check(fmt.Sprintf("workforce.absenteeism.q%d", i+1), a, true)
	}
	for _, q := range w.RetirementQuarters {
		if q < 1 || q > 4 {
			errs = append(errs, paramError("workforce.retirement_quarters", fmt.Sprint(q), "quarter must be in 1..4"))
		}
	}
	if w.RetirementHeadcount < 0 {
		errs = append(errs, paramError("workforce.retirement_headcount", fmt.Sprint(w.RetirementHeadcount), "must not be negative"))
	}
	if w.WorkshopHeadcount < 0 {
		errs = append(errs, paramError("workforce.workshop_headcount", fmt.Sprint(w.WorkshopHeadcount), "must not be negative"))
	}

	for _, n := range Networks {
		check(fmt.Sprintf("sales_salary.%s", n), p.SalesSalary[n], false)
		check(fmt.Sprintf("transport_per_unit.%s", n), p.TransportPerUnit[n], false)
	}
	letters := make([]rune, 0, len(p.StudyFees))
	for letter := range p.StudyFees {
		letters = append(letters, letter)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	for _, letter := range letters {
		if letter < 'A' || letter > 'H' {
			errs = append(errs, paramError("study_fees", string(letter), "study letters are A to H"))
			continue
		}
		check("study_fees."+string(letter), p.StudyFees[letter], false)
	}

	check("stockout_penalty_rate", p.StockoutPenaltyRate, false)
	check("royalty_rate", p.RoyaltyRate, true)
	check("contract_purchase_rate", p.ContractPurchaseRate, false)
	check("taxes_and_duties_rate", p.TaxesAndDutiesRate, true)

	f := p.Finance
	check("finance.long_term_rate", f.LongTermRate, true)
	check("finance.short_term_rate", f.ShortTermRate, true)
	check("finance.overdraft_multiple", f.OverdraftMultiple, false)
	check("finance.immediate_share", f.ImmediateShare, true)
	check("finance.factoring_fee_rate", f.FactoringFeeRate, true)
	check("finance.corporate_tax_rate", f.CorporateTaxRate, true)
	check("finance.dividend_cap_rate", f.DividendCapRate, true)
	check("finance.vat_rate", f.VATRate, true)

	return errs.OrNil()
}
