/*
engine.go - The settlement pipeline

PURPOSE:
  Engine.Settle runs one quarter through the ordered pipeline. Each stage is
  a plain function that receives the sections it depends on and returns its
  own section and warnings; Settle merges them into a fresh Result.

PIPELINE:
  1. validate             structural errors, nothing computed on failure
  2. resolveCapacity      clamp machines, maintenance factor
  3. resolveWorkforce     headcount vs staffing
  4. balanceMaterials     requirement per grade
  5. rollupProductionCosts
  6. resolveContracts     contract priority, stockout penalty
  7. recogniseRevenue     net prices, forecast cap, inventory variation
  8. rollupCommercialCosts (needs realized sales)
  9. valueProducts        contribution margins
 10. buildIncomeStatement operating result
 11. capDividends
 12. preFinancingCash
 13. settleFinancing      overdraft on the pre-financing position
 14. assessTax            financial, exceptional, tax, net
 15. projectCash          ending cash

CONCURRENCY:
  An Engine holds only its immutable parameter table. Settle may be called
  from any number of goroutines.

EXAMPLE:
  engine, err := settlement.NewEngine(edition.Classic())
  result, err := engine.Settle(decisions, state, nil)
  for _, w := range result.Warnings {
      fmt.Println(w.Kind, w.Message)
  }
*/
package settlement

import "fmt"

// Engine settles quarters against one parameter table.
type Engine struct {
	params Params
}

// NewEngine validates the parameter table and returns an engine holding a
// private copy of it.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parameter table %q: %w", p.Name, err)
	}
	return &Engine{params: p.Clone()}, nil
}

// Params returns a copy of the engine's parameter table.
func (e *Engine) Params() Params {
	return e.params.Clone()
}

// Edition returns the name of the engine's parameter table.
func (e *Engine) Edition() string {
	return e.params.Name
}

// Validate runs every structural check without settling. The error, if any,
// is a ValidationErrors listing each offending field.
func (e *Engine) Validate(d Decisions, s PeriodState, f Forecast) error {
	v := &validator{}
	validateState(v, s)
	validateDecisions(v, d, s)
	validateForecast(v, f)
	return v.errs.OrNil()
}

// Settle computes the outcome of one quarter.
func (e *Engine) Settle(d Decisions, s PeriodState, f Forecast) (*Result, error) {
	if err := e.Validate(d, s, f); err != nil {
		return nil, err
	}

	p := e.params
	b := &builder{result: &Result{Edition: p.Name, Quarter: s.Quarter}}

	capacity, w := resolveCapacity(p, d, s)
	b.warn(w)
	b.result.Capacity = capacity

	workforce, w := resolveWorkforce(p, d, s, capacity)
	b.warn(w)
	b.result.Workforce = workforce

	materials, w := balanceMaterials(p, d, s)
	b.warn(w)
	b.result.Materials = materials

	costs := rollupProductionCosts(p, d, s, capacity, workforce, materials)
	b.result.ProductionCosts = costs

	channels, w := resolveContracts(p, d, s)
	b.warn(w)

	channels, revenue := recogniseRevenue(p, d, s, f, channels, costs)
	b.result.Revenue = revenue

	commercial, channels := rollupCommercialCosts(p, d, s, channels)
	b.result.Commercial = commercial
	b.result.Channels = channels
	b.result.Products = valueProducts(p, s, channels, materials)

	income := buildIncomeStatement(p, costs, commercial, revenue)

	dividends, w := capDividends(p, d, s)
	b.warn(w)
	b.result.Dividends = dividends

	cash := preFinancingCash(p, d, s, materials, costs, commercial, revenue, income, dividends)
	financing := settleFinancing(p, d, s, revenue, cash.PreFinancing)
	b.result.Financing = financing

	income, w = assessTax(p, s, income, financing, machineDisposal(p, d))
	b.warn(w)
	b.result.Income = income

	cash, w = projectCash(cash, financing, income)
	b.warn(w)
	b.result.Cash = cash

	b.result.Echo = Echo{
		PurchasingPowerPct: d.Production.PurchasingPowerPct,
		SocialEffortPct:    d.Finance.SocialEffortPct,
		EarlyRepayment:     d.Finance.EarlyRepayment,
		Securities:         d.Securities.Trades,
	}

	return b.finish(), nil
}

// builder threads the result through the pipeline. Warnings are appended
// in stage order and never deduplicated.
type builder struct {
	result *Result
}

func (b *builder) warn(w []Warning) {
	b.result.Warnings = append(b.result.Warnings, w...)
}

func (b *builder) finish() *Result {
	if b.result.Warnings == nil {
		b.result.Warnings = []Warning{}
	}
	return b.result
}
