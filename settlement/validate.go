package settlement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STRUCTURAL VALIDATION
// =============================================================================

// validator accumulates field errors so one call reports every problem.
type validator struct {
	errs ValidationErrors
}

func (v *validator) add(e *InputError) { v.errs = append(v.errs, e) }

func (v *validator) nonNegative(mk func(field, value, reason string) *InputError, field string, d decimal.Decimal) {
	if d.IsNegative() {
		v.add(mk(field, d.String(), "must not be negative"))
	}
}

func (v *validator) percent(mk func(field, value, reason string) *InputError, field string, d decimal.Decimal) {
	if d.IsNegative() || d.GreaterThan(hundred) {
		v.add(mk(field, d.String(), "must be within [0,100]"))
	}
}

func (v *validator) count(mk func(field, value, reason string) *InputError, field string, n int) {
	if n < 0 {
		v.add(mk(field, fmt.Sprint(n), "must not be negative"))
	}
}

// ValidateDecisions checks the decision bundle against the opening state.
// The state is needed because machines cannot be sold beyond the owned fleet.
func ValidateDecisions(d Decisions, s PeriodState) error {
	v := &validator{}
	validateDecisions(v, d, s)
	return v.errs.OrNil()
}

func validateDecisions(v *validator, d Decisions, s PeriodState) {
	for _, c := range Channels {
		cd := d.Channels[c]
		prefix := "channels." + c.String() + "."
		v.nonNegative(decisionError, prefix+"tariff_price", cd.TariffPrice)
		v.nonNegative(decisionError, prefix+"promotion_per_unit", cd.PromotionPerUnit)
		v.percent(decisionError, prefix+"rebate_pct", cd.RebatePct)
		if c.Network() == NetworkCT && !cd.RebatePct.IsZero() {
			v.add(decisionError(prefix+"rebate_pct", cd.RebatePct.String(), "rebates apply to the GS network only"))
		}
		v.nonNegative(decisionError, prefix+"production_ku", cd.ProductionKU)
		v.percent(decisionError, prefix+"quality", cd.Quality)
		v.nonNegative(decisionError, prefix+"contract_sale", cd.ContractSale)
		v.nonNegative(decisionError, prefix+"contract_purchase", cd.ContractPurchase)
	}

	m := d.Marketing
	for _, n := range Networks {
		v.count(decisionError, "marketing.sales_force."+n.String(), m.SalesForce[n])
		v.nonNegative(decisionError, "marketing.advertising."+n.String(), m.Advertising[n])
	}
	v.percent(decisionError, "marketing.commission_pct", m.CommissionPct)
	v.nonNegative(decisionError, "marketing.bonus_per_head", m.BonusPerHead)
	if _, err := ParseStudies(m.StudiesABCD, 'A', 'D'); err != nil {
		v.add(decisionError("marketing.studies_abcd", m.StudiesABCD, err.Error()))
	}
	if _, err := ParseStudies(m.StudiesEFGH, 'E', 'H'); err != nil {
		v.add(decisionError("marketing.studies_efgh", m.StudiesEFGH, err.Error()))
	}

	for _, g := range Grades {
		o := d.Supply.Orders[g]
		prefix := "supply." + g.String() + "."
		v.nonNegative(decisionError, prefix+"order_ku", o.OrderKU)
		v.nonNegative(decisionError, prefix+"spot_ku", o.SpotKU)
		if o.ContractQuarters < 0 || o.ContractQuarters > 4 {
			v.add(decisionError(prefix+"contract_quarters", fmt.Sprint(o.ContractQuarters), "must be within 0..4"))
		}
	}

	for _, mc := range MachineClasses {
		md := d.Production.Machines[mc]
		prefix := "production." + mc.String() + "."
		v.count(decisionError, prefix+"active", md.Active)
		v.count(decisionError, prefix+"sold", md.Sold)
		v.count(decisionError, prefix+"bought", md.Bought)
		if md.Sold > s.Fleet[mc] && s.Fleet[mc] >= 0 {
			v.add(decisionError(prefix+"sold", fmt.Sprint(md.Sold), fmt.Sprintf("exceeds owned fleet of %d", s.Fleet[mc])))
		}
	}

	v.nonNegative(decisionError, "csr.recycling", d.CSR.Recycling)
	v.nonNegative(decisionError, "csr.adapted_facilities", d.CSR.AdaptedFacilities)
	v.nonNegative(decisionError, "csr.research_development", d.CSR.ResearchDevelopment)

	f := d.Finance
	v.nonNegative(decisionError, "finance.long_term_loan", f.LongTermLoan)
	switch {
	case f.LongTermQuarters < 0 || f.LongTermQuarters > 8:
		v.add(decisionError("finance.long_term_quarters", fmt.Sprint(f.LongTermQuarters), "must be within 0..8"))
	case f.LongTermLoan.IsPositive() && f.LongTermQuarters < 2:
		v.add(decisionError("finance.long_term_quarters", fmt.Sprint(f.LongTermQuarters), "a long-term loan runs 2 to 8 quarters"))
	}
	v.nonNegative(decisionError, "finance.short_term_loan", f.ShortTermLoan)
	v.nonNegative(decisionError, "finance.factored_receivables", f.FactoredReceivables)
	v.percent(decisionError, "finance.cash_discount_pct", f.CashDiscountPct)
	v.nonNegative(decisionError, "finance.dividends", f.Dividends)
	v.percent(decisionError, "finance.social_effort_pct", f.SocialEffortPct)
	v.nonNegative(decisionError, "finance.new_shares", f.NewShares)
	v.nonNegative(decisionError, "finance.issue_price", f.IssuePrice)
	if f.NewShares.IsPositive() && !f.IssuePrice.IsPositive() {
		v.add(decisionError("finance.issue_price", f.IssuePrice.String(), "a share issue needs a positive price"))
	}
}

// ValidateState checks the opening period state.
func ValidateState(s PeriodState) error {
	v := &validator{}
	validateState(v, s)
	return v.errs.OrNil()
}

func validateState(v *validator, s PeriodState) {
	if s.Quarter < 1 || s.Quarter > 4 {
		v.add(stateError("quarter", fmt.Sprint(s.Quarter), "must be within 1..4"))
	}
	for _, c := range Channels {
		v.nonNegative(stateError, "finished_goods."+c.String(), s.FinishedGoods[c])
	}
	for _, g := range Grades {
		v.nonNegative(stateError, "raw_materials."+g.String(), s.RawMaterials[g])
	}
	v.count(stateError, "workforce", s.Workforce)
	for _, mc := range MachineClasses {
		v.count(stateError, "fleet."+mc.String(), s.Fleet[mc])
	}
	v.nonNegative(stateError, "long_term_debt", s.LongTermDebt)
	v.nonNegative(stateError, "short_term_debt", s.ShortTermDebt)
	if !s.PriceIndex.IsPositive() {
		v.add(stateError("price_index", s.PriceIndex.String(), "must be positive"))
	}
	if !s.WageIndex.IsPositive() {
		v.add(stateError("wage_index", s.WageIndex.String(), "must be positive"))
	}
}

// ValidateForecast checks a forecast override. A nil forecast is valid.
func ValidateForecast(f Forecast) error {
	v := &validator{}
	validateForecast(v, f)
	return v.errs.OrNil()
}

func validateForecast(v *validator, f Forecast) {
	for _, c := range f.Channels() {
		if !c.Valid() {
			v.add(forecastError("channel", c.String(), "unknown channel"))
			continue
		}
		v.nonNegative(forecastError, "volume."+c.String(), f[c])
	}
}

// =============================================================================
// STUDY CODES
// =============================================================================

// ParseStudies returns the distinct study letters of one code. The code must
// use letters from lo to hi; "N" or an empty string selects no study.
// Lower-case letters are accepted.
func ParseStudies(code string, lo, hi rune) ([]rune, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == "N" {
		return nil, nil
	}
	seen := make(map[rune]bool, 4)
	var letters []rune
	for _, r := range code {
		if r < lo || r > hi {
			return nil, fmt.Errorf("study letter %q outside %c-%c", r, lo, hi)
		}
		if !seen[r] {
			seen[r] = true
			letters = append(letters, r)
		}
	}
	return letters, nil
}
