/*
income.go - Income statement, dividends, financing and tax

PURPOSE:
  Turns the cost and revenue sections into the income statement. The
  statement is built in three passes because the overdraft charge depends
  on the pre-financing cash position, which in turn depends on the
  operating outflows and the dividends actually paid:

    buildIncomeStatement -> capDividends -> preFinancingCash
      -> settleFinancing -> exceptionalResult -> assessTax

RESULT LINES:
  operating   = revenue + inventory variation - material - personnel
                - depreciation - external charges - taxes and duties
  financial   = financial income (zero) - financial charges
  exceptional = machine disposal proceeds
  pre-tax     = operating + financial + exceptional
  net         = pre-tax - tax

SEE ALSO:
  - cash.go: Pre-financing and ending cash
*/
package settlement

import "github.com/shopspring/decimal"

// externalCharges sums every operating charge that is neither material,
// personnel nor depreciation. CSR spend is a cash outflow only.
func externalCharges(costs ProductionCosts, commercial CommercialCosts, revenue RevenueResult) decimal.Decimal {
	return costs.Maintenance.
		Add(costs.Energy).
		Add(costs.Subcontracting).
		Add(costs.Miscellaneous).
		Add(costs.Structure).
		Add(commercial.Promotion).
		Add(commercial.Advertising).
		Add(commercial.Transport).
		Add(commercial.Studies).
		Add(revenue.Royalties).
		Add(revenue.PurchasedGoods).
		Add(revenue.Penalties)
}

// buildIncomeStatement fills the operating part of the statement.
func buildIncomeStatement(p Params, costs ProductionCosts, commercial CommercialCosts, revenue RevenueResult) IncomeStatement {
	in := IncomeStatement{
		Revenue:            revenue.Total,
		InventoryVariation: revenue.InventoryVariation,
		Material:           costs.Material,
		Personnel:          costs.Labor.Add(commercial.SalesForce),
		Depreciation:       costs.Depreciation,
		ExternalCharges:    externalCharges(costs, commercial, revenue),
		TaxesAndDuties:     revenue.Total.Mul(p.TaxesAndDutiesRate),
	}
	in.OperatingResult = in.Revenue.
		Add(in.InventoryVariation).
		Sub(in.Material).
		Sub(in.Personnel).
		Sub(in.Depreciation).
		Sub(in.ExternalCharges).
		Sub(in.TaxesAndDuties)
	return in
}

// capDividends limits the payout to a share of reserves plus the prior
// result. A negative base allows no dividend at all.
func capDividends(p Params, d Decisions, s PeriodState) (DividendResult, []Warning) {
	out := DividendResult{
		Requested: d.Finance.Dividends,
		Cap:       maxDec(zero, p.Finance.DividendCapRate.Mul(s.Reserves.Add(s.PriorResult))),
	}
	out.Paid = minDec(out.Requested, out.Cap)
	if out.Requested.GreaterThan(out.Cap) {
		out.Clipped = true
		excess := out.Requested.Sub(out.Cap)
		return out, []Warning{newWarning(StageDividends, WarnDividendCapped, "", excess,
			"dividends of %s K€ capped at %s K€", out.Requested.StringFixed(2), out.Cap.StringFixed(2))}
	}
	return out, nil
}

// settleFinancing computes the financial charges of the quarter. The
// overdraft charge applies to a negative pre-financing cash position.
func settleFinancing(p Params, d Decisions, s PeriodState, revenue RevenueResult, preFinancing decimal.Decimal) FinancingResult {
	fp := p.Finance
	out := FinancingResult{
		LongTermInterest:  s.LongTermDebt.Mul(fp.LongTermRate),
		ShortTermInterest: s.ShortTermDebt.Mul(fp.ShortTermRate),
		CashDiscount:      revenue.Total.Mul(fp.ImmediateShare).Mul(pct(d.Finance.CashDiscountPct)),
		FactoringFee:      d.Finance.FactoredReceivables.Mul(fp.FactoringFeeRate),
	}
	if preFinancing.IsNegative() {
		out.Overdraft = preFinancing.Neg().Mul(fp.ShortTermRate).Mul(fp.OverdraftMultiple)
	}
	out.Total = out.LongTermInterest.
		Add(out.ShortTermInterest).
		Add(out.Overdraft).
		Add(out.CashDiscount).
		Add(out.FactoringFee)
	return out
}

// machineDisposal returns the proceeds of the machines sold this quarter.
// Machines leave the fleet fully depreciated, so proceeds are the gain.
func machineDisposal(p Params, d Decisions) decimal.Decimal {
	total := zero
	for _, mc := range MachineClasses {
		mp := p.Machines[mc]
		sold := Int(d.Production.Machines[mc].Sold)
		total = total.Add(sold.Mul(mp.PurchasePrice).Mul(mp.ResaleRatio))
	}
	return total
}

// assessTax completes the statement: financial and exceptional results, the
// taxable base offset by a prior loss, the tax and the net result.
func assessTax(p Params, s PeriodState, in IncomeStatement, financing FinancingResult, exceptional decimal.Decimal) (IncomeStatement, []Warning) {
	in.FinancialIncome = zero
	in.FinancialCharges = financing.Total
	in.FinancialResult = in.FinancialIncome.Sub(in.FinancialCharges)
	in.ExceptionalResult = exceptional
	in.PreTaxResult = in.OperatingResult.Add(in.FinancialResult).Add(in.ExceptionalResult)

	in.TaxableBase = in.PreTaxResult.Add(minDec(zero, s.PriorResult))
	if in.TaxableBase.IsPositive() {
		in.Tax = in.TaxableBase.Mul(p.Finance.CorporateTaxRate)
	}
	in.NetResult = in.PreTaxResult.Sub(in.Tax)

	if in.NetResult.IsNegative() {
		return in, []Warning{newWarning(StageIncome, WarnNetLoss, "", in.NetResult.Neg(),
			"net loss of %s K€", in.NetResult.Neg().StringFixed(2))}
	}
	return in, nil
}
