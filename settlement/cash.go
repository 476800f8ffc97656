package settlement

// =============================================================================
// CASH PROJECTION
// =============================================================================

// preFinancingCash projects every cash movement except financing charges
// and tax. Its ending position drives the overdraft charge.
//
// OtherOperating and NewShares are reported but stay out of the totals:
// the projection only moves cash on the lines the game's cash sheet lists.
func preFinancingCash(p Params, d Decisions, s PeriodState, materials MaterialsResult, costs ProductionCosts, commercial CommercialCosts, revenue RevenueResult, in IncomeStatement, dividends DividendResult) CashResult {
	out := CashResult{Opening: s.Cash}

	vat := one.Add(p.Finance.VATRate)
	dis := &out.Disbursements
	for _, g := range Grades {
		bought := materials.Grades[g].purchasedUnits()
		dis.RawMaterials = dis.RawMaterials.Add(toKilo(bought.Mul(p.MaterialPrice[g]).Mul(vat)))
	}
	dis.Personnel = costs.Labor.Add(commercial.SalesForce)
	for _, mc := range MachineClasses {
		dis.Machines = dis.Machines.Add(Int(d.Production.Machines[mc].Bought).Mul(p.Machines[mc].PurchasePrice))
	}
	dis.Advertising = commercial.Advertising
	dis.Studies = commercial.Studies
	dis.OtherOperating = commercial.Promotion.
		Add(costs.Maintenance).
		Add(costs.Energy).
		Add(costs.Subcontracting).
		Add(costs.Miscellaneous).
		Add(costs.Structure).
		Add(commercial.Transport).
		Add(revenue.Royalties).
		Add(revenue.PurchasedGoods).
		Add(in.TaxesAndDuties)
	dis.Dividends = dividends.Paid
	dis.CSR = d.CSR.Total()
	dis.Penalties = revenue.Penalties
	dis.Total = dis.RawMaterials.
		Add(dis.Personnel).
		Add(dis.Machines).
		Add(dis.Advertising).
		Add(dis.Studies).
		Add(dis.Dividends).
		Add(dis.CSR).
		Add(dis.Penalties)

	rec := &out.Receipts
	rec.Revenue = revenue.Total
	rec.Loans = d.Finance.LongTermLoan.Add(d.Finance.ShortTermLoan)
	rec.MachineDisposal = machineDisposal(p, d)
	rec.NewShares = d.Finance.NewShares.Mul(d.Finance.IssuePrice)
	rec.Total = rec.Revenue.Add(rec.Loans).Add(rec.MachineDisposal)

	out.PreFinancing = out.Opening.Add(rec.Total).Sub(dis.Total)
	return out
}

// projectCash adds financing charges and tax to the pre-financing position.
func projectCash(cash CashResult, financing FinancingResult, in IncomeStatement) (CashResult, []Warning) {
	dis := &cash.Disbursements
	dis.FinancingCharges = financing.Total
	dis.Tax = in.Tax
	dis.Total = dis.Total.Add(dis.FinancingCharges).Add(dis.Tax)

	cash.Ending = cash.Opening.Add(cash.Receipts.Total).Sub(dis.Total)
	if cash.Ending.IsNegative() {
		return cash, []Warning{newWarning(StageCash, WarnNegativeCash, "", cash.Ending.Neg(),
			"projected ending cash is negative: %s K€", cash.Ending.StringFixed(2))}
	}
	return cash, nil
}
