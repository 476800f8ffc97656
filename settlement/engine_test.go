package settlement_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var dec = settlement.Dec

func classicEngine(t *testing.T) *settlement.Engine {
	t.Helper()
	engine, err := settlement.NewEngine(edition.Classic())
	require.NoError(t, err)
	return engine
}

// openingState is a firm with a 15-machine M1 fleet and no workforce, so
// labor lines only appear when a test hires.
func openingState() settlement.PeriodState {
	return settlement.PeriodState{
		Quarter:    1,
		Fleet:      [settlement.NumMachineClasses]int{15, 0},
		Cash:       dec("1000"),
		Reserves:   dec("500"),
		PriceIndex: dec("100"),
		WageIndex:  dec("100"),
	}
}

func singleChannelPlan(c settlement.Channel, tariff string, productionKU string, quality string) settlement.Decisions {
	var d settlement.Decisions
	d.Channels[c] = settlement.ChannelDecision{
		TariffPrice:  dec(tariff),
		ProductionKU: dec(productionKU),
		Quality:      dec(quality),
	}
	d.Supply.Maintenance = true
	d.Production.Machines[settlement.MachineM1].Active = 15
	return d
}

func assertDec(t *testing.T, want, got decimal.Decimal, label ...string) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s %v", want.String(), got.String(), label)
}

func kinds(r *settlement.Result) []settlement.WarningKind {
	out := make([]settlement.WarningKind, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Kind
	}
	return out
}

// =============================================================================
// ENGINE CONSTRUCTION
// =============================================================================

func TestNewEngine_InvalidParams_Rejected(t *testing.T) {
	// GIVEN: A table with a resale ratio above one and no asset life
	p := edition.Classic()
	p.Machines[settlement.MachineM1].ResaleRatio = dec("1.5")
	p.Machines[settlement.MachineM2].LifeQuarters = 0

	// WHEN: Building an engine
	_, err := settlement.NewEngine(p)

	// THEN: Both fields are reported
	require.Error(t, err)
	assert.True(t, errors.Is(err, settlement.ErrInvalidParams))
	var verrs settlement.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestNewEngine_CopiesParams(t *testing.T) {
	// GIVEN: An engine built from a table the caller keeps
	p := edition.Classic()
	engine, err := settlement.NewEngine(p)
	require.NoError(t, err)

	// WHEN: The caller mutates its table
	p.StudyFees['H'] = dec("999")
	p.Workforce.RetirementQuarters[0] = 3

	// THEN: The engine's table is unchanged
	held := engine.Params()
	assertDec(t, dec("10"), held.StudyFees['H'])
	assert.Equal(t, []int{2, 4}, held.Workforce.RetirementQuarters)
}

// =============================================================================
// PURITY
// =============================================================================

func TestSettle_Deterministic(t *testing.T) {
	// GIVEN: A busy quarter touching every stage
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelACT, "20.60", "420", "80")
	d.Channels[settlement.ChannelBGS] = settlement.ChannelDecision{
		TariffPrice: dec("30"), RebatePct: dec("5"), ProductionKU: dec("50"),
		Quality: dec("100"), ContractSale: dec("70000"), RecycledPackaging: true,
	}
	d.Marketing.SalesForce = [settlement.NumNetworks]int{10, 6}
	d.Marketing.CommissionPct = dec("2")
	d.Marketing.StudiesABCD = "AC"
	d.Finance.Dividends = dec("80")
	s := openingState()
	s.Workforce = 580
	f := settlement.Forecast{settlement.ChannelACT: dec("300000")}

	// WHEN: Settling twice
	first, err := engine.Settle(d, s, f)
	require.NoError(t, err)
	second, err := engine.Settle(d, s, f)
	require.NoError(t, err)

	// THEN: Results are identical, down to the serialized bytes
	assert.Equal(t, first, second)
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSettle_DoesNotMutateForecast(t *testing.T) {
	// GIVEN: A forecast map owned by the caller
	engine := classicEngine(t)
	f := settlement.Forecast{settlement.ChannelACT: dec("1000")}

	// WHEN: Settling
	_, err := engine.Settle(singleChannelPlan(settlement.ChannelACT, "20", "10", "100"), openingState(), f)
	require.NoError(t, err)

	// THEN: The map is untouched
	assert.Len(t, f, 1)
	assertDec(t, dec("1000"), f[settlement.ChannelACT])
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestSettle_ZeroDecisions_NothingMoves(t *testing.T) {
	// GIVEN: Stock on hand, cash, an idle fleet and zero decisions
	engine := classicEngine(t)
	s := openingState()
	s.FinishedGoods[settlement.ChannelACT] = dec("10000")
	s.RawMaterials[settlement.GradeN] = dec("50000")

	// WHEN: Settling an empty decision bundle
	r, err := engine.Settle(settlement.Decisions{}, s, nil)
	require.NoError(t, err)

	// THEN: No cost, no revenue, cash unchanged
	assert.True(t, r.ProductionCosts.Total.IsZero())
	assert.True(t, r.Commercial.Total.IsZero())
	assert.True(t, r.Revenue.Total.IsZero())
	assertDec(t, s.Cash, r.Cash.Ending)
	assertDec(t, dec("10000"), r.Channels[settlement.ChannelACT].EndingInventory)
	assert.True(t, r.Income.NetResult.IsZero())
}

func TestSettle_ZeroDecisions_RetainedHeadcountIsPaid(t *testing.T) {
	// GIVEN: Zero decisions against a firm that still employs 100 people
	engine := classicEngine(t)
	s := openingState()
	s.Workforce = 100

	// WHEN: Settling an empty decision bundle
	r, err := engine.Settle(settlement.Decisions{}, s, nil)
	require.NoError(t, err)

	// THEN: 6 absent and 20 in the workshop are paid in full, the other 74
	//       go on short-time at 60%; labor is the only cost and the only outflow
	w := r.Workforce
	assert.Equal(t, 6, w.Absentees)
	assert.Equal(t, 20, w.Workshop)
	assert.Equal(t, 74, w.Surplus)
	assertDec(t, dec("3.99765"), r.ProductionCosts.WorkerRate) // 919 x 3 x 1.45 / 1000
	assertDec(t, dec("103.9389"), r.ProductionCosts.LaborBreakdown.Idle)
	assertDec(t, dec("177.49566"), r.ProductionCosts.LaborBreakdown.ShortTime)
	assertDec(t, dec("281.43456"), r.ProductionCosts.Labor)
	assertDec(t, r.ProductionCosts.Labor, r.ProductionCosts.Total)
	assert.True(t, r.Commercial.Total.IsZero())
	assert.True(t, r.Revenue.Total.IsZero())
	assertDec(t, dec("-281.43456"), r.Income.NetResult)
	assertDec(t, dec("718.56544"), r.Cash.Ending)
}

func TestSettle_SingleChannel420KU(t *testing.T) {
	// GIVEN: A-CT at 20.60 €, 420 KU at quality 100, empty stock
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelACT, "20.60", "420", "100")

	// WHEN: Settling
	r, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: Material, stock and revenue follow directly from the plan
	assertDec(t, dec("2100000"), r.Materials.Grades[settlement.GradeN].Required) // 420 000 x 5
	assert.True(t, r.Materials.Grades[settlement.GradeS].Required.IsZero())
	ch := r.Channels[settlement.ChannelACT]
	assertDec(t, dec("420000"), ch.StandardStock)
	assertDec(t, dec("420000"), ch.StandardSold)
	assertDec(t, dec("8652"), ch.Revenue)
	assertDec(t, dec("8652"), r.Revenue.Total)
	assert.False(t, r.HasWarning(settlement.WarnCapacityExceeded))
}

func TestSettle_ContractStockout_PenaltyOnDelta(t *testing.T) {
	// GIVEN: A-GS can dispose of 16 000 units but has contracted 20 000;
	//        the highest tariff of the quarter is B-CT at 30 €
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelAGS, "25", "10", "100")
	d.Channels[settlement.ChannelAGS].ContractPurchase = dec("1000")
	d.Channels[settlement.ChannelAGS].ContractSale = dec("20000")
	d.Channels[settlement.ChannelBCT] = settlement.ChannelDecision{TariffPrice: dec("30"), ProductionKU: dec("5"), Quality: dec("100")}
	s := openingState()
	s.FinishedGoods[settlement.ChannelAGS] = dec("5000")

	// WHEN: Settling
	r, err := engine.Settle(d, s, nil)
	require.NoError(t, err)

	// THEN: Penalty = 4 000 x 30 x 0.20 / 1000, one warning naming A-GS
	ch := r.Channels[settlement.ChannelAGS]
	assertDec(t, dec("16000"), ch.Disposable)
	assertDec(t, dec("4000"), ch.Shortfall)
	assertDec(t, dec("24"), ch.Penalty)
	assert.True(t, ch.StandardStock.IsZero())
	assertDec(t, dec("16000"), ch.ContractFulfilled)
	assertDec(t, dec("24"), r.Revenue.Penalties)

	stockouts := r.WarningsOf(settlement.WarnContractStockout)
	require.Len(t, stockouts, 1)
	assert.Equal(t, "A-GS", stockouts[0].Subject)
	assert.Equal(t, settlement.StageContracts, stockouts[0].Stage)
	assertDec(t, dec("4000"), stockouts[0].Magnitude)

	// B-CT honours its (empty) contract at no cost.
	assert.True(t, r.Channels[settlement.ChannelBCT].Penalty.IsZero())
	assertDec(t, dec("5000"), r.Channels[settlement.ChannelBCT].StandardStock)
}

func TestSettle_NoMaintenance_ScalesEveryCapacity(t *testing.T) {
	// GIVEN: A mixed fleet, settled with and without maintenance
	engine := classicEngine(t)
	s := openingState()
	s.Fleet = [settlement.NumMachineClasses]int{15, 3}
	d := singleChannelPlan(settlement.ChannelACT, "20", "100", "100")
	d.Production.Machines[settlement.MachineM2].Active = 3

	withMaintenance, err := engine.Settle(d, s, nil)
	require.NoError(t, err)
	d.Supply.Maintenance = false
	without, err := engine.Settle(d, s, nil)
	require.NoError(t, err)

	// THEN: Every capacity value is exactly 0.85 times its maintained value
	factor := dec("0.85")
	for _, mc := range settlement.MachineClasses {
		for _, p := range settlement.Products {
			want := withMaintenance.Capacity.Machines[mc].Capacity[p].Mul(factor)
			assertDec(t, want, without.Capacity.Machines[mc].Capacity[p], mc.String()+"/"+p.String())
		}
	}
	assert.True(t, without.HasWarning(settlement.WarnMaintenanceSkipped))
	assert.False(t, withMaintenance.HasWarning(settlement.WarnMaintenanceSkipped))
	assert.True(t, without.ProductionCosts.Maintenance.IsZero())
	assertDec(t, dec("171"), withMaintenance.ProductionCosts.Maintenance) // 15x9 + 3x12
}

func TestSettle_ForecastCapsOpenMarketSales(t *testing.T) {
	// GIVEN: 420 KU available and a forecast of 300 000 units
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelACT, "20.60", "420", "100")
	f := settlement.Forecast{settlement.ChannelACT: dec("300000")}

	// WHEN: Settling
	r, err := engine.Settle(d, openingState(), f)
	require.NoError(t, err)

	// THEN: Only the forecast volume is recognised; the rest is inventory
	ch := r.Channels[settlement.ChannelACT]
	assertDec(t, dec("300000"), ch.StandardSold)
	assertDec(t, dec("6180"), ch.Revenue)
	assertDec(t, dec("120000"), ch.EndingInventory)
	assertDec(t, dec("120000"), r.Products[settlement.ProductA].EndingInventory)

	// Inventory gain valued at the blended cost of the quarter.
	blended := r.ProductionCosts.Total.Div(dec("420000"))
	assertDec(t, blended, r.Revenue.BlendedUnitCost)
	assertDec(t, dec("120000").Mul(blended), r.Revenue.InventoryVariation)
}

func TestSettle_GSRebateLowersNetPrice(t *testing.T) {
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelBGS, "40", "10", "100")
	d.Channels[settlement.ChannelBGS].RebatePct = dec("10")

	r, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	assertDec(t, dec("36"), r.Channels[settlement.ChannelBGS].NetPrice)
	assertDec(t, dec("360"), r.Channels[settlement.ChannelBGS].Revenue) // 10 000 x 36 / 1000
}

// =============================================================================
// FINANCING, TAX, CASH
// =============================================================================

func TestSettle_Overdraft_NegativeCashAndLoss(t *testing.T) {
	// GIVEN: Opening cash of -1000 K€ and a maintained idle fleet
	engine := classicEngine(t)
	s := openingState()
	s.Cash = dec("-1000")
	var d settlement.Decisions
	d.Supply.Maintenance = true

	// WHEN: Settling
	r, err := engine.Settle(d, s, nil)
	require.NoError(t, err)

	// THEN: Overdraft = 1000 x 0.04 x 1.25 and cash falls by it
	assertDec(t, dec("-1000"), r.Cash.PreFinancing)
	assertDec(t, dec("50"), r.Financing.Overdraft)
	assertDec(t, dec("-1050"), r.Cash.Ending)
	assertDec(t, dec("-50"), r.Income.NetResult)
	assert.Equal(t, []settlement.WarningKind{settlement.WarnNetLoss, settlement.WarnNegativeCash}, kinds(r))
}

func TestSettle_TaxOffsetByPriorLoss(t *testing.T) {
	// GIVEN: A profitable quarter after a 1000 K€ loss
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelACT, "20.60", "420", "100")
	s := openingState()
	s.PriorResult = dec("-1000")

	// WHEN: Settling
	r, err := engine.Settle(d, s, nil)
	require.NoError(t, err)

	// THEN: The base is reduced by the prior loss
	in := r.Income
	require.True(t, in.PreTaxResult.GreaterThan(dec("1000")))
	assertDec(t, in.PreTaxResult.Sub(dec("1000")), in.TaxableBase)
	assertDec(t, in.TaxableBase.Mul(dec("0.30")), in.Tax)
	assertDec(t, in.PreTaxResult.Sub(in.Tax), in.NetResult)
	assertDec(t, in.Tax, r.Cash.Disbursements.Tax)
}

func TestSettle_LossMakingQuarter_NoTax(t *testing.T) {
	engine := classicEngine(t)
	s := openingState()
	s.Workforce = 300

	r, err := engine.Settle(settlement.Decisions{Supply: settlement.SupplyDecision{Maintenance: true}}, s, nil)
	require.NoError(t, err)

	assert.True(t, r.Income.PreTaxResult.IsNegative())
	assert.True(t, r.Income.Tax.IsZero())
	assert.True(t, r.HasWarning(settlement.WarnNetLoss))
}

func TestSettle_CashLines(t *testing.T) {
	// GIVEN: Spot and contract material purchases, a machine sale, a loan
	//        and a share issue
	engine := classicEngine(t)
	var d settlement.Decisions
	d.Supply.Maintenance = true
	d.Supply.Orders[settlement.GradeN] = settlement.MaterialOrder{OrderKU: dec("100"), ContractQuarters: 2}
	d.Supply.Orders[settlement.GradeS] = settlement.MaterialOrder{OrderKU: dec("50"), SpotKU: dec("10")}
	d.Production.Machines[settlement.MachineM1].Sold = 2
	d.Production.Machines[settlement.MachineM2].Bought = 1
	d.Finance.LongTermLoan = dec("400")
	d.Finance.LongTermQuarters = 4
	d.Finance.NewShares = dec("10")
	d.Finance.IssuePrice = dec("12")

	// WHEN: Settling
	r, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: Uncontracted orders are not delivered; spot is
	dis := r.Cash.Disbursements
	// (100 000 x 0.80 + 10 000 x 0.70) x 1.20 / 1000
	assertDec(t, dec("104.4"), dis.RawMaterials)
	assertDec(t, dec("350"), dis.Machines)
	rec := r.Cash.Receipts
	assertDec(t, dec("350"), rec.MachineDisposal) // 2 x 250 x 0.70
	assertDec(t, dec("400"), rec.Loans)
	assertDec(t, dec("120"), rec.NewShares)
	assertDec(t, dec("350"), r.Income.ExceptionalResult)
	assertDec(t, r.Cash.Opening.Add(rec.Total).Sub(dis.Total), r.Cash.Ending)
}

func TestSettle_CashDiscountAndFactoring(t *testing.T) {
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelACT, "20", "100", "100")
	d.Production.Machines[settlement.MachineM1].Active = 3
	d.Finance.CashDiscountPct = dec("2")
	d.Finance.FactoredReceivables = dec("200")
	s := openingState()
	s.LongTermDebt = dec("1000")
	s.ShortTermDebt = dec("100")

	r, err := engine.Settle(d, s, nil)
	require.NoError(t, err)

	f := r.Financing
	assertDec(t, dec("30"), f.LongTermInterest)
	assertDec(t, dec("4"), f.ShortTermInterest)
	assertDec(t, dec("12"), f.CashDiscount) // 2000 x 0.30 x 0.02
	assertDec(t, dec("5"), f.FactoringFee)
	assert.True(t, f.Overdraft.IsZero())
	assertDec(t, dec("51"), f.Total)
	assertDec(t, f.Total, r.Income.FinancialCharges)
}

// =============================================================================
// WARNING ORDER
// =============================================================================

func TestSettle_WarningsFollowStageOrder(t *testing.T) {
	// GIVEN: An over-ambitious plan: too many machines, too much output,
	//        no workers, no material, no maintenance
	engine := classicEngine(t)
	d := singleChannelPlan(settlement.ChannelCCT, "50", "800", "100")
	d.Production.Machines[settlement.MachineM1].Active = 20
	d.Supply.Maintenance = false

	// WHEN: Settling
	r, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: Related warnings from several stages, in pipeline order
	want := []settlement.WarningKind{
		settlement.WarnMaintenanceSkipped,
		settlement.WarnMachinesClamped,
		settlement.WarnCapacityExceeded,
		settlement.WarnWorkforceShortfall,
		settlement.WarnMaterialShortage,
	}
	assert.Equal(t, want, kinds(r)[:len(want)])
	clamped := r.WarningsOf(settlement.WarnMachinesClamped)
	require.Len(t, clamped, 1)
	assertDec(t, dec("5"), clamped[0].Magnitude)
	assert.Equal(t, 15, r.Capacity.Machines[settlement.MachineM1].Active)
}

// =============================================================================
// COST LINES
// =============================================================================

// recycledPlan is A-CT at 20.60 €, 420 KU, 0.50 € promotion per unit and
// recycled packaging on the 15-machine fleet.
func recycledPlan() settlement.Decisions {
	d := singleChannelPlan(settlement.ChannelACT, "20.60", "420", "100")
	d.Channels[settlement.ChannelACT].PromotionPerUnit = dec("0.5")
	d.Channels[settlement.ChannelACT].RecycledPackaging = true
	return d
}

func TestSettle_FleetAndVariableCostLines(t *testing.T) {
	engine := classicEngine(t)

	r, err := engine.Settle(recycledPlan(), openingState(), nil)
	require.NoError(t, err)

	c := r.ProductionCosts
	assertDec(t, dec("1680"), c.Material)      // 2 100 000 x 0.80 / 1000
	assertDec(t, dec("93.75"), c.Depreciation) // 15 x 250 / 40
	assertDec(t, dec("135"), c.Maintenance)    // 15 x 9
	assertDec(t, dec("90"), c.Structure)       // 15 x 6 at index 100
	assertDec(t, dec("189"), c.Energy)         // 420 000 x 0.45 / 1000
	assertDec(t, dec("126"), c.Subcontracting) // 420 000 x 0.30 / 1000
	assertDec(t, dec("84"), c.Miscellaneous)   // 420 000 x 0.20 / 1000
	assertDec(t, dec("210"), r.Commercial.Promotion)
	assertDec(t, dec("147"), r.Commercial.Transport) // 420 000 x 0.35 / 1000
}

func TestSettle_StructureFollowsPriceIndex(t *testing.T) {
	engine := classicEngine(t)
	s := openingState()
	s.PriceIndex = dec("110")

	r, err := engine.Settle(recycledPlan(), s, nil)
	require.NoError(t, err)

	assertDec(t, dec("99"), r.ProductionCosts.Structure)
	assertDec(t, dec("93.75"), r.ProductionCosts.Depreciation, "depreciation is not indexed")
}

func TestSettle_RecycledPackagingRoyalty(t *testing.T) {
	// GIVEN: The same plan with and without recycled packaging
	engine := classicEngine(t)
	d := recycledPlan()
	with, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)
	d.Channels[settlement.ChannelACT].RecycledPackaging = false
	without, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: The royalty is 2% of channel revenue and nothing otherwise
	assertDec(t, dec("173.04"), with.Channels[settlement.ChannelACT].Royalty) // 8652 x 0.02
	assertDec(t, dec("173.04"), with.Revenue.Royalties)
	assert.True(t, without.Channels[settlement.ChannelACT].Royalty.IsZero())
	assertDec(t, without.Income.ExternalCharges.Add(dec("173.04")), with.Income.ExternalCharges)
}

func TestSettle_ContributionMarginPerProduct(t *testing.T) {
	engine := classicEngine(t)

	r, err := engine.Settle(recycledPlan(), openingState(), nil)
	require.NoError(t, err)

	// 8652 - (1680 material + 399 variable + 210 promotion + 147 transport + 173.04 royalty)
	a := r.Products[settlement.ProductA]
	assertDec(t, dec("8652"), a.Revenue)
	assertDec(t, dec("2609.04"), a.VariableCost)
	assertDec(t, dec("6042.96"), a.ContributionMargin)
	for _, p := range []settlement.Product{settlement.ProductB, settlement.ProductC} {
		assert.True(t, r.Products[p].ContributionMargin.IsZero(), p.String())
	}
}

func TestSettle_DebtInterest(t *testing.T) {
	// GIVEN: An idle firm carrying 2000 K€ long-term and 500 K€ short-term debt
	engine := classicEngine(t)
	s := openingState()
	s.LongTermDebt = dec("2000")
	s.ShortTermDebt = dec("500")

	r, err := engine.Settle(settlement.Decisions{}, s, nil)
	require.NoError(t, err)

	// THEN: Interest is charged on the opening balances and paid in cash
	assertDec(t, dec("60"), r.Financing.LongTermInterest)  // 2000 x 0.03
	assertDec(t, dec("20"), r.Financing.ShortTermInterest) // 500 x 0.04
	assertDec(t, dec("-80"), r.Income.FinancialResult)
	assertDec(t, dec("80"), r.Cash.Disbursements.FinancingCharges)
	assertDec(t, dec("920"), r.Cash.Ending)
}

// =============================================================================
// CASH PROJECTION
// =============================================================================

func TestSettle_CashMovesOnListedLinesOnly(t *testing.T) {
	// GIVEN: A selling quarter with promotion, a share issue, CSR spend and
	//        a dividend
	engine := classicEngine(t)
	d := recycledPlan()
	d.Finance.NewShares = dec("10")
	d.Finance.IssuePrice = dec("20")
	d.Finance.Dividends = dec("40")
	d.CSR.Recycling = dec("30")

	// WHEN: Settling
	r, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: Share proceeds and other operating expenses are reported only
	rec, dis := r.Cash.Receipts, r.Cash.Disbursements
	assertDec(t, dec("200"), rec.NewShares)
	assertDec(t, dec("1240.56"), dis.OtherOperating)
	assertDec(t, rec.Revenue.Add(rec.Loans).Add(rec.MachineDisposal), rec.Total)

	listed := dis.RawMaterials.
		Add(dis.Personnel).
		Add(dis.Machines).
		Add(dis.Advertising).
		Add(dis.Studies).
		Add(dis.Dividends).
		Add(dis.CSR).
		Add(dis.Penalties).
		Add(dis.FinancingCharges).
		Add(dis.Tax)
	assertDec(t, listed, dis.Total)
	assertDec(t, dec("30"), dis.CSR)
	assertDec(t, dec("40"), dis.Dividends)

	want := r.Cash.Opening.Add(rec.Revenue).Add(rec.Loans).Add(rec.MachineDisposal).Sub(listed)
	assertDec(t, want, r.Cash.Ending)
	assertDec(t, want.Add(dis.FinancingCharges).Add(dis.Tax), r.Cash.PreFinancing)
}

func TestSettle_CSRIsCashOnly(t *testing.T) {
	// GIVEN: The same quarter with and without 50 K€ of CSR spend
	engine := classicEngine(t)
	d := recycledPlan()
	base, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)
	d.CSR.AdaptedFacilities = dec("50")
	withCSR, err := engine.Settle(d, openingState(), nil)
	require.NoError(t, err)

	// THEN: The operating result is unchanged and cash falls by the spend
	assertDec(t, base.Income.ExternalCharges, withCSR.Income.ExternalCharges)
	assertDec(t, base.Income.OperatingResult, withCSR.Income.OperatingResult)
	assertDec(t, base.Cash.Ending.Sub(dec("50")), withCSR.Cash.Ending)
}
