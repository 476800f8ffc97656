package settlement

import "github.com/shopspring/decimal"

// =============================================================================
// DECISION BUNDLE - What the firm decided for the quarter
// =============================================================================

// ChannelDecision is the decision for one product on one network.
type ChannelDecision struct {
	TariffPrice       decimal.Decimal // € per unit
	PromotionPerUnit  decimal.Decimal // € per unit produced
	RebatePct         decimal.Decimal // GS network only, 0-100
	ProductionKU      decimal.Decimal // thousand units
	Quality           decimal.Decimal // 0-100; 100 consumes only grade N
	RecycledPackaging bool
	ContractSale      decimal.Decimal // units
	ContractPurchase  decimal.Decimal // units
}

// MarketingDecision covers the sales force, advertising and studies.
type MarketingDecision struct {
	SalesForce    [NumNetworks]int
	CommissionPct decimal.Decimal // CT network only, % of tariff revenue
	BonusPerHead  decimal.Decimal // GS network only, € per salesperson
	Advertising   [NumNetworks]decimal.Decimal

	// StudiesABCD holds letters A-D, StudiesEFGH letters E-H; "N" or "" means none.
	StudiesABCD string
	StudiesEFGH string
}

// MaterialOrder is the supply decision for one raw-material grade.
type MaterialOrder struct {
	OrderKU          decimal.Decimal // delivered this quarter when ContractQuarters > 0
	ContractQuarters int             // 0-4
	SpotKU           decimal.Decimal // uncontracted purchase
}

// SupplyDecision covers raw materials and maintenance.
type SupplyDecision struct {
	Orders      [NumGrades]MaterialOrder
	Maintenance bool
}

// MachineDecision is the plan for one machine class.
type MachineDecision struct {
	Active int
	Sold   int
	Bought int
}

// ProductionDecision covers machines and workforce moves.
type ProductionDecision struct {
	Machines [NumMachineClasses]MachineDecision

	// NetHires is positive for hiring, negative for layoffs.
	NetHires int

	// PurchasingPowerPct is informational and echoed into the result.
	PurchasingPowerPct decimal.Decimal
}

// CSRDecision covers corporate social responsibility budgets (K€).
type CSRDecision struct {
	Recycling           decimal.Decimal
	AdaptedFacilities   decimal.Decimal
	ResearchDevelopment decimal.Decimal
}

// Total returns the whole CSR spend.
func (c CSRDecision) Total() decimal.Decimal {
	return c.Recycling.Add(c.AdaptedFacilities).Add(c.ResearchDevelopment)
}

// FinanceDecision covers loans, receivables, dividends and equity.
type FinanceDecision struct {
	LongTermLoan        decimal.Decimal // K€
	LongTermQuarters    int             // 2-8 when a loan is drawn
	ShortTermLoan       decimal.Decimal // K€
	FactoredReceivables decimal.Decimal // K€
	CashDiscountPct     decimal.Decimal // offered to customers paying immediately
	Dividends           decimal.Decimal // K€ requested
	EarlyRepayment      bool
	SocialEffortPct     decimal.Decimal
	NewShares           decimal.Decimal // thousand shares
	IssuePrice          decimal.Decimal // € per share
}

// NumPeerFirms is the number of tradable peer-firm securities.
const NumPeerFirms = 6

// SecuritiesDecision holds buy (+) / sell (-) volumes for firms F1-F6.
type SecuritiesDecision struct {
	Trades [NumPeerFirms]int
}

// Decisions is the complete decision bundle for one quarter.
type Decisions struct {
	Channels   [NumChannels]ChannelDecision
	Marketing  MarketingDecision
	Supply     SupplyDecision
	Production ProductionDecision
	CSR        CSRDecision
	Finance    FinanceDecision
	Securities SecuritiesDecision
}

// Channel returns the decision for one channel.
func (d Decisions) Channel(c Channel) ChannelDecision { return d.Channels[c] }

// ProductionUnits returns planned production of a channel in units.
func (d Decisions) ProductionUnits(c Channel) decimal.Decimal {
	return kiloToUnits(d.Channels[c].ProductionKU)
}

// MaxTariff returns the highest tariff price across the six channels.
func (d Decisions) MaxTariff() decimal.Decimal {
	m := zero
	for _, c := range Channels {
		m = maxDec(m, d.Channels[c].TariffPrice)
	}
	return m
}
