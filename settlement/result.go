/*
result.go - The Result Bundle

PURPOSE:
  Everything one settlement call computes, one section per pipeline stage.
  A Result is built fresh on every call and never shared between calls.

SECTIONS (in pipeline order):
  Capacity        - active machines, capacity per class and product
  Workforce       - headcount resolution, shortfall or surplus
  Materials       - requirement, availability and balance per grade
  ProductionCosts - material, labor, depreciation, variable costs
  Channels        - contract resolution, pricing and revenue per channel
  Products        - inventory and contribution margin per product
  Commercial      - promotion, sales force, advertising, studies, transport
  Revenue         - totals across channels, inventory variation
  Income          - operating, financial, exceptional and net result
  Financing       - breakdown of financial charges
  Dividends       - requested, cap, paid
  Cash            - disbursements, receipts, ending cash
  Warnings        - business-rule violations in stage order

SEE ALSO:
  - engine.go: Fills these sections
  - report/: Renders them as markdown or CSV
*/
package settlement

import "github.com/shopspring/decimal"

// =============================================================================
// CAPACITY AND WORKFORCE
// =============================================================================

// MachineCapacity is the resolved plan of one machine class.
type MachineCapacity struct {
	Class     MachineClass                 `json:"class"`
	Requested int                          `json:"requested"`
	Owned     int                          `json:"owned"`
	Active    int                          `json:"active"`
	Capacity  [NumProducts]decimal.Decimal `json:"capacity"` // units
}

// CapacityResult holds machine capacity after clamping and maintenance.
type CapacityResult struct {
	Machines          [NumMachineClasses]MachineCapacity `json:"machines"`
	MaintenanceFactor decimal.Decimal                    `json:"maintenance_factor"`
	Total             [NumProducts]decimal.Decimal       `json:"total"` // units, per product

	// Capacity-equivalent check, in product-A units.
	EquivalentDemand   decimal.Decimal `json:"equivalent_demand"`
	EquivalentCapacity decimal.Decimal `json:"equivalent_capacity"`
}

// WorkforceResult holds the headcount resolution. At most one of Shortfall
// and Surplus is non-zero.
type WorkforceResult struct {
	Opening     int `json:"opening"`
	NetHires    int `json:"net_hires"`
	Retirements int `json:"retirements"`
	Total       int `json:"total"`
	Absentees   int `json:"absentees"`
	Workshop    int `json:"workshop"`
	Available   int `json:"available"`
	Required    int `json:"required"`
	Engaged     int `json:"engaged"`   // available workers staffing machines
	Shortfall   int `json:"shortfall"` // covered by temporary workers
	Surplus     int `json:"surplus"`   // placed on technical short-time
}

// =============================================================================
// MATERIALS AND PRODUCTION COSTS
// =============================================================================

// GradeBalance is the material balance of one grade, in units.
type GradeBalance struct {
	Grade            Grade           `json:"grade"`
	Stock            decimal.Decimal `json:"stock"`
	ContractDelivery decimal.Decimal `json:"contract_delivery"`
	Spot             decimal.Decimal `json:"spot"`
	Available        decimal.Decimal `json:"available"`
	Required         decimal.Decimal `json:"required"`
	Balance          decimal.Decimal `json:"balance"`
}

// MaterialsResult holds material requirements and balances.
type MaterialsResult struct {
	Grades [NumGrades]GradeBalance `json:"grades"`

	// ByChannel[c][g] is the requirement of grade g for channel c.
	ByChannel [NumChannels][NumGrades]decimal.Decimal `json:"by_channel"`
}

// LaborBreakdown splits the labor cost by worker status (K€).
type LaborBreakdown struct {
	Engaged   decimal.Decimal `json:"engaged"`
	Temporary decimal.Decimal `json:"temporary"`
	ShortTime decimal.Decimal `json:"short_time"`
	Idle      decimal.Decimal `json:"idle"` // absentees and workshop staff
}

// ProductionCosts holds the production-side cost lines (K€).
type ProductionCosts struct {
	Material       decimal.Decimal `json:"material"`
	Labor          decimal.Decimal `json:"labor"`
	LaborBreakdown LaborBreakdown  `json:"labor_breakdown"`
	WorkerRate     decimal.Decimal `json:"worker_rate"` // K€ per worker per quarter
	Depreciation   decimal.Decimal `json:"depreciation"`
	Maintenance    decimal.Decimal `json:"maintenance"`
	Energy         decimal.Decimal `json:"energy"`
	Subcontracting decimal.Decimal `json:"subcontracting"`
	Miscellaneous  decimal.Decimal `json:"miscellaneous"`
	Structure      decimal.Decimal `json:"structure"`
	Total          decimal.Decimal `json:"total"`
}

// =============================================================================
// CHANNELS AND PRODUCTS
// =============================================================================

// ChannelResult is the contract, pricing and revenue outcome of one channel.
// Volumes are units, money is K€, NetPrice is €.
type ChannelResult struct {
	Channel   Channel         `json:"channel"`
	NetPrice  decimal.Decimal `json:"net_price"`
	Opening   decimal.Decimal `json:"opening"`
	Produced  decimal.Decimal `json:"produced"`
	Purchased decimal.Decimal `json:"purchased"`

	Disposable        decimal.Decimal `json:"disposable"`
	ContractSale      decimal.Decimal `json:"contract_sale"`
	ContractFulfilled decimal.Decimal `json:"contract_fulfilled"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	Penalty           decimal.Decimal `json:"penalty"`

	StandardStock   decimal.Decimal `json:"standard_stock"`
	StandardSold    decimal.Decimal `json:"standard_sold"`
	Sold            decimal.Decimal `json:"sold"`
	EndingInventory decimal.Decimal `json:"ending_inventory"`

	StandardRevenue decimal.Decimal `json:"standard_revenue"`
	ContractRevenue decimal.Decimal `json:"contract_revenue"`
	Revenue         decimal.Decimal `json:"revenue"`
	Royalty         decimal.Decimal `json:"royalty"`
	PurchasedGoods  decimal.Decimal `json:"purchased_goods"`
	Transport       decimal.Decimal `json:"transport"`
	Promotion       decimal.Decimal `json:"promotion"`
}

// ProductResult aggregates both networks of one product.
type ProductResult struct {
	Product            Product         `json:"product"`
	Production         decimal.Decimal `json:"production"` // units
	OpeningInventory   decimal.Decimal `json:"opening_inventory"`
	EndingInventory    decimal.Decimal `json:"ending_inventory"`
	Revenue            decimal.Decimal `json:"revenue"`
	VariableCost       decimal.Decimal `json:"variable_cost"`
	ContributionMargin decimal.Decimal `json:"contribution_margin"`
}

// =============================================================================
// COMMERCIAL, REVENUE, INCOME
// =============================================================================

// CommercialCosts holds the commercial cost lines (K€).
type CommercialCosts struct {
	Promotion    decimal.Decimal `json:"promotion"`
	SalesSalary  decimal.Decimal `json:"sales_salary"`
	Commission   decimal.Decimal `json:"commission"`
	Bonus        decimal.Decimal `json:"bonus"`
	SalesForce   decimal.Decimal `json:"sales_force"` // salary + commission + bonus, social-loaded
	Advertising  decimal.Decimal `json:"advertising"`
	Studies      decimal.Decimal `json:"studies"`
	StudyLetters string          `json:"study_letters"`
	Transport    decimal.Decimal `json:"transport"`
	Total        decimal.Decimal `json:"total"`
}

// RevenueResult holds the revenue totals across channels (K€).
type RevenueResult struct {
	Standard           decimal.Decimal `json:"standard"`
	Contract           decimal.Decimal `json:"contract"`
	Total              decimal.Decimal `json:"total"`
	Royalties          decimal.Decimal `json:"royalties"`
	PurchasedGoods     decimal.Decimal `json:"purchased_goods"`
	Penalties          decimal.Decimal `json:"penalties"`
	BlendedUnitCost    decimal.Decimal `json:"blended_unit_cost"` // K€ per weighted unit
	InventoryVariation decimal.Decimal `json:"inventory_variation"`
}

// IncomeStatement holds the full income statement (K€).
type IncomeStatement struct {
	Revenue            decimal.Decimal `json:"revenue"`
	InventoryVariation decimal.Decimal `json:"inventory_variation"`
	Material           decimal.Decimal `json:"material"`
	Personnel          decimal.Decimal `json:"personnel"`
	Depreciation       decimal.Decimal `json:"depreciation"`
	ExternalCharges    decimal.Decimal `json:"external_charges"`
	TaxesAndDuties     decimal.Decimal `json:"taxes_and_duties"`
	OperatingResult    decimal.Decimal `json:"operating_result"`

	FinancialIncome   decimal.Decimal `json:"financial_income"`
	FinancialCharges  decimal.Decimal `json:"financial_charges"`
	FinancialResult   decimal.Decimal `json:"financial_result"`
	ExceptionalResult decimal.Decimal `json:"exceptional_result"`
	PreTaxResult      decimal.Decimal `json:"pre_tax_result"`

	TaxableBase decimal.Decimal `json:"taxable_base"`
	Tax         decimal.Decimal `json:"tax"`
	NetResult   decimal.Decimal `json:"net_result"`
}

// FinancingResult breaks the financial charges down (K€).
type FinancingResult struct {
	LongTermInterest  decimal.Decimal `json:"long_term_interest"`
	ShortTermInterest decimal.Decimal `json:"short_term_interest"`
	Overdraft         decimal.Decimal `json:"overdraft"`
	CashDiscount      decimal.Decimal `json:"cash_discount"`
	FactoringFee      decimal.Decimal `json:"factoring_fee"`
	Total             decimal.Decimal `json:"total"`
}

// DividendResult holds the dividend cap outcome (K€).
type DividendResult struct {
	Requested decimal.Decimal `json:"requested"`
	Cap       decimal.Decimal `json:"cap"`
	Paid      decimal.Decimal `json:"paid"`
	Clipped   bool            `json:"clipped"`
}

// =============================================================================
// CASH
// =============================================================================

// CashDisbursements lists every cash outflow of the quarter (K€).
type CashDisbursements struct {
	RawMaterials     decimal.Decimal `json:"raw_materials"` // VAT-loaded
	Personnel        decimal.Decimal `json:"personnel"`
	Machines         decimal.Decimal `json:"machines"`
	Advertising      decimal.Decimal `json:"advertising"`
	Studies          decimal.Decimal `json:"studies"`
	OtherOperating   decimal.Decimal `json:"other_operating"` // informational, not in Total
	Dividends        decimal.Decimal `json:"dividends"`
	CSR              decimal.Decimal `json:"csr"`
	Penalties        decimal.Decimal `json:"penalties"`
	FinancingCharges decimal.Decimal `json:"financing_charges"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
}

// CashReceipts lists every cash inflow of the quarter (K€).
type CashReceipts struct {
	Revenue         decimal.Decimal `json:"revenue"`
	Loans           decimal.Decimal `json:"loans"`
	MachineDisposal decimal.Decimal `json:"machine_disposal"`
	NewShares       decimal.Decimal `json:"new_shares"` // informational, not in Total
	Total           decimal.Decimal `json:"total"`
}

// CashResult is the cash projection (K€).
type CashResult struct {
	Opening       decimal.Decimal   `json:"opening"`
	Receipts      CashReceipts      `json:"receipts"`
	Disbursements CashDisbursements `json:"disbursements"`

	// PreFinancing excludes financing charges and tax; the overdraft charge
	// is computed on it.
	PreFinancing decimal.Decimal `json:"pre_financing"`
	Ending       decimal.Decimal `json:"ending"`
}

// Echo carries informational decisions through to the result unchanged.
type Echo struct {
	PurchasingPowerPct decimal.Decimal   `json:"purchasing_power_pct"`
	SocialEffortPct    decimal.Decimal   `json:"social_effort_pct"`
	EarlyRepayment     bool              `json:"early_repayment"`
	Securities         [NumPeerFirms]int `json:"securities"`
}

// =============================================================================
// RESULT BUNDLE
// =============================================================================

// Result is the complete outcome of settling one quarter.
type Result struct {
	Edition string `json:"edition"`
	Quarter int    `json:"quarter"`

	Capacity        CapacityResult             `json:"capacity"`
	Workforce       WorkforceResult            `json:"workforce"`
	Materials       MaterialsResult            `json:"materials"`
	ProductionCosts ProductionCosts            `json:"production_costs"`
	Channels        [NumChannels]ChannelResult `json:"channels"`
	Products        [NumProducts]ProductResult `json:"products"`
	Commercial      CommercialCosts            `json:"commercial"`
	Revenue         RevenueResult              `json:"revenue"`
	Income          IncomeStatement            `json:"income"`
	Financing       FinancingResult            `json:"financing"`
	Dividends       DividendResult             `json:"dividends"`
	Cash            CashResult                 `json:"cash"`
	Echo            Echo                       `json:"echo"`

	Warnings []Warning `json:"warnings"`
}
