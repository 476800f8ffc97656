package factory

import (
	"fmt"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// DECISION FILE SCHEMA
// =============================================================================

// DecisionsJSON is the file representation of a decision bundle. Every
// section is optional; omitted channels and machine classes are idle.
type DecisionsJSON struct {
	Channels   map[string]ChannelJSON `json:"channels,omitempty" yaml:"channels,omitempty"` // "A-CT" ...
	Marketing  MarketingJSON          `json:"marketing" yaml:"marketing"`
	Supply     SupplyJSON             `json:"supply" yaml:"supply"`
	Production ProductionJSON         `json:"production" yaml:"production"`
	CSR        CSRJSON                `json:"csr" yaml:"csr"`
	Finance    FinanceJSON            `json:"finance" yaml:"finance"`
	Securities []int                  `json:"securities,omitempty" yaml:"securities,omitempty"` // F1..F6
}

// ChannelJSON is the decision for one channel.
type ChannelJSON struct {
	TariffPrice       float64  `json:"tariff_price" yaml:"tariff_price"`
	PromotionPerUnit  float64  `json:"promotion_per_unit" yaml:"promotion_per_unit"`
	RebatePct         float64  `json:"rebate_pct" yaml:"rebate_pct"`
	ProductionKU      float64  `json:"production_ku" yaml:"production_ku"`
	Quality           *float64 `json:"quality,omitempty" yaml:"quality,omitempty"` // default 100
	RecycledPackaging bool     `json:"recycled_packaging" yaml:"recycled_packaging"`
	ContractSale      float64  `json:"contract_sale" yaml:"contract_sale"`
	ContractPurchase  float64  `json:"contract_purchase" yaml:"contract_purchase"`
}

// MarketingJSON keys sales force and advertising by network.
type MarketingJSON struct {
	SalesForce    map[string]int     `json:"sales_force,omitempty" yaml:"sales_force,omitempty"`
	CommissionPct float64            `json:"commission_pct" yaml:"commission_pct"`
	BonusPerHead  float64            `json:"bonus_per_head" yaml:"bonus_per_head"`
	Advertising   map[string]float64 `json:"advertising,omitempty" yaml:"advertising,omitempty"`
	StudiesABCD   string             `json:"studies_abcd" yaml:"studies_abcd"`
	StudiesEFGH   string             `json:"studies_efgh" yaml:"studies_efgh"`
}

// OrderJSON is the supply decision for one grade.
type OrderJSON struct {
	OrderKU          float64 `json:"order_ku" yaml:"order_ku"`
	ContractQuarters int     `json:"contract_quarters" yaml:"contract_quarters"`
	SpotKU           float64 `json:"spot_ku" yaml:"spot_ku"`
}

// SupplyJSON keys material orders by grade.
type SupplyJSON struct {
	Orders      map[string]OrderJSON `json:"orders,omitempty" yaml:"orders,omitempty"`
	Maintenance *bool                `json:"maintenance,omitempty" yaml:"maintenance,omitempty"` // default true
}

// MachineJSONDecision is the plan for one machine class.
type MachineJSONDecision struct {
	Active int `json:"active" yaml:"active"`
	Sold   int `json:"sold" yaml:"sold"`
	Bought int `json:"bought" yaml:"bought"`
}

// ProductionJSON keys machine plans by class.
type ProductionJSON struct {
	Machines           map[string]MachineJSONDecision `json:"machines,omitempty" yaml:"machines,omitempty"`
	NetHires           int                            `json:"net_hires" yaml:"net_hires"`
	PurchasingPowerPct float64                        `json:"purchasing_power_pct" yaml:"purchasing_power_pct"`
}

// CSRJSON is the CSR budget in K€.
type CSRJSON struct {
	Recycling           float64 `json:"recycling" yaml:"recycling"`
	AdaptedFacilities   float64 `json:"adapted_facilities" yaml:"adapted_facilities"`
	ResearchDevelopment float64 `json:"research_development" yaml:"research_development"`
}

// FinanceJSON is the financing decision.
type FinanceJSON struct {
	LongTermLoan        float64 `json:"long_term_loan" yaml:"long_term_loan"`
	LongTermQuarters    int     `json:"long_term_quarters" yaml:"long_term_quarters"`
	ShortTermLoan       float64 `json:"short_term_loan" yaml:"short_term_loan"`
	FactoredReceivables float64 `json:"factored_receivables" yaml:"factored_receivables"`
	CashDiscountPct     float64 `json:"cash_discount_pct" yaml:"cash_discount_pct"`
	Dividends           float64 `json:"dividends" yaml:"dividends"`
	EarlyRepayment      bool    `json:"early_repayment" yaml:"early_repayment"`
	SocialEffortPct     float64 `json:"social_effort_pct" yaml:"social_effort_pct"`
	NewShares           float64 `json:"new_shares" yaml:"new_shares"`
	IssuePrice          float64 `json:"issue_price" yaml:"issue_price"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseDecisions decodes a decision document.
func ParseDecisions(data []byte, format Format) (settlement.Decisions, error) {
	var dj DecisionsJSON
	if err := Decode(data, format, &dj); err != nil {
		return settlement.Decisions{}, fmt.Errorf("%w: %v", settlement.ErrInvalidDecision, err)
	}
	return dj.ToDecisions()
}

// LoadDecisionsFile reads decisions from a .json, .yaml or .yml file.
func LoadDecisionsFile(path string) (settlement.Decisions, error) {
	var dj DecisionsJSON
	if err := decodeFile(path, &dj); err != nil {
		return settlement.Decisions{}, fmt.Errorf("%w: %v", settlement.ErrInvalidDecision, err)
	}
	return dj.ToDecisions()
}

// ToDecisions builds the decision bundle. It rejects unknown keys; value
// ranges are left to the engine's validation.
func (dj DecisionsJSON) ToDecisions() (settlement.Decisions, error) {
	var d settlement.Decisions
	if err := checkFinite(settlement.ErrInvalidDecision, dj); err != nil {
		return d, err
	}

	// Idle channels still default to full quality.
	for _, c := range settlement.Channels {
		d.Channels[c].Quality = num(100)
	}
	for _, key := range sortedKeys(dj.Channels) {
		c, err := settlement.ParseChannel(key)
		if err != nil {
			return d, keyError("channels", err)
		}
		cj := dj.Channels[key]
		d.Channels[c] = settlement.ChannelDecision{
			TariffPrice:       num(cj.TariffPrice),
			PromotionPerUnit:  num(cj.PromotionPerUnit),
			RebatePct:         num(cj.RebatePct),
			ProductionKU:      num(cj.ProductionKU),
			Quality:           numOr(cj.Quality, 100),
			RecycledPackaging: cj.RecycledPackaging,
			ContractSale:      num(cj.ContractSale),
			ContractPurchase:  num(cj.ContractPurchase),
		}
	}

	mj := dj.Marketing
	d.Marketing = settlement.MarketingDecision{
		CommissionPct: num(mj.CommissionPct),
		BonusPerHead:  num(mj.BonusPerHead),
		StudiesABCD:   mj.StudiesABCD,
		StudiesEFGH:   mj.StudiesEFGH,
	}
	for _, key := range sortedKeys(mj.SalesForce) {
		var n settlement.Network
		if err := n.UnmarshalText([]byte(key)); err != nil {
			return d, keyError("marketing.sales_force", err)
		}
		d.Marketing.SalesForce[n] = mj.SalesForce[key]
	}
	for _, key := range sortedKeys(mj.Advertising) {
		var n settlement.Network
		if err := n.UnmarshalText([]byte(key)); err != nil {
			return d, keyError("marketing.advertising", err)
		}
		d.Marketing.Advertising[n] = num(mj.Advertising[key])
	}

	d.Supply.Maintenance = boolOr(dj.Supply.Maintenance, true)
	for _, key := range sortedKeys(dj.Supply.Orders) {
		var g settlement.Grade
		if err := g.UnmarshalText([]byte(key)); err != nil {
			return d, keyError("supply.orders", err)
		}
		oj := dj.Supply.Orders[key]
		d.Supply.Orders[g] = settlement.MaterialOrder{
			OrderKU:          num(oj.OrderKU),
			ContractQuarters: oj.ContractQuarters,
			SpotKU:           num(oj.SpotKU),
		}
	}

	d.Production.NetHires = dj.Production.NetHires
	d.Production.PurchasingPowerPct = num(dj.Production.PurchasingPowerPct)
	for _, key := range sortedKeys(dj.Production.Machines) {
		mc, err := parseMachineClass(key)
		if err != nil {
			return d, keyError("production.machines", err)
		}
		m := dj.Production.Machines[key]
		d.Production.Machines[mc] = settlement.MachineDecision{Active: m.Active, Sold: m.Sold, Bought: m.Bought}
	}

	d.CSR = settlement.CSRDecision{
		Recycling:           num(dj.CSR.Recycling),
		AdaptedFacilities:   num(dj.CSR.AdaptedFacilities),
		ResearchDevelopment: num(dj.CSR.ResearchDevelopment),
	}

	fj := dj.Finance
	d.Finance = settlement.FinanceDecision{
		LongTermLoan:        num(fj.LongTermLoan),
		LongTermQuarters:    fj.LongTermQuarters,
		ShortTermLoan:       num(fj.ShortTermLoan),
		FactoredReceivables: num(fj.FactoredReceivables),
		CashDiscountPct:     num(fj.CashDiscountPct),
		Dividends:           num(fj.Dividends),
		EarlyRepayment:      fj.EarlyRepayment,
		SocialEffortPct:     num(fj.SocialEffortPct),
		NewShares:           num(fj.NewShares),
		IssuePrice:          num(fj.IssuePrice),
	}

	if len(dj.Securities) > settlement.NumPeerFirms {
		return d, fmt.Errorf("%w: securities: at most %d peer firms, got %d",
			settlement.ErrInvalidDecision, settlement.NumPeerFirms, len(dj.Securities))
	}
	copy(d.Securities.Trades[:], dj.Securities)

	return d, nil
}

// DecisionsToJSON converts a bundle into its file representation. Idle
// channels and machine classes are omitted.
func DecisionsToJSON(d settlement.Decisions) DecisionsJSON {
	dj := DecisionsJSON{
		Channels: make(map[string]ChannelJSON),
		Marketing: MarketingJSON{
			SalesForce:    make(map[string]int, settlement.NumNetworks),
			CommissionPct: toFloat(d.Marketing.CommissionPct),
			BonusPerHead:  toFloat(d.Marketing.BonusPerHead),
			Advertising:   make(map[string]float64, settlement.NumNetworks),
			StudiesABCD:   d.Marketing.StudiesABCD,
			StudiesEFGH:   d.Marketing.StudiesEFGH,
		},
		Production: ProductionJSON{
			Machines:           make(map[string]MachineJSONDecision),
			NetHires:           d.Production.NetHires,
			PurchasingPowerPct: toFloat(d.Production.PurchasingPowerPct),
		},
		CSR: CSRJSON{
			Recycling:           toFloat(d.CSR.Recycling),
			AdaptedFacilities:   toFloat(d.CSR.AdaptedFacilities),
			ResearchDevelopment: toFloat(d.CSR.ResearchDevelopment),
		},
		Finance: FinanceJSON{
			LongTermLoan:        toFloat(d.Finance.LongTermLoan),
			LongTermQuarters:    d.Finance.LongTermQuarters,
			ShortTermLoan:       toFloat(d.Finance.ShortTermLoan),
			FactoredReceivables: toFloat(d.Finance.FactoredReceivables),
			CashDiscountPct:     toFloat(d.Finance.CashDiscountPct),
			Dividends:           toFloat(d.Finance.Dividends),
			EarlyRepayment:      d.Finance.EarlyRepayment,
			SocialEffortPct:     toFloat(d.Finance.SocialEffortPct),
			NewShares:           toFloat(d.Finance.NewShares),
			IssuePrice:          toFloat(d.Finance.IssuePrice),
		},
		Securities: append([]int(nil), d.Securities.Trades[:]...),
	}

	for _, c := range settlement.Channels {
		cd := d.Channels[c]
		if idleChannel(cd) {
			continue
		}
		quality := toFloat(cd.Quality)
		dj.Channels[c.String()] = ChannelJSON{
			TariffPrice:       toFloat(cd.TariffPrice),
			PromotionPerUnit:  toFloat(cd.PromotionPerUnit),
			RebatePct:         toFloat(cd.RebatePct),
			ProductionKU:      toFloat(cd.ProductionKU),
			Quality:           &quality,
			RecycledPackaging: cd.RecycledPackaging,
			ContractSale:      toFloat(cd.ContractSale),
			ContractPurchase:  toFloat(cd.ContractPurchase),
		}
	}
	for _, n := range settlement.Networks {
		dj.Marketing.SalesForce[n.String()] = d.Marketing.SalesForce[n]
		dj.Marketing.Advertising[n.String()] = toFloat(d.Marketing.Advertising[n])
	}

	maintenance := d.Supply.Maintenance
	dj.Supply = SupplyJSON{Orders: make(map[string]OrderJSON, settlement.NumGrades), Maintenance: &maintenance}
	for _, g := range settlement.Grades {
		o := d.Supply.Orders[g]
		dj.Supply.Orders[g.String()] = OrderJSON{
			OrderKU:          toFloat(o.OrderKU),
			ContractQuarters: o.ContractQuarters,
			SpotKU:           toFloat(o.SpotKU),
		}
	}
	for _, mc := range settlement.MachineClasses {
		m := d.Production.Machines[mc]
		if m == (settlement.MachineDecision{}) {
			continue
		}
		dj.Production.Machines[mc.String()] = MachineJSONDecision{Active: m.Active, Sold: m.Sold, Bought: m.Bought}
	}
	return dj
}

func keyError(section string, err error) error {
	return fmt.Errorf("%w: %s: %v", settlement.ErrInvalidDecision, section, err)
}

func idleChannel(cd settlement.ChannelDecision) bool {
	return cd.TariffPrice.IsZero() && cd.PromotionPerUnit.IsZero() && cd.RebatePct.IsZero() &&
		cd.ProductionKU.IsZero() && cd.ContractSale.IsZero() && cd.ContractPurchase.IsZero() &&
		!cd.RecycledPackaging && cd.Quality.Equal(num(100))
}
