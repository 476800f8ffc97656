package factory

import (
	"fmt"

	"github.com/mirage-sim/settlement-engine/settlement"
	"github.com/shopspring/decimal"
)

// =============================================================================
// EDITION FILE SCHEMA
// =============================================================================

// EditionJSON is the file representation of a parameter table. Keyed maps
// must name every product, grade, network and machine class.
type EditionJSON struct {
	Name                  string                 `json:"name" yaml:"name"`
	Machines              map[string]MachineJSON `json:"machines" yaml:"machines"` // M1, M2
	CapacityWeight        map[string]float64     `json:"capacity_weight" yaml:"capacity_weight"`
	ProductivityLoss      float64                `json:"productivity_loss" yaml:"productivity_loss"`
	MaterialPerUnit       map[string]float64     `json:"material_per_unit" yaml:"material_per_unit"`
	MaterialPrice         map[string]float64     `json:"material_price" yaml:"material_price"` // N, S
	EnergyPerUnit         float64                `json:"energy_per_unit" yaml:"energy_per_unit"`
	SubcontractingPerUnit float64                `json:"subcontracting_per_unit" yaml:"subcontracting_per_unit"`
	MiscPerUnit           float64                `json:"misc_per_unit" yaml:"misc_per_unit"`
	Workforce             WorkforceJSON          `json:"workforce" yaml:"workforce"`
	SalesSalary           map[string]float64     `json:"sales_salary" yaml:"sales_salary"` // CT, GS
	TransportPerUnit      map[string]float64     `json:"transport_per_unit" yaml:"transport_per_unit"`
	StudyFees             map[string]float64     `json:"study_fees" yaml:"study_fees"` // A-H
	StockoutPenaltyRate   float64                `json:"stockout_penalty_rate" yaml:"stockout_penalty_rate"`
	RoyaltyRate           float64                `json:"royalty_rate" yaml:"royalty_rate"`
	ContractPurchaseRate  float64                `json:"contract_purchase_rate" yaml:"contract_purchase_rate"`
	TaxesAndDutiesRate    float64                `json:"taxes_and_duties_rate" yaml:"taxes_and_duties_rate"`
	Finance               FinanceParamsJSON      `json:"finance" yaml:"finance"`
}

// MachineJSON describes one machine class.
type MachineJSON struct {
	Yield             map[string]float64 `json:"yield" yaml:"yield"` // A, B, C
	PurchasePrice     float64            `json:"purchase_price" yaml:"purchase_price"`
	ResaleRatio       float64            `json:"resale_ratio" yaml:"resale_ratio"`
	LifeQuarters      int                `json:"life_quarters" yaml:"life_quarters"`
	MaintenanceCost   float64            `json:"maintenance_cost" yaml:"maintenance_cost"`
	WorkersPerMachine int                `json:"workers_per_machine" yaml:"workers_per_machine"`
	StructureCost     float64            `json:"structure_cost" yaml:"structure_cost"`
}

// WorkforceJSON describes labor parameters.
type WorkforceJSON struct {
	BaseMonthlyWage     float64   `json:"base_monthly_wage" yaml:"base_monthly_wage"`
	SocialCharges       float64   `json:"social_charges" yaml:"social_charges"`
	MonthsPerQuarter    int       `json:"months_per_quarter" yaml:"months_per_quarter"`
	TempMultiplier      float64   `json:"temp_multiplier" yaml:"temp_multiplier"`
	ShortTimeRate       float64   `json:"short_time_rate" yaml:"short_time_rate"`
	Absenteeism         []float64 `json:"absenteeism" yaml:"absenteeism"` // quarters 1-4
	RetirementQuarters  []int     `json:"retirement_quarters" yaml:"retirement_quarters"`
	RetirementHeadcount int       `json:"retirement_headcount" yaml:"retirement_headcount"`
	WorkshopHeadcount   int       `json:"workshop_headcount" yaml:"workshop_headcount"`
}

// FinanceParamsJSON describes financial parameters.
type FinanceParamsJSON struct {
	LongTermRate      float64 `json:"long_term_rate" yaml:"long_term_rate"`
	ShortTermRate     float64 `json:"short_term_rate" yaml:"short_term_rate"`
	OverdraftMultiple float64 `json:"overdraft_multiple" yaml:"overdraft_multiple"`
	ImmediateShare    float64 `json:"immediate_share" yaml:"immediate_share"`
	FactoringFeeRate  float64 `json:"factoring_fee_rate" yaml:"factoring_fee_rate"`
	CorporateTaxRate  float64 `json:"corporate_tax_rate" yaml:"corporate_tax_rate"`
	DividendCapRate   float64 `json:"dividend_cap_rate" yaml:"dividend_cap_rate"`
	VATRate           float64 `json:"vat_rate" yaml:"vat_rate"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseEdition decodes an edition document and validates the table.
func ParseEdition(data []byte, format Format) (settlement.Params, error) {
	var ej EditionJSON
	if err := Decode(data, format, &ej); err != nil {
		return settlement.Params{}, fmt.Errorf("%w: %v", settlement.ErrInvalidParams, err)
	}
	return ej.ToParams()
}

// LoadEditionFile reads an edition from a .json, .yaml or .yml file.
func LoadEditionFile(path string) (settlement.Params, error) {
	var ej EditionJSON
	if err := decodeFile(path, &ej); err != nil {
		return settlement.Params{}, fmt.Errorf("%w: %v", settlement.ErrInvalidParams, err)
	}
	return ej.ToParams()
}

// ToParams converts the file representation into a validated table.
func (ej EditionJSON) ToParams() (settlement.Params, error) {
	if ej.Name == "" {
		return settlement.Params{}, fmt.Errorf("%w: edition name is required", settlement.ErrInvalidParams)
	}
	if err := checkFinite(settlement.ErrInvalidParams, ej); err != nil {
		return settlement.Params{}, err
	}
	p := settlement.Params{
		Name:                  ej.Name,
		ProductivityLoss:      num(ej.ProductivityLoss),
		EnergyPerUnit:         num(ej.EnergyPerUnit),
		SubcontractingPerUnit: num(ej.SubcontractingPerUnit),
		MiscPerUnit:           num(ej.MiscPerUnit),
		StockoutPenaltyRate:   num(ej.StockoutPenaltyRate),
		RoyaltyRate:           num(ej.RoyaltyRate),
		ContractPurchaseRate:  num(ej.ContractPurchaseRate),
		TaxesAndDutiesRate:    num(ej.TaxesAndDutiesRate),
		Finance: settlement.FinanceParams{
			LongTermRate:      num(ej.Finance.LongTermRate),
			ShortTermRate:     num(ej.Finance.ShortTermRate),
			OverdraftMultiple: num(ej.Finance.OverdraftMultiple),
			ImmediateShare:    num(ej.Finance.ImmediateShare),
			FactoringFeeRate:  num(ej.Finance.FactoringFeeRate),
			CorporateTaxRate:  num(ej.Finance.CorporateTaxRate),
			DividendCapRate:   num(ej.Finance.DividendCapRate),
			VATRate:           num(ej.Finance.VATRate),
		},
	}

	var err error
	if len(ej.Machines) != settlement.NumMachineClasses {
		return settlement.Params{}, fmt.Errorf("%w: machines: want M1 and M2, got %d entries", settlement.ErrInvalidParams, len(ej.Machines))
	}
	for _, key := range sortedKeys(ej.Machines) {
		mc, perr := parseMachineClass(key)
		if perr != nil {
			return settlement.Params{}, fmt.Errorf("%w: machines: %v", settlement.ErrInvalidParams, perr)
		}
		mj := ej.Machines[key]
		mp := settlement.MachineParams{
			PurchasePrice:     num(mj.PurchasePrice),
			ResaleRatio:       num(mj.ResaleRatio),
			LifeQuarters:      mj.LifeQuarters,
			MaintenanceCost:   num(mj.MaintenanceCost),
			WorkersPerMachine: mj.WorkersPerMachine,
			StructureCost:     num(mj.StructureCost),
		}
		if mp.Yield, err = productTable("machines."+key+".yield", mj.Yield); err != nil {
			return settlement.Params{}, err
		}
		p.Machines[mc] = mp
	}

	if p.CapacityWeight, err = productTable("capacity_weight", ej.CapacityWeight); err != nil {
		return settlement.Params{}, err
	}
	if p.MaterialPerUnit, err = productTable("material_per_unit", ej.MaterialPerUnit); err != nil {
		return settlement.Params{}, err
	}
	if p.MaterialPrice, err = gradeTable("material_price", ej.MaterialPrice); err != nil {
		return settlement.Params{}, err
	}
	if p.SalesSalary, err = networkTable("sales_salary", ej.SalesSalary); err != nil {
		return settlement.Params{}, err
	}
	if p.TransportPerUnit, err = networkTable("transport_per_unit", ej.TransportPerUnit); err != nil {
		return settlement.Params{}, err
	}

	wj := ej.Workforce
	if len(wj.Absenteeism) != 4 {
		return settlement.Params{}, fmt.Errorf("%w: workforce.absenteeism: want 4 quarters, got %d", settlement.ErrInvalidParams, len(wj.Absenteeism))
	}
	p.Workforce = settlement.WorkforceParams{
		BaseMonthlyWage:     num(wj.BaseMonthlyWage),
		SocialCharges:       num(wj.SocialCharges),
		MonthsPerQuarter:    wj.MonthsPerQuarter,
		TempMultiplier:      num(wj.TempMultiplier),
		ShortTimeRate:       num(wj.ShortTimeRate),
		RetirementQuarters:  append([]int(nil), wj.RetirementQuarters...),
		RetirementHeadcount: wj.RetirementHeadcount,
		WorkshopHeadcount:   wj.WorkshopHeadcount,
	}
	for i, a := range wj.Absenteeism {
		p.Workforce.Absenteeism[i] = num(a)
	}

	p.StudyFees = make(map[rune]decimal.Decimal, len(ej.StudyFees))
	for _, key := range sortedKeys(ej.StudyFees) {
		runes := []rune(key)
		if len(runes) != 1 {
			return settlement.Params{}, fmt.Errorf("%w: study_fees: %q is not a single letter", settlement.ErrInvalidParams, key)
		}
		p.StudyFees[runes[0]] = num(ej.StudyFees[key])
	}

	if err := p.Validate(); err != nil {
		return settlement.Params{}, err
	}
	return p, nil
}

// EditionToJSON converts a parameter table into its file representation.
func EditionToJSON(p settlement.Params) EditionJSON {
	ej := EditionJSON{
		Name:                  p.Name,
		Machines:              make(map[string]MachineJSON, settlement.NumMachineClasses),
		CapacityWeight:        make(map[string]float64, settlement.NumProducts),
		ProductivityLoss:      toFloat(p.ProductivityLoss),
		MaterialPerUnit:       make(map[string]float64, settlement.NumProducts),
		MaterialPrice:         make(map[string]float64, settlement.NumGrades),
		EnergyPerUnit:         toFloat(p.EnergyPerUnit),
		SubcontractingPerUnit: toFloat(p.SubcontractingPerUnit),
		MiscPerUnit:           toFloat(p.MiscPerUnit),
		SalesSalary:           make(map[string]float64, settlement.NumNetworks),
		TransportPerUnit:      make(map[string]float64, settlement.NumNetworks),
		StudyFees:             make(map[string]float64, len(p.StudyFees)),
		StockoutPenaltyRate:   toFloat(p.StockoutPenaltyRate),
		RoyaltyRate:           toFloat(p.RoyaltyRate),
		ContractPurchaseRate:  toFloat(p.ContractPurchaseRate),
		TaxesAndDutiesRate:    toFloat(p.TaxesAndDutiesRate),
		Finance: FinanceParamsJSON{
			LongTermRate:      toFloat(p.Finance.LongTermRate),
			ShortTermRate:     toFloat(p.Finance.ShortTermRate),
			OverdraftMultiple: toFloat(p.Finance.OverdraftMultiple),
			ImmediateShare:    toFloat(p.Finance.ImmediateShare),
			FactoringFeeRate:  toFloat(p.Finance.FactoringFeeRate),
			CorporateTaxRate:  toFloat(p.Finance.CorporateTaxRate),
			DividendCapRate:   toFloat(p.Finance.DividendCapRate),
			VATRate:           toFloat(p.Finance.VATRate),
		},
	}

	for _, mc := range settlement.MachineClasses {
		mp := p.Machines[mc]
		mj := MachineJSON{
			Yield:             make(map[string]float64, settlement.NumProducts),
			PurchasePrice:     toFloat(mp.PurchasePrice),
			ResaleRatio:       toFloat(mp.ResaleRatio),
			LifeQuarters:      mp.LifeQuarters,
			MaintenanceCost:   toFloat(mp.MaintenanceCost),
			WorkersPerMachine: mp.WorkersPerMachine,
			StructureCost:     toFloat(mp.StructureCost),
		}
		for _, pr := range settlement.Products {
			mj.Yield[pr.String()] = toFloat(mp.Yield[pr])
		}
		ej.Machines[mc.String()] = mj
	}
	for _, pr := range settlement.Products {
		ej.CapacityWeight[pr.String()] = toFloat(p.CapacityWeight[pr])
		ej.MaterialPerUnit[pr.String()] = toFloat(p.MaterialPerUnit[pr])
	}
	for _, g := range settlement.Grades {
		ej.MaterialPrice[g.String()] = toFloat(p.MaterialPrice[g])
	}
	for _, n := range settlement.Networks {
		ej.SalesSalary[n.String()] = toFloat(p.SalesSalary[n])
		ej.TransportPerUnit[n.String()] = toFloat(p.TransportPerUnit[n])
	}
	for letter, fee := range p.StudyFees {
		ej.StudyFees[string(letter)] = toFloat(fee)
	}

	w := p.Workforce
	ej.Workforce = WorkforceJSON{
		BaseMonthlyWage:     toFloat(w.BaseMonthlyWage),
		SocialCharges:       toFloat(w.SocialCharges),
		MonthsPerQuarter:    w.MonthsPerQuarter,
		TempMultiplier:      toFloat(w.TempMultiplier),
		ShortTimeRate:       toFloat(w.ShortTimeRate),
		RetirementQuarters:  append([]int(nil), w.RetirementQuarters...),
		RetirementHeadcount: w.RetirementHeadcount,
		WorkshopHeadcount:   w.WorkshopHeadcount,
	}
	for _, a := range w.Absenteeism {
		ej.Workforce.Absenteeism = append(ej.Workforce.Absenteeism, toFloat(a))
	}
	return ej
}

// =============================================================================
// KEYED TABLES
// =============================================================================

func parseMachineClass(key string) (settlement.MachineClass, error) {
	var mc settlement.MachineClass
	err := mc.UnmarshalText([]byte(key))
	return mc, err
}

func productTable(field string, m map[string]float64) ([settlement.NumProducts]decimal.Decimal, error) {
	var out [settlement.NumProducts]decimal.Decimal
	seen := 0
	for _, key := range sortedKeys(m) {
		var pr settlement.Product
		if err := pr.UnmarshalText([]byte(key)); err != nil {
			return out, fmt.Errorf("%w: %s: %v", settlement.ErrInvalidParams, field, err)
		}
		out[pr] = num(m[key])
		seen++
	}
	if seen != settlement.NumProducts {
		return out, fmt.Errorf("%w: %s: want A, B and C", settlement.ErrInvalidParams, field)
	}
	return out, nil
}

func gradeTable(field string, m map[string]float64) ([settlement.NumGrades]decimal.Decimal, error) {
	var out [settlement.NumGrades]decimal.Decimal
	seen := 0
	for _, key := range sortedKeys(m) {
		var g settlement.Grade
		if err := g.UnmarshalText([]byte(key)); err != nil {
			return out, fmt.Errorf("%w: %s: %v", settlement.ErrInvalidParams, field, err)
		}
		out[g] = num(m[key])
		seen++
	}
	if seen != settlement.NumGrades {
		return out, fmt.Errorf("%w: %s: want N and S", settlement.ErrInvalidParams, field)
	}
	return out, nil
}

func networkTable(field string, m map[string]float64) ([settlement.NumNetworks]decimal.Decimal, error) {
	var out [settlement.NumNetworks]decimal.Decimal
	seen := 0
	for _, key := range sortedKeys(m) {
		var n settlement.Network
		if err := n.UnmarshalText([]byte(key)); err != nil {
			return out, fmt.Errorf("%w: %s: %v", settlement.ErrInvalidParams, field, err)
		}
		out[n] = num(m[key])
		seen++
	}
	if seen != settlement.NumNetworks {
		return out, fmt.Errorf("%w: %s: want CT and GS", settlement.ErrInvalidParams, field)
	}
	return out, nil
}
