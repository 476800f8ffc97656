/*
editions.go - Built-in parameter tables

PURPOSE:
  Each game edition ships its own constants. They are returned as fresh
  values so a caller can tweak one without touching the registry copy.

AVAILABLE EDITIONS:
  Classic: The reference rules (15 M1 starting fleet, 919 € base wage)
  Revised: Later rule revision with dearer materials and labor, harsher
           stockout penalty and a larger loss without maintenance

EXAMPLE:
  engine, err := settlement.NewEngine(edition.Classic())

  p := edition.Revised()
  p.Finance.CorporateTaxRate = settlement.Dec("0.25")
  engine, err = settlement.NewEngine(p)

SEE ALSO:
  - registry.go: Lookup by name
  - factory/params.go: Editions loaded from JSON or YAML files
*/
package edition

import (
	"github.com/shopspring/decimal"

	"github.com/mirage-sim/settlement-engine/settlement"
)

const (
	NameClassic = "classic"
	NameRevised = "revised"
)

var d = settlement.Dec

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = d(v)
	}
	return out
}

func triple(a, b, c string) [settlement.NumProducts]decimal.Decimal {
	v := decs(a, b, c)
	return [settlement.NumProducts]decimal.Decimal{v[0], v[1], v[2]}
}

func pair(a, b string) [2]decimal.Decimal {
	v := decs(a, b)
	return [2]decimal.Decimal{v[0], v[1]}
}

func quarters(q1, q2, q3, q4 string) [4]decimal.Decimal {
	v := decs(q1, q2, q3, q4)
	return [4]decimal.Decimal{v[0], v[1], v[2], v[3]}
}

// Classic returns the reference parameter table.
func Classic() settlement.Params {
	return settlement.Params{
		Name: NameClassic,
		Machines: [settlement.NumMachineClasses]settlement.MachineParams{
			settlement.MachineM1: {
				Yield:             triple("45700", "45700", "22850"),
				PurchasePrice:     d("250"),
				ResaleRatio:       d("0.70"),
				LifeQuarters:      40,
				MaintenanceCost:   d("9"),
				WorkersPerMachine: 40,
				StructureCost:     d("6"),
			},
			settlement.MachineM2: {
				Yield:             triple("68550", "68550", "34275"),
				PurchasePrice:     d("350"),
				ResaleRatio:       d("0.70"),
				LifeQuarters:      40,
				MaintenanceCost:   d("12"),
				WorkersPerMachine: 40,
				StructureCost:     d("8"),
			},
		},
		CapacityWeight:   triple("1", "1", "2"),
		ProductivityLoss: d("0.15"),

		MaterialPerUnit: triple("5", "3.5", "10"),
		MaterialPrice:   pair("0.80", "0.70"),

		EnergyPerUnit:         d("0.45"),
		SubcontractingPerUnit: d("0.30"),
		MiscPerUnit:           d("0.20"),

		Workforce: settlement.WorkforceParams{
			BaseMonthlyWage:     d("919"),
			SocialCharges:       d("0.45"),
			MonthsPerQuarter:    3,
			TempMultiplier:      d("1.30"),
			ShortTimeRate:       d("0.60"),
			Absenteeism:         quarters("0.06", "0.05", "0.09", "0.06"),
			RetirementQuarters:  []int{2, 4},
			RetirementHeadcount: 10,
			WorkshopHeadcount:   20,
		},

		SalesSalary:      pair("1792", "2354"),
		TransportPerUnit: pair("0.35", "0.20"),

		StudyFees: map[rune]decimal.Decimal{
			'A': d("2"), 'B': d("2"), 'C': d("2"), 'D': d("5"),
			'E': d("5"), 'F': d("5"), 'G': d("5"), 'H': d("10"),
		},

		StockoutPenaltyRate:  d("0.20"),
		RoyaltyRate:          d("0.02"),
		ContractPurchaseRate: d("0.90"),
		TaxesAndDutiesRate:   d("0.01"),

		Finance: settlement.FinanceParams{
			LongTermRate:      d("0.03"),
			ShortTermRate:     d("0.04"),
			OverdraftMultiple: d("1.25"),
			ImmediateShare:    d("0.30"),
			FactoringFeeRate:  d("0.025"),
			CorporateTaxRate:  d("0.30"),
			DividendCapRate:   d("0.10"),
			VATRate:           d("0.20"),
		},
	}
}

// Revised returns the later rule revision. It starts from Classic and
// changes only what the revision changed.
func Revised() settlement.Params {
	p := Classic()
	p.Name = NameRevised

	p.ProductivityLoss = d("0.20")
	p.MaterialPrice = pair("0.85", "0.74")
	p.Machines[settlement.MachineM2].Yield = triple("70000", "70000", "35000")
	p.Machines[settlement.MachineM2].MaintenanceCost = d("14")

	p.Workforce.BaseMonthlyWage = d("950")
	p.Workforce.Absenteeism = quarters("0.05", "0.05", "0.08", "0.05")
	p.Workforce.RetirementHeadcount = 12
	p.SalesSalary = pair("1850", "2400")

	p.StudyFees['H'] = d("12")
	p.StockoutPenaltyRate = d("0.25")

	p.Finance.LongTermRate = d("0.035")
	p.Finance.ShortTermRate = d("0.045")
	p.Finance.OverdraftMultiple = d("1.50")
	return p
}
