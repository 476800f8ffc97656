package settlement

import "github.com/shopspring/decimal"

// balanceMaterials computes the raw-material requirement of the production
// plan and balances it against stock and deliveries. Quality splits the
// requirement linearly: quality 100 draws only grade N, quality 0 only grade S.
func balanceMaterials(p Params, d Decisions, s PeriodState) (MaterialsResult, []Warning) {
	var out MaterialsResult

	for _, c := range Channels {
		cd := d.Channels[c]
		required := d.ProductionUnits(c).Mul(p.MaterialPerUnit[c.Product()])
		standard := required.Mul(pct(cd.Quality))
		out.ByChannel[c][GradeN] = standard
		out.ByChannel[c][GradeS] = required.Sub(standard)
	}

	var warnings []Warning
	for _, g := range Grades {
		order := d.Supply.Orders[g]
		b := GradeBalance{
			Grade: g,
			Stock: s.RawMaterials[g],
			Spot:  kiloToUnits(order.SpotKU),
		}
		if order.ContractQuarters > 0 {
			b.ContractDelivery = kiloToUnits(order.OrderKU)
		}
		b.Available = b.Stock.Add(b.ContractDelivery).Add(b.Spot)
		for _, c := range Channels {
			b.Required = b.Required.Add(out.ByChannel[c][g])
		}
		b.Balance = b.Available.Sub(b.Required)
		if b.Balance.IsNegative() {
			warnings = append(warnings, newWarning(StageMaterials, WarnMaterialShortage, g.String(), b.Balance.Neg(),
				"raw material %s short by %s units", g, b.Balance.Neg().String()))
		}
		out.Grades[g] = b
	}

	return out, warnings
}

// purchasedUnits returns the material units bought this quarter for a grade.
func (b GradeBalance) purchasedUnits() decimal.Decimal {
	return b.ContractDelivery.Add(b.Spot)
}
