package settlement

import "github.com/shopspring/decimal"

// =============================================================================
// PRODUCTION COST ROLLUP
// =============================================================================

// rollupProductionCosts prices the capacity, workforce and material outcome
// of the quarter. Every line is K€.
func rollupProductionCosts(p Params, d Decisions, s PeriodState, capacity CapacityResult, workforce WorkforceResult, materials MaterialsResult) ProductionCosts {
	var out ProductionCosts

	for _, g := range Grades {
		out.Material = out.Material.Add(toKilo(materials.Grades[g].Required.Mul(p.MaterialPrice[g])))
	}

	rate := p.WorkerQuarterRate(s.WageIndex)
	wp := p.Workforce
	out.WorkerRate = rate
	out.LaborBreakdown = LaborBreakdown{
		Engaged:   Int(workforce.Engaged).Mul(rate),
		Temporary: Int(workforce.Shortfall).Mul(rate).Mul(wp.TempMultiplier),
		ShortTime: Int(workforce.Surplus).Mul(rate).Mul(wp.ShortTimeRate),
		Idle:      Int(workforce.Absentees + workforce.Workshop).Mul(rate),
	}
	lb := out.LaborBreakdown
	out.Labor = lb.Engaged.Add(lb.Temporary).Add(lb.ShortTime).Add(lb.Idle)

	for _, mc := range MachineClasses {
		mp := p.Machines[mc]
		active := Int(capacity.Machines[mc].Active)
		out.Depreciation = out.Depreciation.Add(active.Mul(mp.PurchasePrice).Div(Int(mp.LifeQuarters)))
		if d.Supply.Maintenance {
			out.Maintenance = out.Maintenance.Add(active.Mul(mp.MaintenanceCost))
		}
		out.Structure = out.Structure.Add(indexed(active.Mul(mp.StructureCost), s.PriceIndex))
	}

	units := totalProductionUnits(d)
	out.Energy = variableCost(units, p.EnergyPerUnit, s.PriceIndex)
	out.Subcontracting = variableCost(units, p.SubcontractingPerUnit, s.PriceIndex)
	out.Miscellaneous = variableCost(units, p.MiscPerUnit, s.PriceIndex)

	out.Total = out.Material.
		Add(out.Labor).
		Add(out.Depreciation).
		Add(out.Maintenance).
		Add(out.Energy).
		Add(out.Subcontracting).
		Add(out.Miscellaneous).
		Add(out.Structure)
	return out
}

// variableCost prices units at a nominal € rate scaled by the price index,
// returning K€.
func variableCost(units, perUnit, priceIndex decimal.Decimal) decimal.Decimal {
	return toKilo(indexed(units.Mul(perUnit), priceIndex))
}

// variableManufacturingPerUnit is the price-indexed € cost of energy,
// subcontracting and miscellaneous for one produced unit.
func variableManufacturingPerUnit(p Params, priceIndex decimal.Decimal) decimal.Decimal {
	return indexed(p.EnergyPerUnit.Add(p.SubcontractingPerUnit).Add(p.MiscPerUnit), priceIndex)
}

func totalProductionUnits(d Decisions) decimal.Decimal {
	total := zero
	for _, c := range Channels {
		total = total.Add(d.ProductionUnits(c))
	}
	return total
}
