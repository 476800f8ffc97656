/*
capacity.go - Capacity and workforce resolution

PURPOSE:
  First stage of the pipeline. Clamps the active-machine plan to the owned
  fleet, applies the productivity loss when maintenance is declined, and
  resolves the permanent headcount against machine staffing.

WORKFORCE LADDER:
  total     = opening + net hires - retirements   (never below zero)
  absentees = round(total x absenteeism[quarter])
  workshop  = fixed headcount, never staffing machines
  available = total - absentees - workshop
  required  = sum of active machines x workers per machine

  available < required  -> shortfall, temporary workers
  available > required  -> surplus, technical short-time
  equal                 -> neither

SEE ALSO:
  - production_costs.go: Prices the workforce resolution
*/
package settlement

import "fmt"

// resolveCapacity clamps machines to the fleet and computes capacity.
func resolveCapacity(p Params, d Decisions, s PeriodState) (CapacityResult, []Warning) {
	var (
		out      CapacityResult
		warnings []Warning
	)

	out.MaintenanceFactor = one
	if !d.Supply.Maintenance {
		out.MaintenanceFactor = one.Sub(p.ProductivityLoss)
		warnings = append(warnings, newWarning(StageCapacity, WarnMaintenanceSkipped, "", p.ProductivityLoss,
			"maintenance declined: machine capacity reduced by %s%%", p.ProductivityLoss.Mul(hundred).String()))
	}

	for _, mc := range MachineClasses {
		requested := d.Production.Machines[mc].Active
		owned := s.Fleet[mc]
		active := minInt(requested, owned)
		if active < requested {
			warnings = append(warnings, newWarning(StageCapacity, WarnMachinesClamped, mc.String(), Int(requested-active),
				"%s: %d machines requested, only %d owned", mc, requested, owned))
		}

		m := MachineCapacity{Class: mc, Requested: requested, Owned: owned, Active: active}
		for _, pr := range Products {
			m.Capacity[pr] = Int(active).Mul(p.Machines[mc].Yield[pr]).Mul(out.MaintenanceFactor)
			out.Total[pr] = out.Total[pr].Add(m.Capacity[pr])
		}
		out.Machines[mc] = m
	}

	out.EquivalentCapacity = out.Total[ProductA]
	for _, c := range Channels {
		w := p.CapacityWeight[c.Product()]
		out.EquivalentDemand = out.EquivalentDemand.Add(w.Mul(d.ProductionUnits(c)))
	}
	if out.EquivalentDemand.GreaterThan(out.EquivalentCapacity) {
		excess := out.EquivalentDemand.Sub(out.EquivalentCapacity)
		warnings = append(warnings, newWarning(StageCapacity, WarnCapacityExceeded, "", excess,
			"planned production of %s equivalent units exceeds capacity of %s",
			out.EquivalentDemand.StringFixed(0), out.EquivalentCapacity.StringFixed(0)))
	}

	return out, warnings
}

// resolveWorkforce resolves headcount against the staffing requirement of
// the active machines.
func resolveWorkforce(p Params, d Decisions, s PeriodState, capacity CapacityResult) (WorkforceResult, []Warning) {
	wp := p.Workforce
	out := WorkforceResult{
		Opening:  s.Workforce,
		NetHires: d.Production.NetHires,
	}

	beforeRetirement := maxInt(0, s.Workforce+d.Production.NetHires)
	if p.RetiresIn(s.Quarter) {
		out.Retirements = minInt(wp.RetirementHeadcount, beforeRetirement)
	}
	out.Total = beforeRetirement - out.Retirements

	absent := Int(out.Total).Mul(p.AbsenteeismFor(s.Quarter)).Round(0)
	out.Absentees = minInt(int(absent.IntPart()), out.Total)
	out.Workshop = minInt(wp.WorkshopHeadcount, out.Total-out.Absentees)
	out.Available = out.Total - out.Absentees - out.Workshop

	for _, mc := range MachineClasses {
		out.Required += capacity.Machines[mc].Active * p.Machines[mc].WorkersPerMachine
	}

	var warnings []Warning
	switch {
	case out.Available < out.Required:
		out.Shortfall = out.Required - out.Available
		out.Engaged = out.Available
		warnings = append(warnings, newWarning(StageWorkforce, WarnWorkforceShortfall, "", Int(out.Shortfall),
			"workforce shortfall: %d workers needed, %d available, %d temporary workers hired",
			out.Required, out.Available, out.Shortfall))
	case out.Available > out.Required:
		out.Surplus = out.Available - out.Required
		out.Engaged = out.Required
		warnings = append(warnings, newWarning(StageWorkforce, WarnWorkforceSurplus, "", Int(out.Surplus),
			"workforce surplus: %d workers on technical short-time", out.Surplus))
	default:
		out.Engaged = out.Required
	}

	return out, warnings
}

// String summarises the headcount resolution.
func (w WorkforceResult) String() string {
	return fmt.Sprintf("total=%d absent=%d workshop=%d available=%d required=%d shortfall=%d surplus=%d",
		w.Total, w.Absentees, w.Workshop, w.Available, w.Required, w.Shortfall, w.Surplus)
}
