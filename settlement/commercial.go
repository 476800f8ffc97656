package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMMERCIAL AND STUDY COSTS
// =============================================================================

// rollupCommercialCosts prices promotion, the sales force, advertising,
// studies and transport. It runs after revenue recognition because the CT
// commission and the transport cost follow realized sales. The returned
// channels carry their promotion and transport allocation.
func rollupCommercialCosts(p Params, d Decisions, s PeriodState, channels [NumChannels]ChannelResult) (CommercialCosts, [NumChannels]ChannelResult) {
	var out CommercialCosts
	m := d.Marketing
	wp := p.Workforce

	ctTariffRevenue := zero
	for _, c := range Channels {
		ch := channels[c]
		cd := d.Channels[c]
		ch.Promotion = toKilo(cd.PromotionPerUnit.Mul(ch.Produced))
		ch.Transport = variableCost(ch.Sold, p.TransportPerUnit[c.Network()], s.PriceIndex)
		out.Promotion = out.Promotion.Add(ch.Promotion)
		out.Transport = out.Transport.Add(ch.Transport)
		if c.Network() == NetworkCT {
			ctTariffRevenue = ctTariffRevenue.Add(toKilo(ch.Sold.Mul(cd.TariffPrice)))
		}
		channels[c] = ch
	}

	for _, n := range Networks {
		monthly := indexed(p.SalesSalary[n], s.WageIndex)
		heads := Int(m.SalesForce[n])
		out.SalesSalary = out.SalesSalary.Add(toKilo(heads.Mul(monthly).Mul(Int(wp.MonthsPerQuarter))))
		out.Advertising = out.Advertising.Add(m.Advertising[n])
	}
	out.Commission = ctTariffRevenue.Mul(pct(m.CommissionPct))
	out.Bonus = toKilo(Int(m.SalesForce[NetworkGS]).Mul(m.BonusPerHead))
	out.SalesForce = out.SalesSalary.Add(out.Commission).Add(out.Bonus).Mul(one.Add(wp.SocialCharges))

	// Letters were checked by validation; an error here cannot occur.
	studies, letters, _ := StudyCost(p, m.StudiesABCD, m.StudiesEFGH)
	out.Studies = studies
	out.StudyLetters = letters

	out.Total = out.Promotion.
		Add(out.SalesForce).
		Add(out.Advertising).
		Add(out.Studies).
		Add(out.Transport)
	return out, channels
}

// StudyCost returns the fee of the studies selected by both codes and the
// sorted set of letters charged. Each letter is charged once, however many
// times it appears.
func StudyCost(p Params, abcd, efgh string) (decimal.Decimal, string, error) {
	first, err := ParseStudies(abcd, 'A', 'D')
	if err != nil {
		return zero, "", decisionError("marketing.studies_abcd", abcd, err.Error())
	}
	second, err := ParseStudies(efgh, 'E', 'H')
	if err != nil {
		return zero, "", decisionError("marketing.studies_efgh", efgh, err.Error())
	}

	letters := append(first, second...)
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	total := zero
	for _, l := range letters {
		total = total.Add(p.StudyFees[l])
	}
	return total, string(letters), nil
}
