package settlement

// resolveContracts gives contracted sales absolute priority over the open
// market. A channel that cannot honour its contract delivers everything it
// has, keeps no open-market stock and pays the stockout penalty on the
// shortfall, priced at the highest tariff of the quarter.
func resolveContracts(p Params, d Decisions, s PeriodState) ([NumChannels]ChannelResult, []Warning) {
	var (
		out      [NumChannels]ChannelResult
		warnings []Warning
	)
	maxTariff := d.MaxTariff()

	for _, c := range Channels {
		cd := d.Channels[c]
		r := ChannelResult{
			Channel:      c,
			Opening:      s.FinishedGoods[c],
			Produced:     d.ProductionUnits(c),
			Purchased:    cd.ContractPurchase,
			ContractSale: cd.ContractSale,
		}
		r.Disposable = r.Opening.Add(r.Produced).Add(r.Purchased)

		if r.ContractSale.GreaterThan(r.Disposable) {
			r.ContractFulfilled = r.Disposable
			r.Shortfall = r.ContractSale.Sub(r.Disposable)
			r.StandardStock = zero
			r.Penalty = toKilo(r.Shortfall.Mul(maxTariff).Mul(p.StockoutPenaltyRate))
			warnings = append(warnings, newWarning(StageContracts, WarnContractStockout, c.String(), r.Shortfall,
				"%s: contract of %s units exceeds disposable volume of %s, penalty %s K€",
				c, r.ContractSale.String(), r.Disposable.String(), r.Penalty.StringFixed(2)))
		} else {
			r.ContractFulfilled = r.ContractSale
			r.StandardStock = r.Disposable.Sub(r.ContractSale)
		}
		out[c] = r
	}

	return out, warnings
}
