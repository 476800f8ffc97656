package settlement

import "github.com/shopspring/decimal"

// =============================================================================
// PRICING, REVENUE AND INVENTORY
// =============================================================================

// netPrice applies the GS rebate to the tariff. CT channels sell at tariff.
func netPrice(c Channel, cd ChannelDecision) decimal.Decimal {
	if c.Network() == NetworkGS {
		return cd.TariffPrice.Mul(one.Sub(pct(cd.RebatePct)))
	}
	return cd.TariffPrice
}

// recogniseRevenue prices every channel, applies the optional forecast cap
// to open-market sales and values the change in finished-goods inventory.
func recogniseRevenue(p Params, d Decisions, s PeriodState, f Forecast, contracts [NumChannels]ChannelResult, costs ProductionCosts) ([NumChannels]ChannelResult, RevenueResult) {
	var rev RevenueResult
	out := contracts

	for _, c := range Channels {
		cd := d.Channels[c]
		r := out[c]
		r.NetPrice = netPrice(c, cd)

		switch limit, ok := f.Cap(c); {
		case cd.TariffPrice.IsZero():
			r.StandardSold = zero
		case ok:
			r.StandardSold = minDec(r.StandardStock, limit)
		default:
			r.StandardSold = r.StandardStock
		}
		r.Sold = r.StandardSold.Add(r.ContractFulfilled)
		r.EndingInventory = maxDec(zero, r.Disposable.Sub(r.Sold))

		r.StandardRevenue = toKilo(r.StandardSold.Mul(r.NetPrice))
		r.ContractRevenue = toKilo(r.ContractFulfilled.Mul(r.NetPrice))
		r.Revenue = r.StandardRevenue.Add(r.ContractRevenue)
		if cd.RecycledPackaging {
			r.Royalty = r.Revenue.Mul(p.RoyaltyRate)
		}
		r.PurchasedGoods = toKilo(r.Purchased.Mul(r.NetPrice).Mul(p.ContractPurchaseRate))

		rev.Standard = rev.Standard.Add(r.StandardRevenue)
		rev.Contract = rev.Contract.Add(r.ContractRevenue)
		rev.Royalties = rev.Royalties.Add(r.Royalty)
		rev.PurchasedGoods = rev.PurchasedGoods.Add(r.PurchasedGoods)
		rev.Penalties = rev.Penalties.Add(r.Penalty)
		out[c] = r
	}
	rev.Total = rev.Standard.Add(rev.Contract)

	// Inventory variation: weighted change in stock valued at the blended
	// production cost of the quarter.
	weightedOutput := zero
	weightedChange := zero
	for _, pr := range Products {
		w := p.CapacityWeight[pr]
		produced, ending := zero, zero
		for _, n := range Networks {
			c := ChannelOf(pr, n)
			produced = produced.Add(out[c].Produced)
			ending = ending.Add(out[c].EndingInventory)
		}
		weightedOutput = weightedOutput.Add(w.Mul(produced))
		weightedChange = weightedChange.Add(w.Mul(ending.Sub(s.OpeningInventory(pr))))
	}
	if weightedOutput.IsPositive() {
		rev.BlendedUnitCost = costs.Total.Div(weightedOutput)
	}
	rev.InventoryVariation = weightedChange.Mul(rev.BlendedUnitCost)

	return out, rev
}

// valueProducts aggregates channels per product and computes the
// contribution margin once commercial costs are allocated to channels.
func valueProducts(p Params, s PeriodState, channels [NumChannels]ChannelResult, materials MaterialsResult) [NumProducts]ProductResult {
	var out [NumProducts]ProductResult
	vmPerUnit := variableManufacturingPerUnit(p, s.PriceIndex)

	for _, pr := range Products {
		r := ProductResult{Product: pr, OpeningInventory: s.OpeningInventory(pr)}
		for _, n := range Networks {
			c := ChannelOf(pr, n)
			ch := channels[c]
			r.Production = r.Production.Add(ch.Produced)
			r.EndingInventory = r.EndingInventory.Add(ch.EndingInventory)
			r.Revenue = r.Revenue.Add(ch.Revenue)

			material := zero
			for _, g := range Grades {
				material = material.Add(toKilo(materials.ByChannel[c][g].Mul(p.MaterialPrice[g])))
			}
			r.VariableCost = r.VariableCost.
				Add(material).
				Add(toKilo(ch.Produced.Mul(vmPerUnit))).
				Add(ch.Promotion).
				Add(ch.Transport).
				Add(ch.Royalty).
				Add(ch.PurchasedGoods)
		}
		r.ContributionMargin = r.Revenue.Sub(r.VariableCost)
		out[pr] = r
	}
	return out
}
