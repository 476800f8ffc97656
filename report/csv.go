package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// WriteSummaryCSV writes one section,line,value row per headline figure,
// the layout spreadsheet imports expect.
func WriteSummaryCSV(w io.Writer, r *settlement.Result) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"section", "line", "value"}}
	add := func(section, line string, v decimal.Decimal) {
		rows = append(rows, []string{section, line, v.String()})
	}

	in := r.Income
	add("income", "revenue", in.Revenue)
	add("income", "inventory_variation", in.InventoryVariation)
	add("income", "material", in.Material)
	add("income", "personnel", in.Personnel)
	add("income", "depreciation", in.Depreciation)
	add("income", "external_charges", in.ExternalCharges)
	add("income", "taxes_and_duties", in.TaxesAndDuties)
	add("income", "operating_result", in.OperatingResult)
	add("income", "financial_result", in.FinancialResult)
	add("income", "exceptional_result", in.ExceptionalResult)
	add("income", "pre_tax_result", in.PreTaxResult)
	add("income", "tax", in.Tax)
	add("income", "net_result", in.NetResult)

	add("cash", "opening", r.Cash.Opening)
	add("cash", "receipts", r.Cash.Receipts.Total)
	add("cash", "disbursements", r.Cash.Disbursements.Total)
	add("cash", "pre_financing", r.Cash.PreFinancing)
	add("cash", "financing", r.Financing.Total)
	add("cash", "dividends", r.Dividends.Paid)
	add("cash", "ending", r.Cash.Ending)

	for _, g := range r.Materials.Grades {
		add("materials", "balance_"+g.Grade.String(), g.Balance)
	}
	rows = append(rows, []string{"meta", "warnings", strconv.Itoa(len(r.Warnings))})

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteChannelsCSV writes one row per channel.
func WriteChannelsCSV(w io.Writer, r *settlement.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"channel", "net_price", "opening", "produced", "purchased", "contract_sale",
		"contract_fulfilled", "shortfall", "penalty", "sold", "ending_inventory",
		"revenue", "royalty", "transport", "promotion",
	}); err != nil {
		return err
	}
	for _, ch := range r.Channels {
		if err := cw.Write([]string{
			ch.Channel.String(),
			ch.NetPrice.String(),
			ch.Opening.String(),
			ch.Produced.String(),
			ch.Purchased.String(),
			ch.ContractSale.String(),
			ch.ContractFulfilled.String(),
			ch.Shortfall.String(),
			ch.Penalty.String(),
			ch.Sold.String(),
			ch.EndingInventory.String(),
			ch.Revenue.String(),
			ch.Royalty.String(),
			ch.Transport.String(),
			ch.Promotion.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWarningsCSV writes one row per warning in pipeline order.
func WriteWarningsCSV(w io.Writer, r *settlement.Result) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"stage", "kind", "subject", "magnitude", "message"}}
	for _, wn := range r.Warnings {
		rows = append(rows, []string{string(wn.Stage), string(wn.Kind), wn.Subject, wn.Magnitude.String(), wn.Message})
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
