// Package report renders settlement results for people and spreadsheets.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// Meta describes where a result came from. Every field is optional.
type Meta struct {
	Title string
	RunID string
	Label string
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func units(d decimal.Decimal) string { return d.StringFixed(0) }

// RenderMarkdown renders a result as a Markdown document.
func RenderMarkdown(r *settlement.Result, meta Meta) string {
	var sb strings.Builder

	// Header
	title := meta.Title
	if title == "" {
		title = fmt.Sprintf("Quarter %d settlement", r.Quarter)
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Edition: %s | Quarter: %d | Warnings: %d\n\n", r.Edition, r.Quarter, len(r.Warnings)))
	if meta.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s", meta.RunID))
		if meta.Label != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", meta.Label))
		}
		sb.WriteString("\n\n")
	}

	// Income statement
	in := r.Income
	sb.WriteString("## Income Statement (K€)\n\n")
	sb.WriteString("| Line | Amount |\n")
	sb.WriteString("|------|-------:|\n")
	for _, row := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Revenue", in.Revenue},
		{"Inventory variation", in.InventoryVariation},
		{"Material", in.Material.Neg()},
		{"Personnel", in.Personnel.Neg()},
		{"Depreciation", in.Depreciation.Neg()},
		{"External charges", in.ExternalCharges.Neg()},
		{"Taxes and duties", in.TaxesAndDuties.Neg()},
		{"**Operating result**", in.OperatingResult},
		{"Financial result", in.FinancialResult},
		{"Exceptional result", in.ExceptionalResult},
		{"**Pre-tax result**", in.PreTaxResult},
		{"Corporate tax", in.Tax.Neg()},
		{"**Net result**", in.NetResult},
	} {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.label, money(row.value)))
	}
	sb.WriteString("\n")

	// Channels
	sb.WriteString("## Channels\n\n")
	sb.WriteString("| Channel | Net price € | Produced | Sold | Contract short | Ending stock | Revenue K€ | Penalty K€ |\n")
	sb.WriteString("|---------|------------:|---------:|-----:|---------------:|-------------:|-----------:|-----------:|\n")
	for _, ch := range r.Channels {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			ch.Channel, money(ch.NetPrice), units(ch.Produced), units(ch.Sold),
			units(ch.Shortfall), units(ch.EndingInventory), money(ch.Revenue), money(ch.Penalty)))
	}
	sb.WriteString("\n")

	// Production
	w := r.Workforce
	sb.WriteString("## Production\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|------:|\n")
	for _, m := range r.Capacity.Machines {
		sb.WriteString(fmt.Sprintf("| Active %s machines | %d of %d |\n", m.Class, m.Active, m.Owned))
	}
	sb.WriteString(fmt.Sprintf("| Maintenance factor | %s |\n", r.Capacity.MaintenanceFactor.String()))
	sb.WriteString(fmt.Sprintf("| Workforce (available / required) | %d / %d |\n", w.Available, w.Required))
	sb.WriteString(fmt.Sprintf("| Temporary workers | %d |\n", w.Shortfall))
	sb.WriteString(fmt.Sprintf("| Short-time workers | %d |\n", w.Surplus))
	for _, g := range r.Materials.Grades {
		sb.WriteString(fmt.Sprintf("| Material %s balance | %s |\n", g.Grade, units(g.Balance)))
	}
	sb.WriteString(fmt.Sprintf("| Production costs K€ | %s |\n", money(r.ProductionCosts.Total)))
	sb.WriteString(fmt.Sprintf("| Commercial costs K€ | %s |\n", money(r.Commercial.Total)))
	sb.WriteString("\n")

	// Cash
	c := r.Cash
	sb.WriteString("## Cash (K€)\n\n")
	sb.WriteString("| Line | Amount |\n")
	sb.WriteString("|------|-------:|\n")
	sb.WriteString(fmt.Sprintf("| Opening | %s |\n", money(c.Opening)))
	sb.WriteString(fmt.Sprintf("| Receipts | %s |\n", money(c.Receipts.Total)))
	sb.WriteString(fmt.Sprintf("| Disbursements | %s |\n", money(c.Disbursements.Total.Neg())))
	sb.WriteString(fmt.Sprintf("| Before financing | %s |\n", money(c.PreFinancing)))
	sb.WriteString(fmt.Sprintf("| Financing charges | %s |\n", money(r.Financing.Total.Neg())))
	sb.WriteString(fmt.Sprintf("| Dividends paid | %s |\n", money(r.Dividends.Paid.Neg())))
	sb.WriteString(fmt.Sprintf("| **Ending** | %s |\n", money(c.Ending)))
	sb.WriteString("\n")

	// Warnings
	sb.WriteString("## Warnings\n\n")
	if len(r.Warnings) == 0 {
		sb.WriteString("No warnings.\n")
	}
	for _, wn := range r.Warnings {
		if wn.Subject != "" {
			sb.WriteString(fmt.Sprintf("- **%s** `%s` [%s]: %s\n", wn.Stage, wn.Kind, wn.Subject, wn.Message))
			continue
		}
		sb.WriteString(fmt.Sprintf("- **%s** `%s`: %s\n", wn.Stage, wn.Kind, wn.Message))
	}

	return sb.String()
}
