package settlement

import "github.com/shopspring/decimal"

// =============================================================================
// PERIOD STATE - The firm at the start of the quarter
// =============================================================================

// PeriodState is the opening snapshot of the firm. The engine reads it and
// never writes it; rolling the state forward belongs to the caller.
type PeriodState struct {
	// Quarter of the year, 1..4. Drives absenteeism and retirements.
	Quarter int

	FinishedGoods [NumChannels]decimal.Decimal // units, per channel
	RawMaterials  [NumGrades]decimal.Decimal   // units, per grade

	Workforce int                    // permanent headcount
	Fleet     [NumMachineClasses]int // owned machines

	Cash          decimal.Decimal // K€
	LongTermDebt  decimal.Decimal // K€
	ShortTermDebt decimal.Decimal // K€
	Reserves      decimal.Decimal // K€
	PriorResult   decimal.Decimal // K€, net result of the previous quarter

	// PriceIndex and WageIndex are 100-based.
	PriceIndex decimal.Decimal
	WageIndex  decimal.Decimal
}

// OpeningInventory returns the finished-goods stock of one product across
// both networks.
func (s PeriodState) OpeningInventory(p Product) decimal.Decimal {
	total := zero
	for _, n := range Networks {
		total = total.Add(s.FinishedGoods[ChannelOf(p, n)])
	}
	return total
}
