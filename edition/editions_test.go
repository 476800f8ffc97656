package edition_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/settlement"
)

func TestBuiltInEditionsAreValid(t *testing.T) {
	for _, p := range []settlement.Params{edition.Classic(), edition.Revised()} {
		assert.NoError(t, p.Validate(), p.Name)
	}
}

func TestRegistry_ListsBuiltIns(t *testing.T) {
	names := edition.Names()
	assert.Contains(t, names, edition.NameClassic)
	assert.Contains(t, names, edition.NameRevised)
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	// GIVEN: A looked-up edition that the caller mutates
	p := edition.MustLookup(edition.NameClassic)
	p.StudyFees['A'] = settlement.Dec("100")
	p.Workforce.RetirementQuarters = append(p.Workforce.RetirementQuarters, 3)

	// THEN: The registered copy is unchanged
	again := edition.MustLookup(edition.NameClassic)
	assert.True(t, again.StudyFees['A'].Equal(settlement.Dec("2")))
	assert.Equal(t, []int{2, 4}, again.Workforce.RetirementQuarters)
}

func TestRegistry_RegisterCustom(t *testing.T) {
	p := edition.Classic()
	p.Name = "tournament"
	p.Finance.CorporateTaxRate = settlement.Dec("0.25")
	require.NoError(t, edition.Register(p))

	engine, err := edition.Engine("tournament")
	require.NoError(t, err)
	assert.Equal(t, "tournament", engine.Edition())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	p := edition.Classic()
	p.Name = "broken"
	p.Finance.VATRate = settlement.Dec("-0.2")

	err := edition.Register(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, settlement.ErrInvalidParams))
	_, ok := edition.Lookup("broken")
	assert.False(t, ok)
}

func TestEngine_UnknownEdition(t *testing.T) {
	_, err := edition.Engine("nope")
	assert.ErrorIs(t, err, edition.ErrUnknownEdition)
}

func TestRevised_DiffersFromClassic(t *testing.T) {
	c, r := edition.Classic(), edition.Revised()
	assert.False(t, c.Workforce.BaseMonthlyWage.Equal(r.Workforce.BaseMonthlyWage))
	assert.False(t, c.StockoutPenaltyRate.Equal(r.StockoutPenaltyRate))
	assert.True(t, c.Machines[settlement.MachineM1].Yield[settlement.ProductA].Equal(r.Machines[settlement.MachineM1].Yield[settlement.ProductA]))
}
