package factory

import (
	"fmt"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// PERIOD STATE FILE SCHEMA
// =============================================================================

// StateJSON is the file representation of the opening period state.
type StateJSON struct {
	Quarter       int                `json:"quarter" yaml:"quarter"`
	FinishedGoods map[string]float64 `json:"finished_goods,omitempty" yaml:"finished_goods,omitempty"` // units, by channel
	RawMaterials  map[string]float64 `json:"raw_materials,omitempty" yaml:"raw_materials,omitempty"`   // units, by grade
	Workforce     int                `json:"workforce" yaml:"workforce"`
	Fleet         map[string]int     `json:"fleet,omitempty" yaml:"fleet,omitempty"`
	Cash          float64            `json:"cash" yaml:"cash"`
	LongTermDebt  float64            `json:"long_term_debt" yaml:"long_term_debt"`
	ShortTermDebt float64            `json:"short_term_debt" yaml:"short_term_debt"`
	Reserves      float64            `json:"reserves" yaml:"reserves"`
	PriorResult   float64            `json:"prior_result" yaml:"prior_result"`
	PriceIndex    *float64           `json:"price_index,omitempty" yaml:"price_index,omitempty"` // default 100
	WageIndex     *float64           `json:"wage_index,omitempty" yaml:"wage_index,omitempty"`   // default 100
}

// ForecastJSON maps channel identifiers to capped volumes in units.
type ForecastJSON map[string]float64

// ParseState decodes a period state document.
func ParseState(data []byte, format Format) (settlement.PeriodState, error) {
	var sj StateJSON
	if err := Decode(data, format, &sj); err != nil {
		return settlement.PeriodState{}, fmt.Errorf("%w: %v", settlement.ErrInvalidState, err)
	}
	return sj.ToState()
}

// LoadStateFile reads a period state from a .json, .yaml or .yml file.
func LoadStateFile(path string) (settlement.PeriodState, error) {
	var sj StateJSON
	if err := decodeFile(path, &sj); err != nil {
		return settlement.PeriodState{}, fmt.Errorf("%w: %v", settlement.ErrInvalidState, err)
	}
	return sj.ToState()
}

// ToState builds the period state.
func (sj StateJSON) ToState() (settlement.PeriodState, error) {
	if err := checkFinite(settlement.ErrInvalidState, sj); err != nil {
		return settlement.PeriodState{}, err
	}
	s := settlement.PeriodState{
		Quarter:       sj.Quarter,
		Workforce:     sj.Workforce,
		Cash:          num(sj.Cash),
		LongTermDebt:  num(sj.LongTermDebt),
		ShortTermDebt: num(sj.ShortTermDebt),
		Reserves:      num(sj.Reserves),
		PriorResult:   num(sj.PriorResult),
		PriceIndex:    numOr(sj.PriceIndex, 100),
		WageIndex:     numOr(sj.WageIndex, 100),
	}
	for _, key := range sortedKeys(sj.FinishedGoods) {
		c, err := settlement.ParseChannel(key)
		if err != nil {
			return s, fmt.Errorf("%w: finished_goods: %v", settlement.ErrInvalidState, err)
		}
		s.FinishedGoods[c] = num(sj.FinishedGoods[key])
	}
	for _, key := range sortedKeys(sj.RawMaterials) {
		var g settlement.Grade
		if err := g.UnmarshalText([]byte(key)); err != nil {
			return s, fmt.Errorf("%w: raw_materials: %v", settlement.ErrInvalidState, err)
		}
		s.RawMaterials[g] = num(sj.RawMaterials[key])
	}
	for _, key := range sortedKeys(sj.Fleet) {
		mc, err := parseMachineClass(key)
		if err != nil {
			return s, fmt.Errorf("%w: fleet: %v", settlement.ErrInvalidState, err)
		}
		s.Fleet[mc] = sj.Fleet[key]
	}
	return s, nil
}

// StateToJSON converts a period state into its file representation.
func StateToJSON(s settlement.PeriodState) StateJSON {
	price, wage := toFloat(s.PriceIndex), toFloat(s.WageIndex)
	sj := StateJSON{
		Quarter:       s.Quarter,
		FinishedGoods: make(map[string]float64, settlement.NumChannels),
		RawMaterials:  make(map[string]float64, settlement.NumGrades),
		Workforce:     s.Workforce,
		Fleet:         make(map[string]int, settlement.NumMachineClasses),
		Cash:          toFloat(s.Cash),
		LongTermDebt:  toFloat(s.LongTermDebt),
		ShortTermDebt: toFloat(s.ShortTermDebt),
		Reserves:      toFloat(s.Reserves),
		PriorResult:   toFloat(s.PriorResult),
		PriceIndex:    &price,
		WageIndex:     &wage,
	}
	for _, c := range settlement.Channels {
		sj.FinishedGoods[c.String()] = toFloat(s.FinishedGoods[c])
	}
	for _, g := range settlement.Grades {
		sj.RawMaterials[g.String()] = toFloat(s.RawMaterials[g])
	}
	for _, mc := range settlement.MachineClasses {
		sj.Fleet[mc.String()] = s.Fleet[mc]
	}
	return sj
}

// =============================================================================
// FORECAST
// =============================================================================

// ParseForecast decodes a forecast document. An empty document yields a
// nil Forecast.
func ParseForecast(data []byte, format Format) (settlement.Forecast, error) {
	var fj ForecastJSON
	if err := Decode(data, format, &fj); err != nil {
		return nil, fmt.Errorf("%w: %v", settlement.ErrInvalidForecast, err)
	}
	return fj.ToForecast()
}

// LoadForecastFile reads a forecast from a .json, .yaml or .yml file.
func LoadForecastFile(path string) (settlement.Forecast, error) {
	var fj ForecastJSON
	if err := decodeFile(path, &fj); err != nil {
		return nil, fmt.Errorf("%w: %v", settlement.ErrInvalidForecast, err)
	}
	return fj.ToForecast()
}

// ToForecast builds the forecast override.
func (fj ForecastJSON) ToForecast() (settlement.Forecast, error) {
	if len(fj) == 0 {
		return nil, nil
	}
	if err := checkFinite(settlement.ErrInvalidForecast, fj); err != nil {
		return nil, err
	}
	f := make(settlement.Forecast, len(fj))
	for _, key := range sortedKeys(fj) {
		c, err := settlement.ParseChannel(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", settlement.ErrInvalidForecast, err)
		}
		f[c] = num(fj[key])
	}
	return f, nil
}

// ForecastToJSON converts a forecast into its file representation.
func ForecastToJSON(f settlement.Forecast) ForecastJSON {
	if f == nil {
		return nil
	}
	fj := make(ForecastJSON, len(f))
	for c, v := range f {
		fj[c.String()] = toFloat(v)
	}
	return fj
}
