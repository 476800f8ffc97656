/*
Package settlement provides the quarterly settlement engine.

PURPOSE:
  Given a firm's decisions for one simulated quarter and its opening state,
  the engine computes production feasibility, resource consumption, costs,
  revenues, a full income statement, a cash projection and an ordered list
  of business-rule warnings. It is a pure function: no I/O, no clock, no
  randomness, no shared mutable state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product / Network / Channel: the six product-channel combinations
  - Grade: the two raw-material tiers (standard N, premium S)
  - MachineClass: the two machine families (M1, M2)
  - Decimal helpers shared by every pipeline stage

UNITS:
  Volumes in decisions are thousand units (KU) unless noted, stocks and
  contracts are units, prices are euros, every cost/revenue/cash line is K€.

DESIGN PRINCIPLES:
  1. Purity: inputs are passed by value, the Result is built fresh per call
  2. Precision: decimal.Decimal everywhere, no float arithmetic
  3. Type Safety: typed enums index fixed-size arrays, no string lookups
  4. Injection: the Parameter Table is a value handed to NewEngine

SEE ALSO:
  - params.go: Parameter Table
  - engine.go: The settlement pipeline
  - result.go: Result Bundle
*/
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCTS, NETWORKS, CHANNELS
// =============================================================================

// Product is one of the three manufactured products.
type Product int

const (
	ProductA Product = iota
	ProductB
	ProductC
)

// NumProducts is the number of products.
const NumProducts = 3

// Products lists the products in a stable order.
var Products = [NumProducts]Product{ProductA, ProductB, ProductC}

func (p Product) String() string {
	switch p {
	case ProductA:
		return "A"
	case ProductB:
		return "B"
	case ProductC:
		return "C"
	}
	return fmt.Sprintf("Product(%d)", int(p))
}

// Valid reports whether p is one of the three products.
func (p Product) Valid() bool { return p >= ProductA && p <= ProductC }

// Network is a distribution channel family.
type Network int

const (
	// NetworkCT is the direct/traditional trade network.
	NetworkCT Network = iota
	// NetworkGS is the large-retail network. Rebates and bonuses apply here.
	NetworkGS
)

// NumNetworks is the number of distribution networks.
const NumNetworks = 2

// Networks lists the networks in a stable order.
var Networks = [NumNetworks]Network{NetworkCT, NetworkGS}

func (n Network) String() string {
	switch n {
	case NetworkCT:
		return "CT"
	case NetworkGS:
		return "GS"
	}
	return fmt.Sprintf("Network(%d)", int(n))
}

// Channel identifies one product sold through one network.
type Channel int

const (
	ChannelACT Channel = iota
	ChannelAGS
	ChannelBCT
	ChannelBGS
	ChannelCCT
	ChannelCGS
)

// NumChannels is the number of product-channel combinations.
const NumChannels = NumProducts * NumNetworks

// Channels lists every channel in a stable order.
var Channels = [NumChannels]Channel{
	ChannelACT, ChannelAGS,
	ChannelBCT, ChannelBGS,
	ChannelCCT, ChannelCGS,
}

// ChannelOf returns the channel for a product and network.
func ChannelOf(p Product, n Network) Channel {
	return Channel(int(p)*NumNetworks + int(n))
}

// Product returns the product sold on the channel.
func (c Channel) Product() Product { return Product(int(c) / NumNetworks) }

// Network returns the network of the channel.
func (c Channel) Network() Network { return Network(int(c) % NumNetworks) }

// Valid reports whether c is one of the six channels.
func (c Channel) Valid() bool { return c >= ChannelACT && c <= ChannelCGS }

// String returns the channel identifier, e.g. "A-CT".
func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return c.Product().String() + "-" + c.Network().String()
}

// ParseChannel converts an identifier such as "B-GS" back to a Channel.
func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// =============================================================================
// RAW MATERIALS AND MACHINES
// =============================================================================

// Grade is a raw-material quality tier.
type Grade int

const (
	// GradeN is the standard grade, consumed by quality-100 production.
	GradeN Grade = iota
	// GradeS is the premium grade, consumed by quality-0 production.
	GradeS
)

// NumGrades is the number of raw-material grades.
const NumGrades = 2

// Grades lists the grades in a stable order.
var Grades = [NumGrades]Grade{GradeN, GradeS}

func (g Grade) String() string {
	switch g {
	case GradeN:
		return "N"
	case GradeS:
		return "S"
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// MachineClass is a family of production machines.
type MachineClass int

const (
	MachineM1 MachineClass = iota
	MachineM2
)

// NumMachineClasses is the number of machine classes.
const NumMachineClasses = 2

// MachineClasses lists the classes in a stable order.
var MachineClasses = [NumMachineClasses]MachineClass{MachineM1, MachineM2}

func (m MachineClass) String() string {
	switch m {
	case MachineM1:
		return "M1"
	case MachineM2:
		return "M2"
	}
	return fmt.Sprintf("MachineClass(%d)", int(m))
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	zero     = decimal.Zero
	one      = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Dec builds a decimal from a literal string. It panics on malformed input,
// so use it only for constants.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Int builds a decimal from an integer.
func Int(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// kiloToUnits converts thousand units into units.
func kiloToUnits(ku decimal.Decimal) decimal.Decimal { return ku.Mul(thousand) }

// toKilo converts an amount in euros into K€.
func toKilo(eur decimal.Decimal) decimal.Decimal { return eur.Div(thousand) }

// pct converts a 0-100 percentage into a fraction.
func pct(p decimal.Decimal) decimal.Decimal { return p.Div(hundred) }

// indexed scales a nominal amount by a 100-based index.
func indexed(amount, index decimal.Decimal) decimal.Decimal {
	return amount.Mul(index).Div(hundred)
}

func maxDec(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func minDec(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// =============================================================================
// TEXT ENCODING - Enums travel as their identifiers in JSON
// =============================================================================

func (p Product) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Product) UnmarshalText(b []byte) error {
	for _, v := range Products {
		if v.String() == string(b) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown product %q", b)
}

func (n Network) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *Network) UnmarshalText(b []byte) error {
	for _, v := range Networks {
		if v.String() == string(b) {
			*n = v
			return nil
		}
	}
	return fmt.Errorf("unknown network %q", b)
}

func (c Channel) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Channel) UnmarshalText(b []byte) error {
	v, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (g Grade) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Grade) UnmarshalText(b []byte) error {
	for _, v := range Grades {
		if v.String() == string(b) {
			*g = v
			return nil
		}
	}
	return fmt.Errorf("unknown grade %q", b)
}

func (m MachineClass) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MachineClass) UnmarshalText(b []byte) error {
	for _, v := range MachineClasses {
		if v.String() == string(b) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown machine class %q", b)
}
