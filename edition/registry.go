package edition

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// =============================================================================
// EDITION REGISTRY
// =============================================================================

// ErrUnknownEdition is returned when no edition is registered under a name.
var ErrUnknownEdition = errors.New("unknown edition")

var (
	registry   = make(map[string]settlement.Params)
	registryMu sync.RWMutex
)

func init() {
	for _, p := range []settlement.Params{Classic(), Revised()} {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}

// Register validates a parameter table and stores a copy under its name,
// replacing any edition of the same name.
func Register(p settlement.Params) error {
	if p.Name == "" {
		return fmt.Errorf("register edition: %w: name is required", settlement.ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("register edition %q: %w", p.Name, err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name] = p.Clone()
	return nil
}

// Lookup returns a copy of a registered edition.
func Lookup(name string) (settlement.Params, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return settlement.Params{}, false
	}
	return p.Clone(), true
}

// MustLookup returns a registered edition or panics.
// Use in tests or when you're certain the edition exists.
func MustLookup(name string) settlement.Params {
	p, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("edition not registered: %s", name))
	}
	return p
}

// Names returns the registered edition names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engine builds an engine for a registered edition.
func Engine(name string) (*settlement.Engine, error) {
	p, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdition, name)
	}
	return settlement.NewEngine(p)
}

// IsBuiltIn reports whether a name belongs to an edition shipped with the
// engine. Built-in editions cannot be replaced over the API.
func IsBuiltIn(name string) bool {
	return name == NameClassic || name == NameRevised
}
