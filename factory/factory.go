/*
Package factory converts edition, decision, state and forecast files into
settlement values.

PURPOSE:
  The engine works on typed, decimal values. People write numbers. The
  factory reads JSON or YAML documents of plain numbers, checks that every
  keyed section names a real channel, grade, network or machine class, and
  builds the settlement structs. Range checks stay with the engine, which
  reports every offending field at once.

FORMATS:
  JSON and YAML share one schema; field names are snake_case in both.
  Unknown fields are rejected so a typo never silently becomes a zero.

DEFAULTS (matching the paper decision form):
  - channel quality: 100
  - maintenance: true
  - price and wage index: 100

EXAMPLE (decisions.json):
  {
    "channels": {
      "A-CT": {"tariff_price": 20.60, "production_ku": 420}
    },
    "production": {"machines": {"M1": {"active": 15}}}
  }

USAGE:
  d, err := factory.LoadDecisionsFile("decisions.json")
  s, err := factory.LoadStateFile("state.yaml")
  f, err := factory.LoadForecastFile("forecast.json")

SEE ALSO:
  - params.go: Edition files
  - decisions.go: Decision bundle schema
  - state.go: Period state and forecast schema
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor guesses the format from a file extension; JSON unless the
// extension is .yaml or .yml.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode strictly decodes a document into v.
func Decode(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	return nil
}

// Encode writes v in the given format.
func Encode(v any, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(data, FormatFor(path), v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// =============================================================================
// NUMBER HELPERS
// =============================================================================

// num converts a float already checked by checkFinite.
func num(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func numOr(f *float64, def float64) decimal.Decimal {
	if f == nil {
		return decimal.NewFromFloat(def)
	}
	return decimal.NewFromFloat(*f)
}

// checkFinite reports every NaN or infinite number in a decoded document as
// an InputError of the given kind. YAML accepts .nan and .inf; decimals
// cannot hold them.
func checkFinite(kind error, doc any) error {
	var errs settlement.ValidationErrors
	walkFloats(reflect.ValueOf(doc), "", func(field string, f float64) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, &settlement.InputError{
				Kind:   kind,
				Field:  field,
				Value:  strconv.FormatFloat(f, 'g', -1, 64),
				Reason: "must be a finite number",
			})
		}
	})
	return errs.OrNil()
}

func walkFloats(v reflect.Value, path string, visit func(field string, f float64)) {
	join := func(key string) string {
		if path == "" {
			return key
		}
		return path + "." + key
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		visit(path, v.Float())
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			walkFloats(v.Elem(), path, visit)
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name == "" {
				name = t.Field(i).Name
			}
			walkFloats(v.Field(i), join(name), visit)
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
		for _, k := range keys {
			walkFloats(v.MapIndex(k), join(fmt.Sprint(k)), visit)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkFloats(v.Index(i), join(strconv.Itoa(i)), visit)
		}
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// sortedKeys keeps error reporting stable across map iteration orders.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
