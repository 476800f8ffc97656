/*
main.go - Command-line settlement

PURPOSE:
  Settles one quarter from files and prints the report, without a server
  or database. Exits non-zero on any structural error.

COMMAND-LINE FLAGS:
  -decisions     Decision file, .json/.yaml/.yml (required)
  -state         Opening state file (required)
  -forecast      Sales forecast override (optional)
  -edition       Edition name (default: MIRAGE_EDITION or classic)
  -edition-file  Edition file registered before settling
  -format        markdown | csv | channels | warnings | json

EXAMPLES:
  ./settle -decisions q1.yaml -state opening.yaml
  ./settle -decisions q1.yaml -state opening.yaml -edition revised -format json
*/
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mirage-sim/settlement-engine/config"
	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/factory"
	"github.com/mirage-sim/settlement-engine/report"
	"github.com/mirage-sim/settlement-engine/settlement"
)

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("settle: ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := run(os.Args[1:], cfg.DefaultEdition, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// run parses args, settles the quarter and writes the report to out.
func run(args []string, defaultEdition string, out io.Writer) error {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	decisionsPath := fs.String("decisions", "", "Decision file (.json, .yaml)")
	statePath := fs.String("state", "", "Opening state file (.json, .yaml)")
	forecastPath := fs.String("forecast", "", "Sales forecast override file")
	editionName := fs.String("edition", defaultEdition, "Edition name")
	editionFile := fs.String("edition-file", "", "Edition file registered before settling")
	format := fs.String("format", "markdown", "Output: markdown, csv, channels, warnings or json")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *decisionsPath == "" || *statePath == "" {
		fs.Usage()
		return errUsage
	}

	if *editionFile != "" {
		p, err := factory.LoadEditionFile(*editionFile)
		if err != nil {
			return fmt.Errorf("edition file %s: %w", *editionFile, err)
		}
		if err := edition.Register(p); err != nil {
			return err
		}
		if *editionName == defaultEdition {
			*editionName = p.Name
		}
	}

	d, err := factory.LoadDecisionsFile(*decisionsPath)
	if err != nil {
		return fmt.Errorf("decisions %s: %w", *decisionsPath, err)
	}
	s, err := factory.LoadStateFile(*statePath)
	if err != nil {
		return fmt.Errorf("state %s: %w", *statePath, err)
	}
	var f settlement.Forecast
	if *forecastPath != "" {
		if f, err = factory.LoadForecastFile(*forecastPath); err != nil {
			return fmt.Errorf("forecast %s: %w", *forecastPath, err)
		}
	}

	engine, err := edition.Engine(*editionName)
	if err != nil {
		return err
	}
	result, err := engine.Settle(d, s, f)
	if err != nil {
		return err
	}
	return write(out, *format, result)
}

func write(out io.Writer, format string, r *settlement.Result) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(out, report.RenderMarkdown(r, report.Meta{}))
		return err
	case "csv":
		return report.WriteSummaryCSV(out, r)
	case "channels":
		return report.WriteChannelsCSV(out, r)
	case "warnings":
		return report.WriteWarningsCSV(out, r)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("unknown format %q", format)
}
