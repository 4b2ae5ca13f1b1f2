package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/grid-tactics/game/scenario"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateFile loads and validates a single scenario file: decoding, the
// definition checks, building the world and exit connectivity.
func validateFile(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	format, err := scenario.FormatFor(path)
	if err != nil {
		result.fail("Unsupported file: %v", err)
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	def, err := scenario.Parse(data, format)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(string(format)), err)
		return result
	}
	if def.ID == "" {
		def.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if problems := scenario.Problems(def); len(problems) > 0 {
		for _, p := range problems {
			result.fail("%s", p)
		}
		return result
	}

	built, err := scenario.Build(def)
	if err != nil {
		result.fail("Build failed: %v", err)
		return result
	}

	validateConnectivity(def, built, &result)
	return result
}

// validateConnectivity ensures every party member can walk to an exit cell.
// Scenarios that can be won by defeating all enemies only get a note.
func validateConnectivity(def *scenario.Definition, built *scenario.Built, result *ValidationResult) {
	var stuck []string
	for _, id := range built.Party {
		pos, _ := built.World.Positions.Get(id)
		attrs, _ := built.World.Attributes.Get(id)
		if stepsToExit(built.Grid, pos, attrs.Mov) < 0 {
			stuck = append(stuck, fmt.Sprintf("%s at (%d,%d)", label(def, id), pos.X, pos.Y))
		}
	}

	switch {
	case len(stuck) == 0:
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d characters can reach the exit", len(built.Party)))
	case def.HasWinCondition(scenario.WinDefeatAllEnemies):
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: %d/%d characters cannot reach the exit, won by defeating enemies", len(stuck), len(built.Party)))
	default:
		result.fail("Connectivity failure: %d/%d characters cannot reach the exit", len(stuck), len(built.Party))
		for _, s := range stuck {
			result.fail("Unreachable: %s", s)
		}
	}
}

func printResult(out io.Writer, result ValidationResult) {
	fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Fprintln(out, "✅ VALID")
		for _, info := range result.Errors {
			fmt.Fprintln(out, "  "+info)
		}
		return
	}

	fmt.Fprintln(out, "❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Fprintln(out, "  ❌ "+err)
		}
	}
}
