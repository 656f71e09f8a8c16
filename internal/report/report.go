// Package report saves equity results as JSON so runs can be compared and
// replayed with the recorded seed.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/holdem-odds/analysis"
	"github.com/lox/holdem-odds/poker"
)

// Report is the JSON document written for one simulation.
type Report struct {
	Hero      string   `json:"hero"`
	Villain   string   `json:"villain"`
	Board     []string `json:"board,omitempty"`
	Seed      int64    `json:"seed"`
	Trials    int      `json:"trials"`
	Requested int      `json:"requested"`
	Combos    int      `json:"combos"`
	Partial   bool     `json:"partial,omitempty"`

	WinPct    float64 `json:"win_pct"`
	TiePct    float64 `json:"tie_pct"`
	LossPct   float64 `json:"loss_pct"`
	Equity    float64 `json:"equity"`
	CILower   float64 `json:"ci_lower"`
	CIUpper   float64 `json:"ci_upper"`
	ElapsedMS int64   `json:"elapsed_ms"`

	HandTypes map[string]float64 `json:"hand_types,omitempty"`
}

// New builds a report. villain describes the opponent ("K♠ K♥", a range or "random").
func New(hero poker.Hand, villain string, board []poker.Card, seed int64, r analysis.EquityResult) Report {
	rep := Report{
		Hero:      hero.String(),
		Villain:   villain,
		Seed:      seed,
		Trials:    r.Trials,
		Requested: r.Requested,
		Combos:    r.Combos,
		Partial:   r.Partial,
		WinPct:    r.WinPct,
		TiePct:    r.TiePct,
		LossPct:   r.LossPct,
		Equity:    r.Equity(),
		ElapsedMS: r.Elapsed.Milliseconds(),
	}
	rep.CILower, rep.CIUpper = r.ConfidenceInterval()
	for _, c := range board {
		rep.Board = append(rep.Board, c.Notation())
	}
	for c, pct := range r.HandTypes {
		if pct > 0 {
			if rep.HandTypes == nil {
				rep.HandTypes = make(map[string]float64)
			}
			rep.HandTypes[poker.Category(c).String()] = pct
		}
	}
	return rep
}

// Write encodes the report and replaces filename with it.
func Write(filename string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return writeFileAtomic(filename, append(data, '\n'), 0o644)
}

// Read loads a report written by Write.
func Read(filename string) (Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Report{}, err
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return Report{}, fmt.Errorf("failed to decode report %s: %w", filename, err)
	}
	return rep, nil
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over filename, so readers see the old report or the new one and
// never a partial write.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	committed = true
	return nil
}
