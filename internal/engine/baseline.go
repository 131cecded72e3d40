package engine

import (
	"encoding/json"
	"os"
	"time"

	"github.com/xab-mack/tactscan/internal/model"
)

// Baseline records accepted warning fingerprints so repeat runs only report
// new findings.
type Baseline struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	Fingerprints map[string]bool `json:"fingerprints"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Fingerprints: map[string]bool{}}
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, err
	}
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]bool{}
	}
	return b, nil
}

// FilterByBaseline drops warnings whose fingerprint is already accepted.
func FilterByBaseline(warnings []model.Warning, b Baseline) []model.Warning {
	if len(b.Fingerprints) == 0 {
		return warnings
	}
	var out []model.Warning
	for _, w := range warnings {
		if w.Fingerprint != "" && b.Fingerprints[w.Fingerprint] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func WriteBaseline(path string, warnings []model.Warning) error {
	if path == "" {
		return nil
	}
	b := Baseline{GeneratedAt: time.Now().UTC(), Fingerprints: map[string]bool{}}
	for _, w := range warnings {
		if w.Fingerprint != "" {
			b.Fingerprints[w.Fingerprint] = true
		}
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
