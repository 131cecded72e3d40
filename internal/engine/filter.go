package engine

import (
	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/model"
)

// filterBySeverity removes warnings below the configured severity threshold.
func filterBySeverity(warnings []model.Warning, cfg config.Config) []model.Warning {
	threshold := model.ParseSeverity(cfg.SeverityThreshold)
	var out []model.Warning
	for _, w := range warnings {
		if model.SeverityGTE(w.Severity, threshold) {
			out = append(out, w)
		}
	}
	return out
}
