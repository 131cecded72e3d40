package engine

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/model"
)

// applySuppressions filters warnings matched by config suppression rules or
// by inline suppression comments near the warning location.
func applySuppressions(warnings []model.Warning, cfg config.Config) []model.Warning {
	var out []model.Warning
	for _, w := range warnings {
		if isSuppressed(w, cfg) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isSuppressed(w model.Warning, cfg config.Config) bool {
	for _, s := range cfg.Suppressions {
		if s.Detector != "" && !strings.EqualFold(s.Detector, w.DetectorID) {
			continue
		}
		if s.Path != "" {
			if !strings.HasPrefix(filepath.ToSlash(w.Position.File), filepath.ToSlash(s.Path)) {
				continue
			}
		}
		return true
	}
	return hasInlineSuppression(w.Position.File, w.DetectorID, w.Position.Line)
}

// hasInlineSuppression looks around the warning location for a suppression
// comment. Format: // tactscan:ignore <detector-id>
func hasInlineSuppression(filePath, detectorID string, line int) bool {
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if len(lines) == 0 {
		return false
	}
	from := max(0, line-1-2)
	to := min(len(lines)-1, line-1+1)
	needle := "tactscan:ignore " + detectorID
	for i := from; i <= to; i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}
