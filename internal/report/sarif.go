package report

import (
	"encoding/json"

	"github.com/xab-mack/tactscan/internal/model"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
}

func ToSARIF(warnings []model.Warning) ([]byte, error) {
	var results []sarifResult
	for _, w := range warnings {
		level := "note"
		switch w.Severity {
		case model.SeverityMedium:
			level = "warning"
		case model.SeverityHigh, model.SeverityCritical:
			level = "error"
		}
		results = append(results, sarifResult{
			RuleID:  w.DetectorID,
			Level:   level,
			Message: sarifMessage{Text: w.Message},
			Locations: []sarifLoc{{Physical: sarifPhys{
				ArtifactLocation: sarifArt{URI: w.Position.File},
				Region: sarifRegion{
					StartLine:   w.Position.Line,
					StartColumn: w.Position.Col,
					EndLine:     w.Position.EndLine,
				},
			}}},
		})
	}
	s := sarif{Version: "2.1.0", Runs: []sarifRun{{Tool: sarifTool{Driver: sarifDriver{Name: "tactscan"}}, Results: results}}}
	return json.MarshalIndent(s, "", "  ")
}
