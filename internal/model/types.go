package model

import "fmt"

// Origin marks whether a source span comes from user-authored code or from
// the bundled standard library. Detectors use it to filter stdlib noise.
type Origin string

const (
	OriginUser   Origin = "user"
	OriginStdlib Origin = "stdlib"
)

// Position identifies a source span. It is an immutable value type and is
// safe to use as a map key; two positions are equal iff file, interval and
// origin all match.
type Position struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	EndLine int    `json:"endLine"`
	EndCol  int    `json:"endCol"`
	Origin  Origin `json:"origin"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// IsZero reports whether the position carries no location at all.
func (p Position) IsZero() bool { return p == Position{} }

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) Severity {
	switch s {
	case string(SeverityCritical):
		return SeverityCritical
	case string(SeverityHigh):
		return SeverityHigh
	case string(SeverityMedium):
		return SeverityMedium
	case string(SeverityLow):
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// SeverityRank orders severities: info < low < medium < high < critical.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	default:
		return 1
	}
}

func SeverityGTE(a, b Severity) bool { return SeverityRank(a) >= SeverityRank(b) }

// Warning is the unit of output: one finding reported by one detector at one
// source position.
type Warning struct {
	DetectorID  string   `json:"detectorId"`
	Severity    Severity `json:"severity"`
	Position    Position `json:"position"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Extra       string   `json:"extra,omitempty"`
	DocsURL     string   `json:"docsUrl,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}
