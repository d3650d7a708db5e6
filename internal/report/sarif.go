package report

import (
	"io"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool       `json:"tool"`
	AutomationDetails sarifAutomation `json:"automationDetails"`
	Results           []sarifResult   `json:"results"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string        `json:"id"`
	ShortDescription     sarifMessage  `json:"shortDescription"`
	HelpURI              string        `json:"helpUri,omitempty"`
	DefaultConfiguration sarifRuleConf `json:"defaultConfiguration"`
	Properties           *sarifProps   `json:"properties,omitempty"`
}

type sarifRuleConf struct {
	Level   string `json:"level"`
	Enabled bool   `json:"enabled"`
}

type sarifProps struct {
	Category string `json:"category,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// sarifLevel maps a severity onto a SARIF result level.
func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	case diag.SeverityInfo:
		return "note"
	}

	return "none"
}

// SARIF writes r as a single-run SARIF 2.1.0 log. Every descriptor that
// appears in r, admitted or meta, is listed as a rule.
func SARIF(w io.Writer, r *Report, tool Tool) error {
	all := r.All()

	descs := make(map[string]*diag.Descriptor)
	for _, d := range r.Rules {
		descs[d.ID] = d
	}
	for _, d := range all {
		if d.Descriptor != nil {
			descs[d.Descriptor.ID] = d.Descriptor
		}
	}
	ids := make([]string, 0, len(descs))
	for id := range descs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	rules := make([]sarifRule, 0, len(ids))
	for i, id := range ids {
		d := descs[id]
		index[id] = i
		rule := sarifRule{
			ID:               d.ID,
			ShortDescription: sarifMessage{Text: d.Title},
			HelpURI:          d.HelpURL,
			DefaultConfiguration: sarifRuleConf{
				Level:   sarifLevel(d.DefaultSeverity),
				Enabled: d.EnabledByDefault,
			},
		}
		if d.Category != "" {
			rule.Properties = &sarifProps{Category: d.Category}
		}
		rules = append(rules, rule)
	}

	results := make([]sarifResult, 0, len(all))
	for _, d := range all {
		res := sarifResult{
			RuleID:    d.ID(),
			RuleIndex: index[d.ID()],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message()},
		}
		if l := d.Location; l.Path != "" {
			res.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: filepath.ToSlash(l.Path)},
					Region: sarifRegion{
						StartLine:   l.Start.Line,
						StartColumn: l.Start.Column,
						EndLine:     l.End.Line,
						EndColumn:   l.End.Column,
					},
				},
			}}
		}
		results = append(results, res)
	}

	name := tool.Name
	if name == "" {
		name = "vssdkcheck"
	}
	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           name,
				Version:        tool.Version,
				InformationURI: tool.InformationURI,
				Rules:          rules,
			}},
			AutomationDetails: sarifAutomation{GUID: uuid.NewString()},
			Results:           results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(log)
}
