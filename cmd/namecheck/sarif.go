package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"namecheck/internal/fix"
	"namecheck/internal/rules"
	"namecheck/internal/storage"
	"namecheck/internal/symbol"
	"namecheck/internal/version"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool        SARIFTool         `json:"tool"`
	Results     []SARIFResult     `json:"results"`
	Invocations []SARIFInvocation `json:"invocations,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	FullDescription      *SARIFMessage           `json:"fullDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
	HelpURI              string                  `json:"helpUri,omitempty"`
	Properties           map[string]interface{}  `json:"properties,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID              string                 `json:"ruleId"`
	RuleIndex           int                    `json:"ruleIndex"`
	Level               string                 `json:"level,omitempty"` // error, warning, note, none
	Message             SARIFMessage           `json:"message"`
	Locations           []SARIFLocation        `json:"locations,omitempty"`
	Fingerprints        map[string]string      `json:"fingerprints,omitempty"`
	PartialFingerprints map[string]string      `json:"partialFingerprints,omitempty"`
	Fixes               []SARIFFix             `json:"fixes,omitempty"`
	Properties          map[string]interface{} `json:"properties,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIFFix is a proposed change to one or more artifacts.
type SARIFFix struct {
	Description     SARIFMessage          `json:"description"`
	ArtifactChanges []SARIFArtifactChange `json:"artifactChanges"`
}

// SARIFArtifactChange lists the replacements in one file.
type SARIFArtifactChange struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Replacements     []SARIFReplacement    `json:"replacements"`
}

// SARIFReplacement replaces a region with new text.
type SARIFReplacement struct {
	DeletedRegion   SARIFRegion           `json:"deletedRegion"`
	InsertedContent *SARIFArtifactContent `json:"insertedContent,omitempty"`
}

// SARIFArtifactContent holds inserted text.
type SARIFArtifactContent struct {
	Text string `json:"text"`
}

// SARIFInvocation describes a single invocation of the tool.
type SARIFInvocation struct {
	ExecutionSuccessful bool                   `json:"executionSuccessful"`
	CommandLine         string                 `json:"commandLine,omitempty"`
	WorkingDirectory    *SARIFArtifactLocation `json:"workingDirectory,omitempty"`
	Machine             string                 `json:"machine,omitempty"`
}

// FormatCheckAsSARIF converts a check report to SARIF. Every enabled rule is
// listed in the driver so results can point at it by index.
func FormatCheckAsSARIF(resp *CheckResponseCLI, reg *rules.Registry, repoRoot string) (string, error) {
	enabled := reg.Rules()
	sarifRules := make([]SARIFRule, 0, len(enabled))
	ruleIndex := make(map[string]int, len(enabled))
	for _, r := range enabled {
		ruleIndex[r.ID] = len(sarifRules)
		sarifRules = append(sarifRules, SARIFRule{
			ID:   r.ID,
			Name: r.Name,
			ShortDescription: &SARIFMessage{
				Text: r.Description,
			},
			DefaultConfiguration: &SARIFRuleConfiguration{
				Level: "warning",
			},
			Properties: map[string]interface{}{
				"family":  string(r.Family),
				"fixable": r.HasFix(),
				"tags":    []string{"naming", string(r.Family)},
			},
		})
	}

	fixes := indexFixes(resp.Fixes)

	results := make([]SARIFResult, 0, len(resp.Diagnostics))
	for _, d := range resp.Diagnostics {
		res := SARIFResult{
			RuleID:    d.RuleID,
			RuleIndex: ruleIndex[d.RuleID],
			Level:     "warning",
			Message: SARIFMessage{
				Text: fmt.Sprintf("%s '%s': %s", d.Kind, qualifiedName(d), d.Message),
			},
			Fingerprints: map[string]string{
				"namecheck/v1": storage.Fingerprint(d),
			},
			Properties: map[string]interface{}{
				"symbolKind": string(d.Kind),
				"symbolName": d.SymbolName,
			},
		}
		if d.Location.Path != "" {
			res.Locations = []SARIFLocation{{PhysicalLocation: physicalLocation(d.Location, repoRoot)}}
		}
		if d.Container != "" {
			res.Properties["container"] = d.Container
		}
		if d.ProposedName != "" {
			res.Properties["proposedName"] = d.ProposedName
			if f, ok := fixes[fixKey{d.RuleID, d.SymbolID, d.SymbolName}]; ok {
				if sf := renameFix(f, repoRoot); sf != nil {
					res.Fixes = []SARIFFix{*sf}
				}
			}
		}
		results = append(results, res)
	}

	report := SARIFReport{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            version.ToolName,
						Version:         version.Info(),
						SemanticVersion: version.Version,
						Rules:           sarifRules,
					},
				},
				Results: results,
				Invocations: []SARIFInvocation{
					{
						ExecutionSuccessful: true,
						WorkingDirectory: &SARIFArtifactLocation{
							URI: repoRoot,
						},
						Machine: runtime.GOOS + "/" + runtime.GOARCH,
					},
				},
			},
		},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return string(data), nil
}

type fixKey struct{ rule, symbol, name string }

func indexFixes(fixes []fix.Replacement) map[fixKey]fix.Replacement {
	out := make(map[fixKey]fix.Replacement, len(fixes))
	for _, f := range fixes {
		out[fixKey{f.RuleID, f.SymbolID, f.OldName}] = f
	}
	return out
}

func physicalLocation(loc symbol.Location, repoRoot string) *SARIFPhysicalLocation {
	pl := &SARIFPhysicalLocation{
		ArtifactLocation: &SARIFArtifactLocation{
			URI:       toRelativeURI(loc.Path, repoRoot),
			URIBaseID: "%SRCROOT%",
		},
	}
	if loc.Line > 0 {
		pl.Region = &SARIFRegion{StartLine: loc.Line, StartColumn: loc.Column}
	}
	return pl
}

// renameFix turns a replacement into SARIF artifact changes, one per file.
// Sites without a column cannot be addressed and are left out; nil means no
// site could be.
func renameFix(f fix.Replacement, repoRoot string) *SARIFFix {
	width := utf8.RuneCountInString(f.OldName)

	var changes []SARIFArtifactChange
	byPath := make(map[string]int)
	sites := append([]symbol.Location{f.Location}, f.References...)
	for _, site := range sites {
		if site.Path == "" || site.Line <= 0 || site.Column <= 0 {
			continue
		}
		i, ok := byPath[site.Path]
		if !ok {
			i = len(changes)
			byPath[site.Path] = i
			changes = append(changes, SARIFArtifactChange{
				ArtifactLocation: SARIFArtifactLocation{
					URI:       toRelativeURI(site.Path, repoRoot),
					URIBaseID: "%SRCROOT%",
				},
			})
		}
		changes[i].Replacements = append(changes[i].Replacements, SARIFReplacement{
			DeletedRegion: SARIFRegion{
				StartLine:   site.Line,
				StartColumn: site.Column,
				EndLine:     site.Line,
				EndColumn:   site.Column + width,
			},
			InsertedContent: &SARIFArtifactContent{Text: f.NewName},
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &SARIFFix{
		Description:     SARIFMessage{Text: fmt.Sprintf("Rename %s to %s", f.OldName, f.NewName)},
		ArtifactChanges: changes,
	}
}

// toRelativeURI converts an absolute path to a relative URI. Relative paths
// are kept as they are.
func toRelativeURI(path, base string) string {
	if !filepath.IsAbs(path) || base == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	// Convert to forward slashes for URI
	return filepath.ToSlash(rel)
}
