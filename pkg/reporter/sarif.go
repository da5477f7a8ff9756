package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yaklabco/napcheck/pkg/config"
	"github.com/yaklabco/napcheck/pkg/lint"
	"github.com/yaklabco/napcheck/pkg/runner"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

const (
	sarifToolName       = "napcheck"
	sarifInformationURI = "https://github.com/yaklabco/napcheck"
	sarifDevVersion     = "dev"
)

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool              SARIFTool              `json:"tool"`
	AutomationDetails SARIFAutomationDetails `json:"automationDetails"`
	Invocations       []SARIFInvocation      `json:"invocations"`
	Results           []SARIFResult          `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFAutomationDetails identifies one run so uploads can be correlated.
type SARIFAutomationDetails struct {
	GUID string `json:"guid"`
}

// SARIFInvocation records how the run went.
type SARIFInvocation struct {
	ExecutionSuccessful        bool                `json:"executionSuccessful"`
	ToolExecutionNotifications []SARIFNotification `json:"toolExecutionNotifications,omitempty"`
}

// SARIFNotification reports a file or declaration the tool could not check.
type SARIFNotification struct {
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations,omitempty"`
}

// SARIFRule describes a rule (linter check).
type SARIFRule struct {
	ID               string               `json:"id"`
	Name             string               `json:"name,omitempty"`
	ShortDescription SARIFMultiformatText `json:"shortDescription,omitempty"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
	Properties       map[string]any       `json:"properties,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation  `json:"physicalLocation"`
	LogicalLocations []SARIFLogicalLocation `json:"logicalLocations,omitempty"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFLogicalLocation names the function or class a result belongs to.
type SARIFLogicalLocation struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region. Columns are 1-based.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFReporter formats results as SARIF.
type SARIFReporter struct {
	opts Options
	out  io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		out:  opts.Writer,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.out)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	return len(output.Runs[0].Results), nil
}

func (r *SARIFReporter) buildOutput(result *runner.Result) *SARIFOutput {
	version := r.opts.ToolVersion
	if version == "" {
		version = sarifDevVersion
	}
	registry := r.opts.Registry
	if registry == nil {
		registry = lint.DefaultRegistry
	}

	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:           sarifToolName,
				Version:        version,
				InformationURI: sarifInformationURI,
				Rules:          make([]SARIFRule, 0),
			},
		},
		AutomationDetails: SARIFAutomationDetails{GUID: uuid.NewString()},
		Results:           make([]SARIFResult, 0),
	}
	invocation := SARIFInvocation{ExecutionSuccessful: true}

	if result != nil {
		// Rule index by ID, in order of first appearance.
		ruleIndex := make(map[string]int)

		for _, file := range result.Files {
			uri := r.artifactURI(file.Path)

			if file.Error != nil {
				invocation.ExecutionSuccessful = false
				invocation.ToolExecutionNotifications = append(invocation.ToolExecutionNotifications, SARIFNotification{
					Level:   "error",
					Message: SARIFMessage{Text: file.Error.Error()},
					Locations: []SARIFLocation{{
						PhysicalLocation: SARIFPhysicalLocation{ArtifactLocation: SARIFArtifactLocation{URI: uri}},
					}},
				})
				continue
			}
			if file.Result == nil || file.Result.FileResult == nil {
				continue
			}

			for _, diag := range file.Result.Diagnostics {
				index, seen := ruleIndex[diag.RuleID]
				if !seen {
					index = len(run.Tool.Driver.Rules)
					ruleIndex[diag.RuleID] = index
					run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule(registry, &diag))
				}

				run.Results = append(run.Results, SARIFResult{
					RuleID:    diag.RuleID,
					RuleIndex: index,
					Level:     severityToSARIFLevel(diag.Severity),
					Message:   SARIFMessage{Text: diag.Message},
					Locations: []SARIFLocation{sarifLocation(uri, diag.Line, diag.Column, diag.Declaration)},
				})
			}

			for _, declErr := range file.Result.Errors {
				invocation.ToolExecutionNotifications = append(invocation.ToolExecutionNotifications, SARIFNotification{
					Level:     "warning",
					Message:   SARIFMessage{Text: declErr.Error()},
					Locations: []SARIFLocation{sarifLocation(uri, declErr.Line, 0, declErr.Declaration)},
				})
			}
		}
	}

	run.Invocations = []SARIFInvocation{invocation}

	return &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs:    []SARIFRun{run},
	}
}

// artifactURI returns the slash-separated display path of a file.
func (r *SARIFReporter) artifactURI(path string) string {
	return filepath.ToSlash(r.opts.displayPath(path))
}

func sarifLocation(uri string, line, column int, declaration string) SARIFLocation {
	loc := SARIFLocation{
		PhysicalLocation: SARIFPhysicalLocation{
			ArtifactLocation: SARIFArtifactLocation{URI: uri},
			Region: &SARIFRegion{
				StartLine:   line,
				StartColumn: column + 1,
			},
		},
	}
	if declaration != "" {
		loc.LogicalLocations = []SARIFLogicalLocation{{
			FullyQualifiedName: declaration,
			Kind:               "function",
		}}
	}
	return loc
}

// sarifRule describes a rule from registry metadata, falling back to the
// diagnostic when the rule is not registered.
func sarifRule(registry *lint.Registry, diag *lint.Diagnostic) SARIFRule {
	rule := SARIFRule{
		ID:               diag.RuleID,
		Name:             diag.RuleName,
		ShortDescription: SARIFMultiformatText{Text: diag.Message},
		DefaultConfig:    &SARIFRuleConfig{Level: severityToSARIFLevel(diag.Severity)},
	}

	if registered, ok := registry.GetByID(diag.RuleID); ok {
		rule.Name = registered.Name()
		rule.ShortDescription.Text = registered.Description()
		rule.DefaultConfig.Level = severityToSARIFLevel(registered.DefaultSeverity())
		if tags := registered.Tags(); len(tags) > 0 {
			rule.Properties = map[string]any{"tags": tags}
		}
	}

	return rule
}

// severityToSARIFLevel converts a napcheck severity to a SARIF level.
func severityToSARIFLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	case config.SeverityWarning:
		return "warning"
	case config.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
