// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/internal/report"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// Phase 3 step indexes.
const (
	Phase3StepReport = iota
	Phase3StepQuery
)

// Phase3Steps is the step sequence of the reporting phase.
var Phase3Steps = []Step{
	{Name: "Report"},
	{Name: "Interactive Query"},
}

// Phase3Backend is the slice of the backend API the reporting phase needs.
type Phase3Backend interface {
	GenerateReport(ctx context.Context, projectID string, questions []types.Question) (*api.ReportResult, error)
	RefineReport(ctx context.Context, existingReport, refinementPrompt string) (string, error)
	DeepResearch(ctx context.Context, req api.DeepResearchRequest) (*api.ReportResult, error)
}

// Phase3 drives the reporting phase. The stored report always has sources
// appended and citations wired; both transforms are idempotent so re-saving
// never duplicates them.
type Phase3 struct {
	ProjectID string
	State     *types.Phase3State
	Backend   Phase3Backend
}

// Generate runs the batch report generation. Once a report exists the call
// is a no-op returning the stored report; use Refine to change it.
func (p *Phase3) Generate(ctx context.Context, questions []types.Question) (string, []types.Source, error) {
	if p.State.ReportGenerated {
		return p.State.Report, nil, nil
	}

	result, err := p.Backend.GenerateReport(ctx, p.ProjectID, questions)
	if err != nil {
		return "", nil, fmt.Errorf("generating report: %w", err)
	}

	p.setReport(result.Report, result.Sources)
	return p.State.Report, result.Sources, nil
}

// DeepResearch runs the long-form research pipeline as an alternative to
// Generate, feeding it the full phase 1 context.
func (p *Phase3) DeepResearch(ctx context.Context, req api.DeepResearchRequest) (string, []types.Source, error) {
	result, err := p.Backend.DeepResearch(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("deep research: %w", err)
	}

	p.setReport(result.Report, result.Sources)
	return p.State.Report, result.Sources, nil
}

// Refine re-submits the report with a free-text instruction and replaces it
// in place. ReportGenerated stays set.
func (p *Phase3) Refine(ctx context.Context, prompt string, sources []types.Source) error {
	if !p.State.ReportGenerated {
		return fmt.Errorf("%w: generate a report first", ErrValidation)
	}

	refined, err := p.Backend.RefineReport(ctx, p.State.Report, prompt)
	if err != nil {
		return fmt.Errorf("refining report: %w", err)
	}

	p.setReport(refined, sources)
	return nil
}

// EnterQuery advances to the interactive query step.
func (p *Phase3) EnterQuery() error {
	if !p.State.ReportGenerated {
		return fmt.Errorf("%w: generate a report first", ErrValidation)
	}
	p.State.CurrentStep = Phase3StepQuery
	return nil
}

func (p *Phase3) setReport(body string, sources []types.Source) {
	assembled := report.AppendSources(body, sources)
	p.State.Report = report.WireCitations(assembled)
	p.State.ReportGenerated = true
	p.State.CurrentStep = Phase3StepReport
}
