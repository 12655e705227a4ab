// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// phase3Mock implements Phase3Backend with canned responses.
type phase3Mock struct {
	report        string
	sources       []types.Source
	refined       string
	generateCalls int
	refineCalls   int
}

func (m *phase3Mock) GenerateReport(_ context.Context, projectID string, questions []types.Question) (*api.ReportResult, error) {
	m.generateCalls++
	return &api.ReportResult{Report: m.report, Sources: m.sources}, nil
}

func (m *phase3Mock) RefineReport(_ context.Context, existingReport, refinementPrompt string) (string, error) {
	m.refineCalls++
	return m.refined, nil
}

func (m *phase3Mock) DeepResearch(_ context.Context, req api.DeepResearchRequest) (*api.ReportResult, error) {
	return &api.ReportResult{Report: m.report, Sources: m.sources}, nil
}

func newPhase3(backend Phase3Backend) (*Phase3, *types.Phase3State) {
	state := types.DefaultPhase3State()
	return &Phase3{ProjectID: "p1", State: &state, Backend: backend}, &state
}

func TestGenerateAssemblesReport(t *testing.T) {
	mock := &phase3Mock{
		report:  "# Findings\n\nLLM screening works [#1].",
		sources: []types.Source{{Title: "Paper A", Venue: "IEEE Access", Year: "2021"}},
	}
	p, state := newPhase3(mock)

	_, _, err := p.Generate(context.Background(), []types.Question{{Question: "RQ1?"}})
	require.NoError(t, err)
	assert.True(t, state.ReportGenerated)
	assert.Contains(t, state.Report, "## Sources")
	assert.Contains(t, state.Report, "[1](#source-1)")
	assert.Contains(t, state.Report, `<a id="source-1"></a>`)
}

func TestGenerateIsIdempotentOnceGenerated(t *testing.T) {
	mock := &phase3Mock{report: "# Findings"}
	p, state := newPhase3(mock)

	first, _, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)

	second, _, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.generateCalls)
	assert.Equal(t, first, state.Report)
}

func TestRefineReplacesReportInPlace(t *testing.T) {
	mock := &phase3Mock{
		report:  "# Findings\n\nOriginal [#1].",
		refined: "# Findings\n\nRefined [#1].",
	}
	sources := []types.Source{{Title: "Paper A", Year: "2021"}}
	p, state := newPhase3(mock)

	_, _, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, p.Refine(context.Background(), "tighten the prose", sources))
	assert.True(t, state.ReportGenerated, "refinement must not reset generation")
	assert.Contains(t, state.Report, "Refined")
	assert.NotContains(t, strings.Split(state.Report, "## Sources")[0], "Original")
	assert.Equal(t, 1, mock.refineCalls)
}

func TestRefineRequiresReport(t *testing.T) {
	p, _ := newPhase3(&phase3Mock{})
	err := p.Refine(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEnterQueryRequiresReport(t *testing.T) {
	p, state := newPhase3(&phase3Mock{report: "# Findings"})

	assert.ErrorIs(t, p.EnterQuery(), ErrValidation)

	_, _, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, p.EnterQuery())
	assert.Equal(t, Phase3StepQuery, state.CurrentStep)
}
