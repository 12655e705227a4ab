// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// phase1Mock implements Phase1Backend with canned responses and call
// counters.
type phase1Mock struct {
	objective    string
	questions    []types.Question
	searchString string
	groups       [][]types.RetrievedPaper

	searchCalls  int
	confirmCalls int
	lastSearch   api.SearchRequest
}

func (m *phase1Mock) GenerateObjective(_ context.Context, prompt, model string) (string, error) {
	return m.objective, nil
}

func (m *phase1Mock) GenerateQuestions(_ context.Context, objective, model string) ([]types.Question, error) {
	return m.questions, nil
}

func (m *phase1Mock) ConfirmQuestions(_ context.Context, projectID, objective string, questions []types.Question) error {
	m.confirmCalls++
	return nil
}

func (m *phase1Mock) GenerateSearchString(_ context.Context, projectID, objective string, questions []types.Question, model, strategy string) (string, error) {
	return m.searchString, nil
}

func (m *phase1Mock) SearchPapers(_ context.Context, req api.SearchRequest) ([][]types.RetrievedPaper, error) {
	m.searchCalls++
	m.lastSearch = req
	return m.groups, nil
}

func newPhase1(backend Phase1Backend) (*Phase1, *types.Phase1State) {
	state := types.DefaultPhase1State()
	return &Phase1{ProjectID: "p1", State: &state, Backend: backend}, &state
}

func TestGenerateObjectiveStripsPrefix(t *testing.T) {
	mock := &phase1Mock{objective: "Research Objective:\n  To assess LLM screening.  "}
	p, state := newPhase1(mock)

	require.NoError(t, p.GenerateObjective(context.Background(), "LLM screening"))
	assert.Equal(t, "To assess LLM screening.", state.Objective)
	assert.Equal(t, Phase1StepQuestions, state.CurrentStep)
}

func TestGenerateObjectiveWithoutPrefix(t *testing.T) {
	mock := &phase1Mock{objective: "To assess LLM screening."}
	p, state := newPhase1(mock)

	require.NoError(t, p.GenerateObjective(context.Background(), "LLM screening"))
	assert.Equal(t, "To assess LLM screening.", state.Objective)
}

func TestGenerateObjectiveRequiresPrompt(t *testing.T) {
	p, _ := newPhase1(&phase1Mock{})
	err := p.GenerateObjective(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGenerateQuestionsCleansPurposes(t *testing.T) {
	mock := &phase1Mock{questions: []types.Question{
		{Question: "RQ1?", Purpose: "- Purpose: Scope the field."},
		{Question: "RQ2?", Purpose: "  Purpose: Compare approaches."},
		{Question: "RQ3?", Purpose: "Already clean."},
	}}
	p, state := newPhase1(mock)
	state.Objective = "objective"

	require.NoError(t, p.GenerateQuestions(context.Background()))
	assert.Equal(t, "Scope the field.", state.Questions[0].Purpose)
	assert.Equal(t, "Compare approaches.", state.Questions[1].Purpose)
	assert.Equal(t, "Already clean.", state.Questions[2].Purpose)
}

func TestConfirmReplacesDraftWithSelection(t *testing.T) {
	mock := &phase1Mock{}
	p, state := newPhase1(mock)
	state.Objective = "objective"
	state.Questions = []types.Question{
		{Question: "RQ1?"}, {Question: "RQ2?"}, {Question: "RQ3?"},
	}

	require.NoError(t, p.ToggleSelect(2))
	require.NoError(t, p.ToggleSelect(0))
	require.NoError(t, p.Confirm(context.Background()))

	// Confirmed subset in draft order replaces the draft.
	require.Len(t, state.Questions, 2)
	assert.Equal(t, "RQ1?", state.Questions[0].Question)
	assert.Equal(t, "RQ3?", state.Questions[1].Question)
	assert.Equal(t, state.Questions, state.Confirmed)
	assert.True(t, state.LockedConfirmed)
	assert.Empty(t, state.Selected)
	assert.Equal(t, Phase1StepCriteria, state.CurrentStep)
	assert.Equal(t, 1, mock.confirmCalls)
}

func TestConfirmedQuestionsAreFrozen(t *testing.T) {
	mock := &phase1Mock{questions: []types.Question{{Question: "new"}}}
	p, state := newPhase1(mock)
	state.Objective = "objective"
	state.Questions = []types.Question{{Question: "RQ1?"}}
	require.NoError(t, p.ToggleSelect(0))
	require.NoError(t, p.Confirm(context.Background()))

	before := *state

	assert.ErrorIs(t, p.EditQuestion(0, "changed"), ErrLocked)
	assert.ErrorIs(t, p.AddQuestion("extra", ""), ErrLocked)
	assert.ErrorIs(t, p.ToggleSelect(0), ErrLocked)
	assert.ErrorIs(t, p.GenerateQuestions(context.Background()), ErrLocked)

	// Re-confirming is a no-op, not a second backend call.
	require.NoError(t, p.Confirm(context.Background()))
	assert.Equal(t, 1, mock.confirmCalls)
	assert.Equal(t, before, *state)
}

func TestFindPapersRequiresDataSources(t *testing.T) {
	mock := &phase1Mock{}
	p, state := newPhase1(mock)
	state.SearchString = `("LLM" AND "screening")`
	state.DataSources = nil

	_, err := p.FindPapers(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	// Validation failures never reach the network.
	assert.Equal(t, 0, mock.searchCalls)
}

func TestFindPapersRequiresSearchStringAndStartYear(t *testing.T) {
	mock := &phase1Mock{}
	p, state := newPhase1(mock)
	state.SearchString = ""

	_, err := p.FindPapers(context.Background())
	assert.ErrorIs(t, err, ErrValidation)

	state.SearchString = "query"
	state.YearRange.Start = 0
	_, err = p.FindPapers(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, mock.searchCalls)
}

func TestFindPapersSingleYearModeCollapsesRange(t *testing.T) {
	mock := &phase1Mock{}
	p, state := newPhase1(mock)
	state.SearchString = "query"
	state.YearMode = types.YearModeSingle
	state.YearRange = types.YearRange{Start: 2021, End: 2023}

	_, err := p.FindPapers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2021, mock.lastSearch.StartYear)
	assert.Equal(t, 2021, mock.lastSearch.EndYear)
}

func TestFindPapersFlattensGroupsWithSyntheticKeys(t *testing.T) {
	mock := &phase1Mock{groups: [][]types.RetrievedPaper{
		{{Title: "A"}, {Title: "B"}},
		{},
		{{Title: "C"}},
	}}
	p, state := newPhase1(mock)
	state.SearchString = "query"

	papers, err := p.FindPapers(context.Background())
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "source-0-item-0", papers[0].Key)
	assert.Equal(t, "source-0-item-1", papers[1].Key)
	assert.Equal(t, "source-2-item-0", papers[2].Key)
}

func TestApplyCriteriaIsPure(t *testing.T) {
	mock := &phase1Mock{}
	p, state := newPhase1(mock)

	assert.ErrorIs(t, p.ApplyCriteria(), ErrValidation)

	state.SearchString = "query"
	require.NoError(t, p.ApplyCriteria())
	assert.Equal(t, Phase1StepRetrieval, state.CurrentStep)
	assert.Equal(t, 0, mock.searchCalls)
}
