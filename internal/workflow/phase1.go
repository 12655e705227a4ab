// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// Phase 1 step indexes.
const (
	Phase1StepObjective = iota
	Phase1StepQuestions
	Phase1StepCriteria
	Phase1StepRetrieval
)

// Phase1Steps is the nominal step sequence of the research setup phase.
var Phase1Steps = []Step{
	{Name: "Research Objective"},
	{Name: "Research Questions"},
	{Name: "Selection Criteria"},
	{Name: "Paper Retrieval"},
}

// objectivePrefix is the preamble some models emit before the objective
// text. Stripped once, then the result is trimmed.
const objectivePrefix = "Research Objective:\n"

// purposePrefix matches the label and list markers some models emit before
// a question's purpose.
var purposePrefix = regexp.MustCompile(`^[-\s]*Purpose:\s*`)

// Phase1Backend is the slice of the backend API the research setup phase
// needs.
type Phase1Backend interface {
	GenerateObjective(ctx context.Context, prompt, model string) (string, error)
	GenerateQuestions(ctx context.Context, objective, model string) ([]types.Question, error)
	ConfirmQuestions(ctx context.Context, projectID, objective string, questions []types.Question) error
	GenerateSearchString(ctx context.Context, projectID, objective string, questions []types.Question, model, strategy string) (string, error)
	SearchPapers(ctx context.Context, req api.SearchRequest) ([][]types.RetrievedPaper, error)
}

// Phase1 drives the research setup phase: objective, questions, criteria,
// retrieval.
type Phase1 struct {
	ProjectID string
	State     *types.Phase1State
	Backend   Phase1Backend
}

// GenerateObjective drafts a research objective from a topic prompt and
// advances to the questions step.
func (p *Phase1) GenerateObjective(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: a topic prompt is required", ErrValidation)
	}

	raw, err := p.Backend.GenerateObjective(ctx, prompt, p.State.Models)
	if err != nil {
		return fmt.Errorf("generating objective: %w", err)
	}

	p.State.Prompt = prompt
	p.State.Objective = strings.TrimSpace(strings.Replace(raw, objectivePrefix, "", 1))
	p.State.CurrentStep = Phase1StepQuestions
	return nil
}

// GenerateQuestions derives research questions from the objective,
// replacing any prior draft and clearing the selection. Rejected once the
// questions are confirmed.
func (p *Phase1) GenerateQuestions(ctx context.Context) error {
	if p.State.LockedConfirmed {
		return ErrLocked
	}
	if p.State.Objective == "" {
		return fmt.Errorf("%w: generate an objective first", ErrValidation)
	}

	questions, err := p.Backend.GenerateQuestions(ctx, p.State.Objective, p.State.Models)
	if err != nil {
		return fmt.Errorf("generating questions: %w", err)
	}

	for i := range questions {
		questions[i].Purpose = purposePrefix.ReplaceAllString(questions[i].Purpose, "")
	}

	p.State.Questions = questions
	p.State.Selected = nil
	p.State.Confirmed = nil
	return nil
}

// ToggleSelect flips whether the question at index i is chosen for
// confirmation.
func (p *Phase1) ToggleSelect(i int) error {
	if p.State.LockedConfirmed {
		return ErrLocked
	}
	if i < 0 || i >= len(p.State.Questions) {
		return fmt.Errorf("%w: question index %d out of range", ErrValidation, i)
	}

	for pos, sel := range p.State.Selected {
		if sel == i {
			p.State.Selected = append(p.State.Selected[:pos], p.State.Selected[pos+1:]...)
			return nil
		}
	}
	p.State.Selected = append(p.State.Selected, i)
	return nil
}

// EditQuestion replaces the text of the question at index i.
func (p *Phase1) EditQuestion(i int, text string) error {
	if p.State.LockedConfirmed {
		return ErrLocked
	}
	if i < 0 || i >= len(p.State.Questions) {
		return fmt.Errorf("%w: question index %d out of range", ErrValidation, i)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: question text is required", ErrValidation)
	}
	p.State.Questions[i].Question = text
	return nil
}

// AddQuestion appends a hand-written question to the draft list.
func (p *Phase1) AddQuestion(text, purpose string) error {
	if p.State.LockedConfirmed {
		return ErrLocked
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: question text is required", ErrValidation)
	}
	p.State.Questions = append(p.State.Questions, types.Question{Question: text, Purpose: purpose})
	return nil
}

// Confirm records the selected questions with the backend and locks the
// question list. The selected subset, in draft order, replaces the draft.
// Confirming again once locked is a no-op.
func (p *Phase1) Confirm(ctx context.Context) error {
	if p.State.LockedConfirmed {
		return nil
	}
	if len(p.State.Selected) == 0 {
		return fmt.Errorf("%w: select at least one question", ErrValidation)
	}

	chosen := make(map[int]bool, len(p.State.Selected))
	for _, i := range p.State.Selected {
		if i >= 0 && i < len(p.State.Questions) {
			chosen[i] = true
		}
	}
	confirmed := make([]types.Question, 0, len(chosen))
	for i, q := range p.State.Questions {
		if chosen[i] {
			confirmed = append(confirmed, q)
		}
	}
	if len(confirmed) == 0 {
		return fmt.Errorf("%w: select at least one question", ErrValidation)
	}

	if err := p.Backend.ConfirmQuestions(ctx, p.ProjectID, p.State.Objective, confirmed); err != nil {
		return fmt.Errorf("confirming questions: %w", err)
	}

	p.State.Questions = confirmed
	p.State.Confirmed = confirmed
	p.State.Selected = nil
	p.State.LockedConfirmed = true
	p.State.CurrentStep = Phase1StepCriteria
	return nil
}

// GenerateSearchString builds a boolean search string from the objective
// and confirmed questions.
func (p *Phase1) GenerateSearchString(ctx context.Context) error {
	if p.State.Objective == "" {
		return fmt.Errorf("%w: generate an objective first", ErrValidation)
	}
	if !p.State.LockedConfirmed || len(p.State.Confirmed) == 0 {
		return fmt.Errorf("%w: confirm research questions first", ErrValidation)
	}

	search, err := p.Backend.GenerateSearchString(ctx, p.ProjectID, p.State.Objective,
		p.State.Confirmed, p.State.Models, p.State.SearchStrategy)
	if err != nil {
		return fmt.Errorf("generating search string: %w", err)
	}

	p.State.SearchString = search
	return nil
}

// SetSearchString replaces the search string with a hand-edited value.
func (p *Phase1) SetSearchString(s string) {
	p.State.SearchString = s
}

// ApplyCriteria advances to the retrieval step. Pure predicate, no network
// call.
func (p *Phase1) ApplyCriteria() error {
	if strings.TrimSpace(p.State.SearchString) == "" {
		return fmt.Errorf("%w: a search string is required", ErrValidation)
	}
	p.State.CurrentStep = Phase1StepRetrieval
	return nil
}

// FindPapers runs the search against the selected data sources and returns
// the flattened results. Validation failures leave the state unchanged and
// make no network call. In single-year mode the start year is sent as both
// bounds.
func (p *Phase1) FindPapers(ctx context.Context) ([]types.RetrievedPaper, error) {
	if strings.TrimSpace(p.State.SearchString) == "" || p.State.YearRange.Start == 0 {
		return nil, fmt.Errorf("%w: a search string and start year are required", ErrValidation)
	}
	if len(p.State.DataSources) == 0 {
		return nil, fmt.Errorf("%w: select at least one data source", ErrValidation)
	}

	startYear := p.State.YearRange.Start
	endYear := p.State.YearRange.End
	if p.State.YearMode == types.YearModeSingle {
		endYear = startYear
	}

	groups, err := p.Backend.SearchPapers(ctx, api.SearchRequest{
		ProjectID:      p.ProjectID,
		SearchStrategy: p.State.SearchStrategy,
		SearchString:   p.State.SearchString,
		StartYear:      startYear,
		EndYear:        endYear,
		Limit:          p.State.Limit,
		IsEnglish:      p.State.IsEnglish,
		IsPeerReviewed: p.State.IsPeerReviewed,
		IsMostCited:    p.State.SortBy == "citations",
		DataSources:    p.State.DataSources,
	})
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}

	return FlattenGroups(groups), nil
}

// FlattenGroups collapses per-source result groups into one list, tagging
// each paper with a synthetic key that is stable across reloads.
func FlattenGroups(groups [][]types.RetrievedPaper) []types.RetrievedPaper {
	var papers []types.RetrievedPaper
	for g, group := range groups {
		for i, paper := range group {
			paper.Key = fmt.Sprintf("source-%d-item-%d", g, i)
			papers = append(papers, paper)
		}
	}
	return papers
}
