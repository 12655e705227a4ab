// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// GenerateObjective asks the backend to draft a research objective for the
// given topic prompt. The returned text is verbatim; callers strip the
// "Research Objective:" preamble.
func (c *Client) GenerateObjective(ctx context.Context, prompt, model string) (string, error) {
	body := map[string]string{
		"prompt": prompt,
		"model":  model,
	}
	var resp struct {
		ResearchObjective string `json:"research_objective"`
	}
	if err := c.postJSON(ctx, "generate_objective", body, &resp); err != nil {
		return "", err
	}
	return resp.ResearchObjective, nil
}

// GenerateQuestions asks the backend to derive research questions with
// purposes from an objective.
func (c *Client) GenerateQuestions(ctx context.Context, objective, model string) ([]types.Question, error) {
	body := map[string]string{
		"objective": objective,
		"model":     model,
	}
	// The backend nests the question list one level deep.
	var resp struct {
		ResearchQuestions struct {
			ResearchQuestions []types.Question `json:"research_questions"`
		} `json:"research_questions"`
	}
	if err := c.postJSON(ctx, "generate_research_questions_and_purpose", body, &resp); err != nil {
		return nil, err
	}
	return resp.ResearchQuestions.ResearchQuestions, nil
}

// ConfirmQuestions records the selected questions against the project.
func (c *Client) ConfirmQuestions(ctx context.Context, projectID, objective string, questions []types.Question) error {
	body := map[string]any{
		"project_id": projectID,
		"objective":  objective,
		"questions":  questions,
	}
	return c.postJSON(ctx, "confirm_questions", body, nil)
}

// questionTexts strips questions down to their text, the shape the
// generation endpoints expect.
func questionTexts(questions []types.Question) []string {
	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Question
	}
	return texts
}

// GenerateSearchString asks the backend for a boolean search string built
// from the objective and confirmed questions. strategy is "default" or
// "pico".
func (c *Client) GenerateSearchString(ctx context.Context, projectID, objective string, questions []types.Question, model, strategy string) (string, error) {
	body := map[string]any{
		"project_id":         projectID,
		"objective":          objective,
		"research_questions": questionTexts(questions),
		"model":              model,
		"search_strategy":    strategy,
	}
	var resp struct {
		SearchString string `json:"search_string"`
	}
	if err := c.postJSON(ctx, "generate_search_string", body, &resp); err != nil {
		return "", err
	}
	return resp.SearchString, nil
}
