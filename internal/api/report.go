// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// ReportResult is a generated report with its bibliography.
type ReportResult struct {
	Report  string         `json:"report"`
	Sources []types.Source `json:"sources,omitempty"`
}

// GenerateReport runs the batch report generation for a project.
func (c *Client) GenerateReport(ctx context.Context, projectID string, questions []types.Question) (*ReportResult, error) {
	body := map[string]any{
		"project_id":         projectID,
		"research_questions": questionTexts(questions),
	}
	var resp ReportResult
	if err := c.postJSON(ctx, "generate_report", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefineReport re-submits an existing report with a free-text refinement
// instruction and returns the replacement text.
func (c *Client) RefineReport(ctx context.Context, existingReport, refinementPrompt string) (string, error) {
	body := map[string]string{
		"existing_report":   existingReport,
		"refinement_prompt": refinementPrompt,
	}
	var resp struct {
		Report string `json:"report"`
	}
	if err := c.postJSON(ctx, "refine_report", body, &resp); err != nil {
		return "", err
	}
	return resp.Report, nil
}

// RAGChat answers a free-text query against the project's uploaded papers.
func (c *Client) RAGChat(ctx context.Context, projectID, query string) (string, error) {
	body := map[string]string{
		"project_id": projectID,
		"query":      query,
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.postJSON(ctx, "rag_chat", body, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// DeepResearchRequest carries the full phase 1 context for the deep research
// pipeline.
type DeepResearchRequest struct {
	ProjectID    string           `json:"project_id"`
	Objective    string           `json:"objective"`
	Questions    []types.Question `json:"research_questions"`
	SearchString string           `json:"search_string"`
	Criteria     []string         `json:"criteria,omitempty"`
}

// DeepResearch runs the long-form research pipeline and returns a report
// with sources.
func (c *Client) DeepResearch(ctx context.Context, req DeepResearchRequest) (*ReportResult, error) {
	var resp ReportResult
	if err := c.postJSON(ctx, "deep_research", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
