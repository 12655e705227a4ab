// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// GetProject fetches one project by id.
func (c *Client) GetProject(ctx context.Context, projectID string) (*types.Project, error) {
	var resp struct {
		Project types.Project `json:"project"`
	}
	if err := c.getJSON(ctx, "get_project/"+url.PathEscape(projectID), &resp); err != nil {
		return nil, err
	}
	if resp.Project.ID == "" {
		resp.Project.ID = projectID
	}
	return &resp.Project, nil
}

// ListProjects fetches all projects.
func (c *Client) ListProjects(ctx context.Context) ([]types.Project, error) {
	var resp struct {
		Projects []types.Project `json:"projects"`
	}
	if err := c.getJSON(ctx, "get_projects", &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// CreateProject creates a project with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	var resp struct {
		Project types.Project `json:"project"`
	}
	body := map[string]string{"name": name}
	if err := c.postJSON(ctx, "create_project", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Project, nil
}

// DeleteProject removes a project and its backend-side files.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.delete(ctx, "delete_project/"+url.PathEscape(projectID))
}
