// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"

	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// Target names the phase and step an invocation should land on.
type Target struct {
	Phase int
	Step  int
}

// ProjectLoader fetches project metadata from the backend. Only needed by
// the lowest-priority resume rule.
type ProjectLoader interface {
	GetProject(ctx context.Context, projectID string) (*types.Project, error)
}

// resumeState is everything the rules inspect, gathered once. A key whose
// value fails to parse is treated as absent.
type resumeState struct {
	phase3       types.Phase3State
	phase3Loaded bool
	reportRaw    bool
	papers       []types.RetrievedPaper
	project      *types.Project
}

// resumeRule maps a predicate over the persisted state to a target. Rules
// are evaluated in order and the first match wins, so no combination of
// keys can loop or land on two targets.
type resumeRule struct {
	name  string
	match func(rs *resumeState) (Target, bool)
}

var resumeRules = []resumeRule{
	{
		name: "report generated",
		match: func(rs *resumeState) (Target, bool) {
			if rs.phase3Loaded && rs.phase3.ReportGenerated {
				return Target{Phase: 3, Step: rs.phase3.CurrentStep}, true
			}
			return Target{}, false
		},
	},
	{
		name: "legacy report key",
		match: func(rs *resumeState) (Target, bool) {
			// Older versions wrote the report as a bare string under its
			// own key; its mere presence means reporting was reached.
			if rs.reportRaw {
				return Target{Phase: 3, Step: Phase3StepReport}, true
			}
			return Target{}, false
		},
	},
	{
		name: "papers retrieved",
		match: func(rs *resumeState) (Target, bool) {
			if len(rs.papers) > 0 {
				return Target{Phase: 2, Step: 0}, true
			}
			return Target{}, false
		},
	},
	{
		name: "project progress",
		match: func(rs *resumeState) (Target, bool) {
			if rs.project != nil && rs.project.Objective != "" {
				if len(rs.project.Questions) > 0 {
					return Target{Phase: 1, Step: Phase1StepCriteria}, true
				}
				return Target{Phase: 1, Step: Phase1StepQuestions}, true
			}
			return Target{Phase: 1, Step: Phase1StepObjective}, true
		},
	},
}

// Resume computes where a project should pick up, from persisted state
// first and backend project metadata last. Parse failures on any key
// degrade to "absent" so a damaged snapshot can never strand a project.
func Resume(ctx context.Context, s *store.Store, projects ProjectLoader, projectID string) Target {
	rs := &resumeState{
		phase3: types.DefaultPhase3State(),
	}
	rs.phase3Loaded = s.Load(store.PhaseKey(projectID, 3), &rs.phase3)
	_, rs.reportRaw = s.LoadRaw(store.ReportKey(projectID))
	s.Load(store.RetrievedPapersKey(projectID), &rs.papers)

	// The backend fetch is only needed when nothing local matches.
	needProject := !(rs.phase3Loaded && rs.phase3.ReportGenerated) &&
		!rs.reportRaw && len(rs.papers) == 0
	if needProject && projects != nil {
		if project, err := projects.GetProject(ctx, projectID); err == nil {
			rs.project = project
		}
	}

	for _, rule := range resumeRules {
		if target, ok := rule.match(rs); ok {
			return target
		}
	}
	// The last rule always matches; this is unreachable.
	return Target{Phase: 1, Step: Phase1StepObjective}
}

// Restart clears every persisted key for the project and returns the
// starting target.
func Restart(s *store.Store, projectID string) (Target, error) {
	if err := s.Delete(store.ProjectKeys(projectID)...); err != nil {
		return Target{}, err
	}
	return Target{Phase: 1, Step: Phase1StepObjective}, nil
}
