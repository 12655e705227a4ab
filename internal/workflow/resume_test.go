// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// projectMock implements ProjectLoader.
type projectMock struct {
	project *types.Project
	err     error
	calls   int
}

func (m *projectMock) GetProject(_ context.Context, projectID string) (*types.Project, error) {
	m.calls++
	return m.project, m.err
}

func openResumeStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(types.StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResumePriorityOrder(t *testing.T) {
	const pid = "p1"

	phase3Done := func(s *store.Store) {
		state := types.DefaultPhase3State()
		state.ReportGenerated = true
		state.Report = "# Findings"
		require.NoError(t, s.Save(store.PhaseKey(pid, 3), state))
	}
	legacyReport := func(s *store.Store) {
		require.NoError(t, s.SaveRaw(store.ReportKey(pid), []byte("# A raw report")))
	}
	papers := func(s *store.Store) {
		require.NoError(t, s.Save(store.RetrievedPapersKey(pid),
			[]types.RetrievedPaper{{Key: "source-0-item-0", Title: "A"}}))
	}

	tests := []struct {
		name    string
		seed    []func(*store.Store)
		project *types.Project
		want    Target
	}{
		{
			name: "generated report wins over everything",
			seed: []func(*store.Store){phase3Done, legacyReport, papers},
			want: Target{Phase: 3, Step: Phase3StepReport},
		},
		{
			name: "legacy report key wins over papers",
			seed: []func(*store.Store){legacyReport, papers},
			want: Target{Phase: 3, Step: Phase3StepReport},
		},
		{
			name: "retrieved papers send to phase 2",
			seed: []func(*store.Store){papers},
			want: Target{Phase: 2, Step: 0},
		},
		{
			name:    "objective and questions resume at criteria",
			project: &types.Project{ID: pid, Objective: "obj", Questions: []types.Question{{Question: "RQ1?"}}},
			want:    Target{Phase: 1, Step: Phase1StepCriteria},
		},
		{
			name:    "objective only resumes at questions",
			project: &types.Project{ID: pid, Objective: "obj"},
			want:    Target{Phase: 1, Step: Phase1StepQuestions},
		},
		{
			name:    "fresh project starts at objective",
			project: &types.Project{ID: pid},
			want:    Target{Phase: 1, Step: Phase1StepObjective},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openResumeStore(t)
			for _, seed := range tt.seed {
				seed(s)
			}
			loader := &projectMock{project: tt.project}

			got := Resume(context.Background(), s, loader, pid)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResumeSkipsBackendWhenLocalStateDecides(t *testing.T) {
	s := openResumeStore(t)
	require.NoError(t, s.Save(store.RetrievedPapersKey("p1"),
		[]types.RetrievedPaper{{Key: "source-0-item-0"}}))

	loader := &projectMock{}
	Resume(context.Background(), s, loader, "p1")
	assert.Equal(t, 0, loader.calls)
}

func TestResumeToleratesCorruptKeys(t *testing.T) {
	const pid = "p1"

	// Every persisted key holds garbage; evaluation must degrade each to
	// "absent" and fall through to the project rule.
	s := openResumeStore(t)
	require.NoError(t, s.SaveRaw(store.PhaseKey(pid, 3), []byte("{corrupt")))
	require.NoError(t, s.SaveRaw(store.RetrievedPapersKey(pid), []byte("not an array")))

	loader := &projectMock{project: &types.Project{ID: pid, Objective: "obj"}}
	got := Resume(context.Background(), s, loader, pid)
	assert.Equal(t, Target{Phase: 1, Step: Phase1StepQuestions}, got)
}

func TestResumeCorruptPhase3ButRawReportPresent(t *testing.T) {
	const pid = "p1"

	// The phase 3 snapshot is damaged but the standalone report key holds a
	// bare string: the legacy rule still routes to phase 3.
	s := openResumeStore(t)
	require.NoError(t, s.SaveRaw(store.PhaseKey(pid, 3), []byte("{corrupt")))
	require.NoError(t, s.SaveRaw(store.ReportKey(pid), []byte("# A raw report, not JSON")))

	got := Resume(context.Background(), s, nil, pid)
	assert.Equal(t, Target{Phase: 3, Step: Phase3StepReport}, got)
}

func TestResumeBackendErrorFallsBackToObjective(t *testing.T) {
	s := openResumeStore(t)
	loader := &projectMock{err: fmt.Errorf("backend down")}

	got := Resume(context.Background(), s, loader, "p1")
	assert.Equal(t, Target{Phase: 1, Step: Phase1StepObjective}, got)
}

func TestRestartClearsEverything(t *testing.T) {
	const pid = "p1"

	s := openResumeStore(t)
	for _, key := range store.ProjectKeys(pid) {
		require.NoError(t, s.SaveRaw(key, []byte(`{}`)))
	}

	target, err := Restart(s, pid)
	require.NoError(t, err)
	assert.Equal(t, Target{Phase: 1, Step: Phase1StepObjective}, target)

	for _, key := range store.ProjectKeys(pid) {
		_, ok := s.LoadRaw(key)
		assert.False(t, ok, "key %s should be cleared", key)
	}
}
