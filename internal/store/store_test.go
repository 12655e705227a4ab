// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	state := types.DefaultPhase1State()
	state.Objective = "Assess LLM-based screening for systematic reviews"
	state.CurrentStep = 2
	require.NoError(t, s.Save(PhaseKey("p1", 1), state))

	loaded := types.DefaultPhase1State()
	ok := s.Load(PhaseKey("p1", 1), &loaded)
	require.True(t, ok)
	assert.Equal(t, state.Objective, loaded.Objective)
	assert.Equal(t, 2, loaded.CurrentStep)
}

func TestLoadMissingKeyKeepsDefaults(t *testing.T) {
	s := openTestStore(t)

	state := types.DefaultPhase1State()
	ok := s.Load(PhaseKey("nope", 1), &state)
	assert.False(t, ok)
	assert.Equal(t, types.YearRange{Start: 2018, End: 2023}, state.YearRange)
	assert.Equal(t, []string{"IEEE", "Elsevier"}, state.DataSources)
	assert.True(t, state.IsPeerReviewed)
	assert.Equal(t, 100, state.Limit)
	assert.Equal(t, "gpt-4o", state.Models)
}

func TestLoadMalformedValueReportsFalse(t *testing.T) {
	s := openTestStore(t)

	key := PhaseKey("p1", 3)
	require.NoError(t, s.SaveRaw(key, []byte("{not json")))

	state := types.DefaultPhase3State()
	ok := s.Load(key, &state)
	assert.False(t, ok)
	assert.False(t, state.ReportGenerated)
}

func TestLoadPartialSnapshotDefaultsPerField(t *testing.T) {
	s := openTestStore(t)

	// A snapshot written by an older version that knew nothing about
	// search criteria fields.
	key := PhaseKey("p1", 1)
	require.NoError(t, s.SaveRaw(key, []byte(`{"currentStep":1,"objective":"Old objective"}`)))

	state := types.DefaultPhase1State()
	ok := s.Load(key, &state)
	require.True(t, ok)
	assert.Equal(t, 1, state.CurrentStep)
	assert.Equal(t, "Old objective", state.Objective)
	// Absent fields keep their primed defaults rather than zeroing.
	assert.Equal(t, []string{"IEEE", "Elsevier"}, state.DataSources)
	assert.Equal(t, "relevance", state.SortBy)
}

func TestLoadRawBareString(t *testing.T) {
	s := openTestStore(t)

	key := ReportKey("p1")
	require.NoError(t, s.SaveRaw(key, []byte("# A raw report, not JSON")))

	raw, ok := s.LoadRaw(key)
	require.True(t, ok)
	assert.Equal(t, "# A raw report, not JSON", string(raw))
}

func TestSaveIsLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	key := PhaseKey("p1", 2)
	first := types.DefaultPhase2State()
	first.SelectedPaperIDs = []string{"10.1/a", "10.1/b"}
	require.NoError(t, s.Save(key, first))

	second := types.DefaultPhase2State()
	second.SelectedPaperIDs = []string{"10.1/c"}
	require.NoError(t, s.Save(key, second))

	loaded := types.DefaultPhase2State()
	require.True(t, s.Load(key, &loaded))
	assert.Equal(t, []string{"10.1/c"}, loaded.SelectedPaperIDs)
}

func TestDeleteRemovesKeys(t *testing.T) {
	s := openTestStore(t)

	for _, key := range ProjectKeys("p1") {
		require.NoError(t, s.SaveRaw(key, []byte(`{}`)))
	}
	require.NoError(t, s.Delete(ProjectKeys("p1")...))

	for _, key := range ProjectKeys("p1") {
		_, ok := s.LoadRaw(key)
		assert.False(t, ok, "key %s should be gone", key)
	}
}

func TestDeleteMissingKeyIsNotAnError(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Delete("project_ghost_phase1"))
}
