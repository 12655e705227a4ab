// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

func TestCriteriaFileRoundTrip(t *testing.T) {
	state := types.DefaultPhase1State()
	state.YearRange = types.YearRange{Start: 2015, End: 2024}
	state.DataSources = []string{"IEEE", "ACM"}
	state.IsPeerReviewed = false
	state.SortBy = "citations"
	state.Limit = 50

	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, WriteCriteriaFile(path, &state))

	cf, err := ReadCriteriaFile(path)
	require.NoError(t, err)

	restored := types.DefaultPhase1State()
	cf.Apply(&restored)

	assert.Equal(t, state.YearRange, restored.YearRange)
	assert.Equal(t, state.DataSources, restored.DataSources)
	assert.Equal(t, state.IsPeerReviewed, restored.IsPeerReviewed)
	assert.Equal(t, state.IsEnglish, restored.IsEnglish)
	assert.Equal(t, state.SortBy, restored.SortBy)
	assert.Equal(t, state.Limit, restored.Limit)
}

func TestCriteriaFileApplyKeepsUnsetFields(t *testing.T) {
	cf := &CriteriaFile{
		StartYear:      2020,
		IsPeerReviewed: true,
		IsEnglish:      true,
	}

	state := types.DefaultPhase1State()
	cf.Apply(&state)

	assert.Equal(t, 2020, state.YearRange.Start)
	assert.Equal(t, 2023, state.YearRange.End)
	assert.Equal(t, []string{"IEEE", "Elsevier"}, state.DataSources)
	assert.Equal(t, "relevance", state.SortBy)
	assert.Equal(t, 100, state.Limit)
}

func TestReadCriteriaFileErrors(t *testing.T) {
	_, err := ReadCriteriaFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
