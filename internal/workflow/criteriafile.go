// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// CriteriaFile is the on-disk representation of the retrieval criteria. The
// researcher can save the criteria of one review and reload them for the
// next instead of re-entering every flag.
type CriteriaFile struct {
	YearMode       types.YearMode `yaml:"year_mode,omitempty"`
	StartYear      int            `yaml:"start_year"`
	EndYear        int            `yaml:"end_year,omitempty"`
	DataSources    []string       `yaml:"data_sources"`
	IsPeerReviewed bool           `yaml:"peer_reviewed"`
	IsEnglish      bool           `yaml:"english"`
	SortBy         string         `yaml:"sort_by,omitempty"`
	Limit          int            `yaml:"limit,omitempty"`
}

// WriteCriteriaFile saves the criteria of state to a YAML file.
func WriteCriteriaFile(path string, state *types.Phase1State) error {
	cf := CriteriaFile{
		YearMode:       state.YearMode,
		StartYear:      state.YearRange.Start,
		EndYear:        state.YearRange.End,
		DataSources:    state.DataSources,
		IsPeerReviewed: state.IsPeerReviewed,
		IsEnglish:      state.IsEnglish,
		SortBy:         state.SortBy,
		Limit:          state.Limit,
	}
	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling criteria file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadCriteriaFile loads a previously saved criteria file from disk.
func ReadCriteriaFile(path string) (*CriteriaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading criteria file: %w", err)
	}
	var cf CriteriaFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing criteria file: %w", err)
	}
	return &cf, nil
}

// Apply copies the file's criteria onto state. Zero-valued optional fields
// keep the state's current values.
func (cf *CriteriaFile) Apply(state *types.Phase1State) {
	if cf.YearMode != "" {
		state.YearMode = cf.YearMode
	}
	if cf.StartYear != 0 {
		state.YearRange.Start = cf.StartYear
	}
	if cf.EndYear != 0 {
		state.YearRange.End = cf.EndYear
	}
	if len(cf.DataSources) > 0 {
		state.DataSources = cf.DataSources
	}
	state.IsPeerReviewed = cf.IsPeerReviewed
	state.IsEnglish = cf.IsEnglish
	if cf.SortBy != "" {
		state.SortBy = cf.SortBy
	}
	if cf.Limit > 0 {
		state.Limit = cf.Limit
	}
}
