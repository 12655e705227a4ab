// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// YearRange bounds the publication years for paper retrieval.
type YearRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// YearMode selects how the year range is interpreted.
type YearMode string

const (
	// YearModeRange searches from Start to End inclusive.
	YearModeRange YearMode = "range"
	// YearModeSingle searches a single year; End is ignored and Start is
	// sent as both bounds.
	YearModeSingle YearMode = "single"
)

// Phase1State is the persisted snapshot of the research setup phase.
// JSON field names are the on-disk format and must not change.
type Phase1State struct {
	// CurrentStep is the active step: 0 objective, 1 questions, 2 criteria,
	// 3 retrieval.
	CurrentStep int `json:"currentStep"`

	// Prompt is the user's research topic prompt.
	Prompt string `json:"prompt,omitempty"`

	// Objective is the generated research objective, prefix-stripped and
	// trimmed.
	Objective string `json:"objective,omitempty"`

	// Questions are the draft research questions with purposes. After
	// confirmation this holds only the confirmed subset.
	Questions []Question `json:"questionsWithPurposes,omitempty"`

	// Selected indexes into Questions marking which are chosen for
	// confirmation. Cleared on confirmation.
	Selected []int `json:"selectedQuestions,omitempty"`

	// LockedConfirmed is set once questions are confirmed. One-way: no
	// operation clears it.
	LockedConfirmed bool `json:"lockedConfirmed,omitempty"`

	// Confirmed are the questions accepted by the backend.
	Confirmed []Question `json:"confirmedQuestions,omitempty"`

	// SearchString is the generated or hand-edited boolean search string.
	SearchString string `json:"searchString,omitempty"`

	YearMode       YearMode  `json:"yearMode"`
	YearRange      YearRange `json:"yearRange"`
	DataSources    []string  `json:"dataSources"`
	IsPeerReviewed bool      `json:"isPeerReviewed"`
	IsEnglish      bool      `json:"isEnglish"`
	SortBy         string    `json:"sortBy"`
	Limit          int       `json:"limit"`
	SearchStrategy string    `json:"searchStrategy"`

	// Models is the model identifier used for generation calls.
	Models string `json:"models"`
}

// DefaultPhase1State returns a Phase1State primed with the documented
// defaults. Callers pass it to Store.Load so that fields missing from a
// persisted snapshot keep their defaults individually.
func DefaultPhase1State() Phase1State {
	return Phase1State{
		CurrentStep:    0,
		YearMode:       YearModeRange,
		YearRange:      YearRange{Start: 2018, End: 2023},
		DataSources:    []string{"IEEE", "Elsevier"},
		IsPeerReviewed: true,
		IsEnglish:      true,
		SortBy:         "relevance",
		Limit:          100,
		SearchStrategy: "default",
		Models:         "gpt-4o",
	}
}

// Phase2State is the persisted snapshot of the paper management phase.
type Phase2State struct {
	// CurrentStep indexes into the visible step sequence: selection (when
	// papers exist), upload, extraction setup, extraction result.
	CurrentStep int `json:"currentStep"`

	// SelectedPaperIDs are the identifiers of papers chosen for full-text
	// review. Mirrored under the selectedPapers key.
	SelectedPaperIDs []string `json:"selectedPaperIds,omitempty"`

	// Files tracks per-file upload state. Failures are independent.
	Files []UploadedFile `json:"files,omitempty"`

	// Fields is the extraction schema.
	Fields []ExtractionField `json:"fields"`

	// Rows holds the batch extraction results.
	Rows []ExtractionRow `json:"rows,omitempty"`

	// Extracted is set once a batch extraction has completed.
	Extracted bool `json:"extracted,omitempty"`
}

// DefaultPhase2State returns a Phase2State with the default extraction schema.
func DefaultPhase2State() Phase2State {
	return Phase2State{
		Fields: DefaultExtractionFields(),
	}
}

// Phase3State is the persisted snapshot of the reporting phase.
type Phase3State struct {
	// CurrentStep is the active step: 0 report, 1 interactive query.
	CurrentStep int `json:"currentStep"`

	// ReportGenerated is set once a report exists. Refinement replaces the
	// report without clearing it.
	ReportGenerated bool `json:"reportGenerated,omitempty"`

	// Report is the report markdown, sources appended and citations wired.
	Report string `json:"report,omitempty"`

	// Messages is the interactive query transcript.
	Messages []ChatMessage `json:"messages,omitempty"`
}

// DefaultPhase3State returns an empty Phase3State.
func DefaultPhase3State() Phase3State {
	return Phase3State{}
}
