// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Project is a systematic literature review project as stored by the backend.
type Project struct {
	// ID is the backend-assigned project identifier.
	ID string `json:"project_id" yaml:"project_id"`

	// Name is the human-readable project name.
	Name string `json:"name" yaml:"name"`

	// Objective is the research objective, empty until generated.
	Objective string `json:"objective,omitempty" yaml:"objective,omitempty"`

	// Questions are the confirmed research questions, empty until confirmed.
	// The backend stores the confirmed list under "questions".
	Questions []Question `json:"questions,omitempty" yaml:"questions,omitempty"`

	// CreatedAt is the backend creation timestamp, verbatim.
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Question is a research question together with its stated purpose.
type Question struct {
	Question string `json:"question" yaml:"question"`
	Purpose  string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}
