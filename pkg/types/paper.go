// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RetrievedPaper holds metadata for one paper returned by a search backend.
type RetrievedPaper struct {
	// Key is a synthetic identifier assigned when flattening grouped search
	// results ("source-{group}-item-{index}"). Stable across reloads.
	Key string `json:"key" yaml:"key"`

	// DOI is the paper DOI when the backend provided one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// URL links to the paper landing page or PDF.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source identifies which data source returned the paper
	// (e.g. "IEEE", "Elsevier").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ID returns a stable identifier for the paper: DOI when present, the
// synthetic key otherwise, and a positional fallback when both are empty.
func (p RetrievedPaper) ID(index int) string {
	if p.DOI != "" {
		return p.DOI
	}
	if p.Key != "" {
		return p.Key
	}
	return fmt.Sprintf("paper-%d", index)
}

// UploadStatus tracks the state of one PDF upload.
type UploadStatus string

const (
	UploadPending UploadStatus = "pending"
	UploadDone    UploadStatus = "uploaded"
	UploadFailed  UploadStatus = "error"
)

// UploadedFile records one PDF staged for or sent to the backend.
type UploadedFile struct {
	// Name is the local file name.
	Name string `json:"name" yaml:"name"`

	// Status is the upload state: pending, uploaded, or error.
	Status UploadStatus `json:"status" yaml:"status"`

	// PaperKey is the identifier of the matched retrieved paper, if any.
	PaperKey string `json:"paper_key,omitempty" yaml:"paper_key,omitempty"`

	// Error holds the failure message when Status is error.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FieldType describes the value type of an extraction field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldList    FieldType = "list"
)

// ExtractionField is one column of the extraction schema.
type ExtractionField struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required" yaml:"required"`
}

// ExtractionRow is one extracted record, keyed by field name.
type ExtractionRow map[string]any

// DefaultExtractionFields returns the initial extraction schema.
func DefaultExtractionFields() []ExtractionField {
	return []ExtractionField{
		{Name: "Title", Type: FieldText, Required: true},
		{Name: "Abstract", Type: FieldText, Required: true},
		{Name: "Year", Type: FieldNumber, Required: true},
		{Name: "Publisher", Type: FieldText, Required: false},
		{Name: "Authors", Type: FieldNumber, Required: false},
		{Name: "doi", Type: FieldText, Required: true},
	}
}

// Source is one bibliography entry attached to a generated report.
type Source struct {
	Title string `json:"title" yaml:"title"`
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year  string `json:"year,omitempty" yaml:"year,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}
