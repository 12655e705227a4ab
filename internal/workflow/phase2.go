// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// Phase 2 nominal step indexes. The selection step is omitted when the
// project has no retrieved papers; use Steps to get the visible sequence.
const (
	Phase2StepSelection = iota
	Phase2StepUpload
	Phase2StepExtractionConfig
	Phase2StepExtractionResult
)

// Phase2Steps is the nominal step sequence of the paper management phase.
var Phase2Steps = []Step{
	{Name: "Paper Selection"},
	{Name: "Upload Papers"},
	{Name: "Extraction Setup"},
	{Name: "Extraction Results"},
}

// Phase2Backend is the slice of the backend API the paper management phase
// needs.
type Phase2Backend interface {
	UploadPDF(ctx context.Context, projectID, pdfPath string, meta api.UploadMetadata) error
	ListUploadedPDFs(ctx context.Context, projectID string) ([]string, error)
	DeletePDF(ctx context.Context, projectID, fileName string) error
	ExtractData(ctx context.Context, projectID string) ([]types.ExtractionRow, error)
}

// Phase2 drives the paper management phase: selection, upload, extraction.
type Phase2 struct {
	ProjectID string
	State     *types.Phase2State
	Papers    []types.RetrievedPaper
	Backend   Phase2Backend
	Out       io.Writer
}

// Steps returns the visible step sequence and the nominal-to-visible index
// map. With no retrieved papers the selection step is omitted and the
// remaining steps re-index from zero.
func (p *Phase2) Steps() ([]Step, []int) {
	return VisibleSteps(Phase2Steps, func(s Step) bool {
		return s.Name == Phase2Steps[Phase2StepSelection].Name && len(p.Papers) == 0
	})
}

// ToggleSelect flips whether the paper at index i is chosen for full-text
// review.
func (p *Phase2) ToggleSelect(i int) error {
	if i < 0 || i >= len(p.Papers) {
		return fmt.Errorf("%w: paper index %d out of range", ErrValidation, i)
	}

	id := p.Papers[i].ID(i)
	for pos, sel := range p.State.SelectedPaperIDs {
		if sel == id {
			p.State.SelectedPaperIDs = append(p.State.SelectedPaperIDs[:pos], p.State.SelectedPaperIDs[pos+1:]...)
			return nil
		}
	}
	p.State.SelectedPaperIDs = append(p.State.SelectedPaperIDs, id)
	return nil
}

// Selected reports whether the paper at index i is chosen.
func (p *Phase2) Selected(i int) bool {
	if i < 0 || i >= len(p.Papers) {
		return false
	}
	id := p.Papers[i].ID(i)
	for _, sel := range p.State.SelectedPaperIDs {
		if sel == id {
			return true
		}
	}
	return false
}

// BeginUpload advances from selection to upload. When the selection step is
// visible at least one paper must be chosen.
func (p *Phase2) BeginUpload() error {
	if len(p.Papers) > 0 && len(p.State.SelectedPaperIDs) == 0 {
		return fmt.Errorf("%w: select at least one paper", ErrValidation)
	}
	_, indexMap := p.Steps()
	p.State.CurrentStep = indexMap[Phase2StepUpload]
	return nil
}

// MatchPaper pairs a PDF file with a retrieved paper by checking whether
// the file name contains the first ten characters of a paper title.
// Best-effort; falls back to the first retrieved paper, then to the file
// name alone.
func (p *Phase2) MatchPaper(fileName string) (types.RetrievedPaper, bool) {
	for _, paper := range p.Papers {
		title := paper.Title
		if len(title) > 10 {
			title = title[:10]
		}
		if title != "" && strings.Contains(fileName, title) {
			return paper, true
		}
	}
	if len(p.Papers) > 0 {
		return p.Papers[0], false
	}
	return types.RetrievedPaper{}, false
}

// UploadSummary holds counts from an upload batch.
type UploadSummary struct {
	Uploaded int
	Failed   int
}

// Upload sends each PDF to the backend. Files are independent: a failure is
// recorded against that file and the batch continues. Re-uploading a file
// that previously failed replaces its record.
func (p *Phase2) Upload(ctx context.Context, pdfPaths []string) (UploadSummary, error) {
	var summary UploadSummary

	out := p.Out
	if out == nil {
		out = io.Discard
	}

	for _, path := range pdfPaths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)
		entry := p.fileEntry(name)
		entry.Status = types.UploadPending
		entry.Error = ""

		meta := api.UploadMetadata{Title: name}
		if paper, ok := p.MatchPaper(name); ok || paper.Title != "" {
			meta = api.UploadMetadata{
				Title:   paper.Title,
				Creator: strings.Join(paper.Authors, "; "),
				Year:    api.YearString(paper.Year),
				DOI:     paper.DOI,
				Link:    paper.URL,
			}
			entry.PaperKey = paper.Key
		}
		if meta.Title == "" {
			meta.Title = "Unknown"
		}
		if meta.Creator == "" {
			meta.Creator = "Unknown"
		}
		if meta.Year == "" {
			meta.Year = "N/A"
		}
		if meta.DOI == "" {
			meta.DOI = "N/A"
		}

		if err := p.Backend.UploadPDF(ctx, p.ProjectID, path, meta); err != nil {
			entry.Status = types.UploadFailed
			entry.Error = err.Error()
			summary.Failed++
			fmt.Fprintf(out, "failed   %s: %v\n", name, err)
			continue
		}

		entry.Status = types.UploadDone
		summary.Uploaded++
		fmt.Fprintf(out, "uploaded %s\n", name)
	}

	return summary, nil
}

// fileEntry returns the tracking record for name, creating it if needed.
func (p *Phase2) fileEntry(name string) *types.UploadedFile {
	for i := range p.State.Files {
		if p.State.Files[i].Name == name {
			return &p.State.Files[i]
		}
	}
	p.State.Files = append(p.State.Files, types.UploadedFile{Name: name})
	return &p.State.Files[len(p.State.Files)-1]
}

// SyncUploaded re-seeds file statuses from the backend's list of uploaded
// PDFs. Files known to the backend but absent locally are added as
// uploaded.
func (p *Phase2) SyncUploaded(ctx context.Context) error {
	names, err := p.Backend.ListUploadedPDFs(ctx, p.ProjectID)
	if err != nil {
		return fmt.Errorf("listing uploaded PDFs: %w", err)
	}
	for _, name := range names {
		entry := p.fileEntry(name)
		entry.Status = types.UploadDone
		entry.Error = ""
	}
	return nil
}

// DeletePDF removes one uploaded file from the backend and from the local
// tracking list.
func (p *Phase2) DeletePDF(ctx context.Context, name string) error {
	if err := p.Backend.DeletePDF(ctx, p.ProjectID, name); err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	for i := range p.State.Files {
		if p.State.Files[i].Name == name {
			p.State.Files = append(p.State.Files[:i], p.State.Files[i+1:]...)
			break
		}
	}
	return nil
}

// UploadedCount returns how many files have been uploaded successfully.
func (p *Phase2) UploadedCount() int {
	n := 0
	for _, f := range p.State.Files {
		if f.Status == types.UploadDone {
			n++
		}
	}
	return n
}

// CanConfigureExtraction reports whether the extraction setup step is
// reachable: at least one PDF must be uploaded.
func (p *Phase2) CanConfigureExtraction() bool {
	return p.UploadedCount() > 0
}

// ConfigureFields replaces the extraction schema and advances to the
// extraction setup step.
func (p *Phase2) ConfigureFields(fields []types.ExtractionField) error {
	if !p.CanConfigureExtraction() {
		return fmt.Errorf("%w: upload at least one PDF first", ErrValidation)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: at least one extraction field is required", ErrValidation)
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: extraction field names are required", ErrValidation)
		}
	}
	p.State.Fields = fields
	_, indexMap := p.Steps()
	p.State.CurrentStep = indexMap[Phase2StepExtractionConfig]
	return nil
}

// Extract runs the batch extraction for the project. One call covers all
// uploaded PDFs.
func (p *Phase2) Extract(ctx context.Context) ([]types.ExtractionRow, error) {
	if !p.CanConfigureExtraction() {
		return nil, fmt.Errorf("%w: upload at least one PDF first", ErrValidation)
	}

	rows, err := p.Backend.ExtractData(ctx, p.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("extracting data: %w", err)
	}

	p.State.Rows = rows
	p.State.Extracted = true
	_, indexMap := p.Steps()
	p.State.CurrentStep = indexMap[Phase2StepExtractionResult]
	return rows, nil
}
