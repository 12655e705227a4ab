// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// SearchRequest is the search_papers request body. Field names follow the
// backend's wire format.
type SearchRequest struct {
	ProjectID      string   `json:"project_id"`
	SearchStrategy string   `json:"search_strategy"`
	SearchString   string   `json:"search_string"`
	StartYear      int      `json:"start_year"`
	EndYear        int      `json:"end_year"`
	Limit          int      `json:"limit"`
	IsEnglish      bool     `json:"isEnglish"`
	IsPeerReviewed bool     `json:"isPeerReviewed"`
	IsMostCited    bool     `json:"isMostCited"`
	DataSources    []string `json:"selectedDataSources"`
	Keywords       []string `json:"keywords,omitempty"`
}

// SearchPapers runs the search against the selected data sources. The
// backend returns one result group per source, in request order; groups for
// sources that returned nothing are empty rather than omitted.
func (c *Client) SearchPapers(ctx context.Context, req SearchRequest) ([][]types.RetrievedPaper, error) {
	var groups [][]types.RetrievedPaper
	if err := c.postJSON(ctx, "search_papers", req, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// UploadMetadata describes the paper a PDF belongs to.
type UploadMetadata struct {
	Title   string
	Creator string
	Year    string
	DOI     string
	Link    string
}

// UploadPDF sends one PDF to the backend as multipart form data. Each upload
// is independent; a failure affects only this file.
func (c *Client) UploadPDF(ctx context.Context, projectID, pdfPath string, meta UploadMetadata) error {
	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("pdf", filepath.Base(pdfPath))
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	fields := map[string]string{
		"title":      meta.Title,
		"creator":    meta.Creator,
		"year":       meta.Year,
		"doi":        meta.DOI,
		"link":       meta.Link,
		"project_id": projectID,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("upload_pdf"), &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ListUploadedPDFs returns the file names already uploaded for a project.
func (c *Client) ListUploadedPDFs(ctx context.Context, projectID string) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "list_uploaded_pdfs/"+url.PathEscape(projectID), &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DeletePDF removes one uploaded file from the backend.
func (c *Client) DeletePDF(ctx context.Context, projectID, fileName string) error {
	q := url.Values{
		"project_id": {projectID},
		"file_name":  {fileName},
	}
	return c.delete(ctx, "delete_pdf?"+q.Encode())
}

// ExtractData runs the batch extraction for a project and returns the
// extracted rows.
func (c *Client) ExtractData(ctx context.Context, projectID string) ([]types.ExtractionRow, error) {
	body := map[string]string{"project_id": projectID}
	var resp struct {
		Data []types.ExtractionRow `json:"data"`
	}
	if err := c.postJSON(ctx, "extract_data", body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DownloadCSV streams the backend's CSV export of extracted data to w.
func (c *Client) DownloadCSV(ctx context.Context, projectID, fileName string, w io.Writer) error {
	q := url.Values{
		"project_id": {projectID},
		"file_name":  {fileName},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("download_csv?"+q.Encode()), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("downloading CSV: %w", err)
	}
	return nil
}

// YearString formats a publication year for upload metadata; zero years
// become the empty string rather than "0".
func YearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
