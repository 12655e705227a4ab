// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local SQLite mirror of retrieved papers and
// extraction results, so projects can be listed, searched, and exported
// without the backend.
package archive

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

const dbFile = "archive.db"

// Archive manages the local SQLite mirror.
type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive database under cfg.DataDir.
func Open(cfg types.ArchiveConfig) (*Archive, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("archive data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			project_id TEXT NOT NULL,
			key TEXT NOT NULL,
			doi TEXT,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			venue TEXT,
			url TEXT,
			source TEXT,
			PRIMARY KEY (project_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_project ON papers(project_id)`,
		`CREATE TABLE IF NOT EXISTS extraction_schema (
			project_id TEXT PRIMARY KEY,
			fields TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS extraction_rows (
			project_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			row TEXT NOT NULL,
			PRIMARY KEY (project_id, idx)
		)`,
	}

	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SavePapers replaces the archived search results for a project.
func (a *Archive) SavePapers(ctx context.Context, projectID string, papers []types.RetrievedPaper) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing old papers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (project_id, key, doi, title, abstract, authors, year, venue, url, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range papers {
		authorsJSON, _ := json.Marshal(p.Authors)
		_, err := stmt.ExecContext(ctx,
			projectID, p.ID(i), p.DOI, p.Title, p.Abstract,
			string(authorsJSON), p.Year, p.Venue, p.URL, p.Source,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %s: %w", p.ID(i), err)
		}
	}

	return tx.Commit()
}

// Papers returns the archived papers for a project in insertion order.
func (a *Archive) Papers(ctx context.Context, projectID string) ([]types.RetrievedPaper, error) {
	return a.queryPapers(ctx,
		`SELECT key, doi, title, abstract, authors, year, venue, url, source
		 FROM papers WHERE project_id = ? ORDER BY rowid`, projectID)
}

// SearchPapers returns archived papers whose title, abstract, or author
// list contains the query, case-insensitively.
func (a *Archive) SearchPapers(ctx context.Context, projectID, query string) ([]types.RetrievedPaper, error) {
	pattern := "%" + query + "%"
	return a.queryPapers(ctx,
		`SELECT key, doi, title, abstract, authors, year, venue, url, source
		 FROM papers WHERE project_id = ?
		   AND (title LIKE ? OR abstract LIKE ? OR authors LIKE ?)
		 ORDER BY rowid`,
		projectID, pattern, pattern, pattern)
}

func (a *Archive) queryPapers(ctx context.Context, query string, args ...any) ([]types.RetrievedPaper, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.RetrievedPaper
	for rows.Next() {
		var p types.RetrievedPaper
		var authorsJSON string
		if err := rows.Scan(&p.Key, &p.DOI, &p.Title, &p.Abstract,
			&authorsJSON, &p.Year, &p.Venue, &p.URL, &p.Source); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		json.Unmarshal([]byte(authorsJSON), &p.Authors)
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// SaveExtraction replaces the archived extraction schema and rows for a
// project.
func (a *Archive) SaveExtraction(ctx context.Context, projectID string, fields []types.ExtractionField, rows []types.ExtractionRow) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO extraction_schema (project_id, fields) VALUES (?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET fields=excluded.fields`,
		projectID, string(fieldsJSON))
	if err != nil {
		return fmt.Errorf("upserting schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM extraction_rows WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO extraction_rows (project_id, idx, row) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, projectID, i, string(rowJSON)); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Extraction returns the archived extraction schema and rows for a project.
func (a *Archive) Extraction(ctx context.Context, projectID string) ([]types.ExtractionField, []types.ExtractionRow, error) {
	var fieldsJSON string
	err := a.db.QueryRowContext(ctx,
		`SELECT fields FROM extraction_schema WHERE project_id = ?`, projectID,
	).Scan(&fieldsJSON)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying schema: %w", err)
	}

	var fields []types.ExtractionField
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, nil, fmt.Errorf("parsing schema: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT row FROM extraction_rows WHERE project_id = ? ORDER BY idx`, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var extracted []types.ExtractionRow
	for rows.Next() {
		var rowJSON string
		if err := rows.Scan(&rowJSON); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		var row types.ExtractionRow
		if err := json.Unmarshal([]byte(rowJSON), &row); err != nil {
			return nil, nil, fmt.Errorf("parsing row: %w", err)
		}
		extracted = append(extracted, row)
	}
	return fields, extracted, rows.Err()
}

// ExportCSV writes the archived extraction rows as CSV, one column per
// schema field in schema order.
func (a *Archive) ExportCSV(ctx context.Context, projectID string, w io.Writer) error {
	fields, rows, err := a.Extraction(ctx, projectID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no extraction archived for project %s", projectID)
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := make([]string, len(fields))
	for _, row := range rows {
		for i, f := range fields {
			record[i] = cellString(row[f.Name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellString renders one extracted value for CSV output. JSON numbers that
// are whole render without a decimal point.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		raw, _ := json.Marshal(val)
		return string(raw)
	}
}
