// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import "fmt"

// Key builders for the per-project namespace. These names are the on-disk
// format shared with earlier versions of the system and must not change.

// PhaseKey returns the snapshot key for phase n (1-3) of a project.
func PhaseKey(projectID string, n int) string {
	return fmt.Sprintf("project_%s_phase%d", projectID, n)
}

// RetrievedPapersKey holds the flattened search results for a project.
func RetrievedPapersKey(projectID string) string {
	return fmt.Sprintf("project_%s_retrievedPapers", projectID)
}

// SelectedPapersKey holds the identifiers of papers chosen for review.
func SelectedPapersKey(projectID string) string {
	return fmt.Sprintf("project_%s_selectedPapers", projectID)
}

// ReportKey holds the standalone report document. Older versions wrote a
// bare string here rather than JSON; readers must tolerate both.
func ReportKey(projectID string) string {
	return fmt.Sprintf("project_%s_report", projectID)
}

// ReportSourcesKey holds the bibliography attached to the report.
func ReportSourcesKey(projectID string) string {
	return fmt.Sprintf("project_%s_report_sources", projectID)
}

// DeepSourcesKey is the legacy name for the report bibliography. Read as a
// fallback when ReportSourcesKey is absent; never written.
func DeepSourcesKey(projectID string) string {
	return fmt.Sprintf("project_%s_deep_sources", projectID)
}

// ProjectKeys returns every key the engine may have written for a project,
// in a fixed order. Used by clear-and-restart.
func ProjectKeys(projectID string) []string {
	return []string{
		PhaseKey(projectID, 1),
		PhaseKey(projectID, 2),
		PhaseKey(projectID, 3),
		RetrievedPapersKey(projectID),
		SelectedPapersKey(projectID),
		ReportKey(projectID),
		ReportSourcesKey(projectID),
		DeepSourcesKey(projectID),
	}
}
