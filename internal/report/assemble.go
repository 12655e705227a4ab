// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles generated report markdown: bibliography
// appending, citation link wiring, and document export. All transforms are
// idempotent so re-assembling a stored report never duplicates content.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// sourcesHeading detects an existing Sources section, case-insensitively,
// anywhere in the document.
var sourcesHeading = regexp.MustCompile(`(?im)^##\s*Sources`)

// citationTag matches inline citation tags of the form [#12].
var citationTag = regexp.MustCompile(`\[#(\d+)\]`)

// sourceLine matches a numbered entry in the Sources section.
var sourceLine = regexp.MustCompile(`^(\d+)\.\s`)

// FormatSourceLine renders one numbered bibliography entry. The venue and
// year render italic, joined by ", " when both are present.
func FormatSourceLine(n int, src types.Source) string {
	line := fmt.Sprintf("%d. **%s**", n, src.Title)

	var meta []string
	if src.Venue != "" {
		meta = append(meta, src.Venue)
	}
	if src.Year != "" {
		meta = append(meta, src.Year)
	}
	if len(meta) > 0 {
		line += " — _" + strings.Join(meta, ", ") + "_"
	}

	if src.URL != "" {
		line += "\n" + src.URL
	}
	return line
}

// AppendSources appends a "## Sources" section listing sources to body.
// A body that already contains a Sources heading is returned unchanged, so
// applying the function twice equals applying it once. An empty source list
// leaves the body untouched.
func AppendSources(body string, sources []types.Source) string {
	if len(sources) == 0 {
		return body
	}
	if sourcesHeading.MatchString(body) {
		return body
	}

	lines := make([]string, len(sources))
	for i, src := range sources {
		lines[i] = FormatSourceLine(i+1, src)
	}
	return body + "\n\n## Sources\n\n" + strings.Join(lines, "\n") + "\n"
}

// WireCitations rewrites inline [#N] tags into markdown links targeting the
// matching bibliography entry, and anchors each numbered entry in the
// Sources section. Running it on already-wired text is a no-op: the link
// rewrite consumes its own input form, and anchored entries are skipped.
func WireCitations(body string) string {
	wired := citationTag.ReplaceAllString(body, "[$1](#source-$1)")

	loc := sourcesHeading.FindStringIndex(wired)
	if loc == nil {
		return wired
	}

	head := wired[:loc[0]]
	tail := wired[loc[0]:]
	lines := strings.Split(tail, "\n")
	for i, line := range lines {
		m := sourceLine.FindStringSubmatch(line)
		if m == nil || strings.Contains(line, `<a id="source-`) {
			continue
		}
		lines[i] = fmt.Sprintf(`<a id="source-%s"></a>%s`, m[1], line)
	}
	return head + strings.Join(lines, "\n")
}

// Assemble applies both transforms in order: append the bibliography, then
// wire citations and anchors.
func Assemble(body string, sources []types.Source) string {
	return WireCitations(AppendSources(body, sources))
}
