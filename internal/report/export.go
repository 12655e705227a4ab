// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
)

// Heading sizes in half-points for the .docx export.
var headingSizes = map[int]string{
	1: "36",
	2: "30",
	3: "26",
}

// WriteMarkdown writes the assembled report verbatim to path.
func WriteMarkdown(path, body string) error {
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}

// WriteDocx converts the assembled report to a Word document at path.
// Markdown headings become sized bold paragraphs and everything else
// becomes body text; inline markup is stripped rather than rendered.
func WriteDocx(path, body string) error {
	doc := docx.New().WithDefaultTheme()

	for _, line := range strings.Split(body, "\n") {
		text := strings.TrimRight(line, " \t")
		if text == "" {
			doc.AddParagraph()
			continue
		}

		level := headingLevel(text)
		if level > 0 {
			heading := strings.TrimSpace(strings.TrimLeft(text, "#"))
			size, ok := headingSizes[level]
			if !ok {
				size = headingSizes[3]
			}
			doc.AddParagraph().AddText(stripInline(heading)).Size(size).Bold()
			continue
		}

		doc.AddParagraph().AddText(stripInline(text))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("writing docx report: %w", err)
	}
	return nil
}

// headingLevel returns the markdown heading level of line, or 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// inlineMarkup strips bold and italic markers.
var inlineMarkup = strings.NewReplacer(`**`, "", `_`, "")

// stripInline removes bold and italic markers and source anchors so the
// docx text reads clean.
func stripInline(line string) string {
	for {
		start := strings.Index(line, `<a id="source-`)
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], `</a>`)
		if end < 0 {
			break
		}
		line = line[:start] + line[start+end+len(`</a>`):]
	}
	return inlineMarkup.Replace(line)
}
