package annotate

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
)

// TOCEntry maps a page to its output ID and headings.
type TOCEntry struct {
	ID       core.ID      `json:"id"`
	Page     int          `json:"page"`
	Title    string       `json:"title"`
	Headings []TOCHeading `json:"headings,omitempty"`
}

// TOCHeading is a heading within a page.
type TOCHeading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// BuildTOC lists pages in order. Pages without a heading are titled by
// their position.
func BuildTOC(pages []AnnotatedPage) []TOCEntry {
	toc := make([]TOCEntry, 0, len(pages))
	for _, p := range pages {
		entry := TOCEntry{ID: p.ID, Page: p.Index, Title: p.Title}
		if entry.Title == "" {
			entry.Title = fmt.Sprintf("Page %d", p.Index+1)
		}
		for _, b := range p.Blocks {
			if b.Kind == document.Heading && len(b.Spans) > 0 {
				entry.Headings = append(entry.Headings, TOCHeading{Level: b.Level, Text: b.Spans[0].Text})
			}
		}
		toc = append(toc, entry)
	}
	return toc
}

// RenderText writes out as plain text with ruby in braces after each
// glossed span.
func RenderText(w io.Writer, out *Output) error {
	var b strings.Builder
	if out.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", out.Title)
	}
	for i, p := range out.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[page %d %016x]\n", p.Index+1, uint64(p.ID))
		for _, block := range p.Blocks {
			if block.Kind == document.Heading {
				b.WriteString(strings.Repeat("#", block.Level+1))
				b.WriteString(" ")
			}
			for _, s := range block.Spans {
				b.WriteString(s.Text)
				if s.Match != nil && s.Match.Ruby != "" {
					fmt.Fprintf(&b, "{%s}", s.Match.Ruby)
				}
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
