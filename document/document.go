// Package document holds the page and block structure of annotatable text
// and a lenient parser for its markup.
//
// Markup is line oriented:
//
//	==== [META] ====
//	[title]: A Short Story
//	==== [PAGE] ====
//	[head1]: Chapter One
//	Plain lines are paragraphs.
//
// Parsing never fails. Unknown markers and malformed lines become
// paragraphs, and text before the first marker forms an implicit page.
package document

import "strings"

// BlockKind distinguishes headings from paragraphs.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
)

func (k BlockKind) String() string {
	if k == Heading {
		return "heading"
	}
	return "paragraph"
}

// Block is one heading or paragraph.
type Block struct {
	Kind BlockKind
	// Level is 1 to 3 for headings and 0 for paragraphs.
	Level int
	Text  string
}

// Page is an ordered list of blocks.
type Page struct {
	Blocks []Block
}

// Title returns the text of the first heading, or "".
func (p Page) Title() string {
	for _, b := range p.Blocks {
		if b.Kind == Heading {
			return b.Text
		}
	}
	return ""
}

// Text returns the page content, one block per line.
func (p Page) Text() string {
	var b strings.Builder
	for i, block := range p.Blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(block.Text)
	}
	return b.String()
}

// Document is an ordered list of pages plus metadata such as the title.
type Document struct {
	Meta  map[string]string
	Pages []Page
}

// Title returns the "title" metadata value.
func (d *Document) Title() string {
	return d.Meta["title"]
}
