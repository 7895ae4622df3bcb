package document

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	metaMarker = "==== [META] ===="
	pageMarker = "==== [PAGE] ===="
)

// Parse reads markup from r. Lines of any length are accepted; only read
// errors are returned.
func Parse(r io.Reader) (*Document, error) {
	p := &parser{doc: &Document{Meta: make(map[string]string)}}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			p.line(strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	p.flush()
	return p.doc, nil
}

// ParseString parses markup held in memory.
func ParseString(text string) *Document {
	p := &parser{doc: &Document{Meta: make(map[string]string)}}
	for line := range strings.Lines(text) {
		p.line(strings.TrimRight(line, "\r\n"))
	}
	p.flush()
	return p.doc
}

type section int

const (
	inPage section = iota
	inMeta
)

type parser struct {
	doc     *Document
	section section
	page    *Page
}

func (p *parser) line(raw string) {
	text := strings.TrimSpace(raw)
	switch text {
	case metaMarker:
		p.flush()
		p.section = inMeta
		return
	case pageMarker:
		p.flush()
		p.section = inPage
		p.page = &Page{}
		return
	case "":
		return
	}

	if p.section == inMeta {
		if key, value, ok := parseField(text); ok {
			p.doc.Meta[key] = value
			return
		}
		p.paragraph(text)
		return
	}

	if key, value, ok := parseField(text); ok {
		if level := headingLevel(key); level > 0 {
			p.current().Blocks = append(p.current().Blocks, Block{Kind: Heading, Level: level, Text: value})
			return
		}
	}
	p.paragraph(text)
}

// paragraph appends text to the current page, opening one if needed.
func (p *parser) paragraph(text string) {
	page := p.current()
	page.Blocks = append(page.Blocks, Block{Kind: Paragraph, Text: text})
}

func (p *parser) current() *Page {
	if p.page == nil {
		p.page = &Page{}
	}
	return p.page
}

// flush closes the open page. Pages without blocks are dropped.
func (p *parser) flush() {
	if p.page != nil && len(p.page.Blocks) > 0 {
		p.doc.Pages = append(p.doc.Pages, *p.page)
	}
	p.page = nil
}

// parseField splits "[key]: value".
func parseField(text string) (key, value string, ok bool) {
	if !strings.HasPrefix(text, "[") {
		return "", "", false
	}
	end := strings.Index(text, "]:")
	if end < 2 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(text[1:end]))
	if key == "" || strings.ContainsAny(key, "[] ") {
		return "", "", false
	}
	return key, strings.TrimSpace(text[end+2:]), true
}

func headingLevel(key string) int {
	switch key {
	case "head1":
		return 1
	case "head2":
		return 2
	case "head3":
		return 3
	}
	return 0
}
