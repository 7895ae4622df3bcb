package result

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"
)

// RenderJSON encodes r. Pretty output is indented with tidwall/pretty.
func RenderJSON(r *Result, indent bool) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	if indent {
		return pretty.Pretty(data), nil
	}
	return data, nil
}

// RenderText writes r for a terminal. Sense subsections are indented by level.
func RenderText(w io.Writer, r *Result) error {
	var b strings.Builder
	if len(r.Items) == 0 {
		fmt.Fprintf(&b, "no results for %q\n", r.Query)
		_, err := io.WriteString(w, b.String())
		return err
	}

	for i, e := range r.Items {
		if i > 0 && r.View != "list" {
			b.WriteString("\n")
		}
		b.WriteString(e.Word)
		if e.Pronunciation != "" {
			fmt.Fprintf(&b, " /%s/", e.Pronunciation)
		}
		if e.Source != "" {
			fmt.Fprintf(&b, " <- %s", e.Source)
		}
		if len(e.Translations) > 0 {
			if r.View == "list" {
				b.WriteString(": ")
			} else {
				b.WriteString("\n  ")
			}
			b.WriteString(strings.Join(e.Translations, ", "))
		}
		b.WriteString("\n")

		if len(e.Inflections) > 0 {
			fmt.Fprintf(&b, "  (%s)\n", strings.Join(e.Inflections, ", "))
		}
		for _, s := range e.Senses {
			for j, sec := range s.Sections {
				indent := strings.Repeat("  ", sec.Level+1)
				if j == 0 {
					fmt.Fprintf(&b, "%s[%s] %s: %s\n", indent, s.Label, s.POS, sec.Text)
					continue
				}
				fmt.Fprintf(&b, "  %s- %s\n", indent, sec.Text)
			}
		}
		if len(e.Related) > 0 {
			fmt.Fprintf(&b, "  see also: %s\n", strings.Join(e.Related, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
