// Package richtext turns editor output into plain paragraphs.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blocks end the current paragraph when they open or close.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Hr: true, atom.Tr: true, atom.Table: true,
	atom.Section: true, atom.Article: true,
}

// PlainText strips markup from s and returns its paragraphs separated by a
// blank line. Entities are decoded and the content of script and style
// elements is dropped. Input without tags keeps its own line breaks.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.Contains(s, "<") {
		return splitParagraphs(html.UnescapeString(s))
	}

	var (
		paras []string
		line  strings.Builder
		skip  int
	)
	flush := func() {
		if t := strings.Join(strings.Fields(line.String()), " "); t != "" {
			paras = append(paras, t)
		}
		line.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			return strings.Join(paras, "\n\n")
		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
				continue
			}
			if blocks[a] {
				flush()
				if a == atom.Li && tt == html.StartTagToken {
					line.WriteString("- ")
				}
			}
		}
	}
}

// splitParagraphs trims every line and collapses runs of blank lines.
func splitParagraphs(s string) string {
	var (
		paras []string
		cur   []string
	)
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, "\n"))
	}
	return strings.Join(paras, "\n\n")
}
