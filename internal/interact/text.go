package interact

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText flattens tooltip markup into display lines. Line breaks come
// from <br> and block elements; entities are decoded.
func PlainText(markup string) []string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var lines []string
	var cur strings.Builder

	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				cur.WriteString(string(z.Raw()))
			}
			flush()
			return lines
		case html.TextToken:
			cur.WriteString(z.Token().Data)
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			switch z.Token().DataAtom {
			case atom.Br, atom.P, atom.Div, atom.Li:
				flush()
			}
		}
	}
}
