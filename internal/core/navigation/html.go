package navigation

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// flattenHTML converts an HTML document into line-oriented text where every
// h1..h6 element becomes a hash-prefixed heading line. The result feeds the
// same line scan as every other format, so the outline builder never has to
// know the text began as markup. Script, style and nav subtrees are
// dropped.
func flattenHTML(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					b.WriteString("\n")
					b.WriteString(strings.Repeat("#", level))
					b.WriteString(" ")
					b.WriteString(t)
					b.WriteString("\n")
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer":
				return
			case "p", "li", "td", "blockquote":
				if t := textContent(n); t != "" {
					b.WriteString(t)
					b.WriteString("\n")
				}
				return
			case "br":
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return b.String(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
