package fetcher

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ExtractTitle reads an HTML document and returns its title.
//
// The <title> element wins; og:title and twitter:title meta tags are used as
// fallbacks. Returns nil (and no error) when the document has no usable title.
// contentType is used to pick the character set, it may be empty.
func ExtractTitle(r io.Reader, contentType string) (*string, error) {
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var (
		title string
		meta  = make(map[string]string)
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if title == "" {
					title = textOf(n)
				}
			case "meta":
				key, content := metaPair(n)
				if key != "" && content != "" {
					if _, seen := meta[key]; !seen {
						meta[key] = content
					}
				}
			case "svg":
				// titles inside inline SVG are not page titles
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, candidate := range []string{title, meta["og:title"], meta["twitter:title"]} {
		if cleaned := strings.Join(strings.Fields(candidate), " "); cleaned != "" {
			return &cleaned, nil
		}
	}
	return nil, nil
}

// metaPair returns the property/name key and content of a <meta> tag.
// Example: <meta property="og:title" content="Example"> -> ("og:title", "Example")
func metaPair(n *html.Node) (string, string) {
	var key, content string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(attr.Val))
			}
		case "content":
			content = attr.Val
		}
	}
	return key, content
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
