package textextract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ExtractHTML pulls the visible text out of an HTML document, skipping
// script, style and head content.
func ExtractHTML(r io.Reader) (*ExtractedText, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var buf strings.Builder
	var title string
	var walk func(n *html.Node, skip bool)
	walk = func(n *html.Node, skip bool) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "head":
				skip = true
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				skip = true
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				buf.WriteString("\n")
			}
		case html.TextNode:
			if !skip {
				if text := strings.TrimSpace(n.Data); text != "" {
					buf.WriteString(text)
					buf.WriteString(" ")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	meta := map[string]string{}
	if title != "" {
		meta["title"] = title
	}
	return &ExtractedText{
		Content:  collapseBlankLines(buf.String()),
		Metadata: meta,
	}, nil
}

// FetchURL downloads a web page and extracts its text.
func FetchURL(ctx context.Context, url string) (*ExtractedText, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "podica/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", url, err)
		}
		return &ExtractedText{Content: string(data)}, nil
	}

	extracted, err := ExtractHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	if extracted.Metadata == nil {
		extracted.Metadata = map[string]string{}
	}
	extracted.Metadata["source_url"] = url
	return extracted, nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
