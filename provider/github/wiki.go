// Copyright © 2024 The GHLS authors

package github

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider"
)

// ListWikiPages scrapes the wiki page index of owner/repo. GitHub offers no
// API for wikis, so the rendered HTML is parsed instead.
func (c *Client) ListWikiPages(ctx context.Context, owner, repo string) ([]*entity.WikiPage, error) {
	endpoint := c.host + "/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/wiki/_pages"
	body, err := c.get(ctx, "list wiki pages", endpoint, nil, "text/html")
	if err != nil {
		return nil, err
	}
	pages, err := ParseWikiIndex(body)
	if err != nil {
		return nil, &provider.Error{Op: "list wiki pages", Err: err}
	}
	return pages, nil
}

// ParseWikiIndex extracts wiki pages from an HTML document. Wiki pages are
// rendered as site-relative links of the form /<owner>/<repo>/wiki/<page>;
// links containing "/_" are wiki actions such as _new or _history and are
// skipped. The first link to a page wins.
func ParseWikiIndex(doc []byte) ([]*entity.WikiPage, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}
	var pages []*entity.WikiPage
	seen := make(map[string]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if isWikiPageLink(href) && !seen[href] {
				title := strings.Join(strings.Fields(textContent(n)), " ")
				if title != "" {
					seen[href] = true
					pages = append(pages, &entity.WikiPage{Title: title, RelativeURI: href})
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return pages, nil
}

func isWikiPageLink(href string) bool {
	return strings.HasPrefix(href, "/") && strings.Contains(href, "wiki/") && !strings.Contains(href, "/_")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
