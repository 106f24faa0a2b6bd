// Copyright © 2024 The GHLS authors

package github

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/ghls/entity"
)

const wikiIndex = `<!DOCTYPE html>
<html><body>
<nav><a href="/entur/helm-charts/wiki">Home</a></nav>
<ul>
  <li><a href="/entur/helm-charts/wiki/Getting-Started"><strong>Getting</strong> Started</a></li>
  <li><a href="/entur/helm-charts/wiki/Release-Process">Release Process</a></li>
  <li><a href="/entur/helm-charts/wiki/Release-Process">Release Process (again)</a></li>
  <li><a href="/entur/helm-charts/wiki/_new">New page</a></li>
  <li><a href="/entur/helm-charts/wiki/_history">History</a></li>
  <li><a href="https://example.com/wiki/External">External</a></li>
  <li><a href="/entur/helm-charts/wiki/Empty"></a></li>
  <li><a>No href</a></li>
</ul>
</body></html>`

func TestParseWikiIndex(t *testing.T) {
	pages, err := ParseWikiIndex([]byte(wikiIndex))
	require.NoError(t, err)
	assert.Equal(t, []*entity.WikiPage{
		{Title: "Getting Started", RelativeURI: "/entur/helm-charts/wiki/Getting-Started"},
		{Title: "Release Process", RelativeURI: "/entur/helm-charts/wiki/Release-Process"},
	}, pages)
}

func TestListWikiPages(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entur/helm-charts/wiki/_pages", r.URL.Path)
		assert.Equal(t, "text/html", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(wikiIndex))
	})
	pages, err := c.ListWikiPages(context.Background(), "entur", "helm-charts")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestListWikiPagesNoWiki(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.ListWikiPages(context.Background(), "entur", "helm-charts")
	assert.Error(t, err)
}
