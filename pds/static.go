// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"bytes"
	"embed"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/zeebo/blake3"
)

//go:embed static/index.md static/robots.txt
var staticFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// staticPage is a fixed response body with a strong ETag derived from
// its content.
type staticPage struct {
	body        []byte
	contentType string
	etag        string
}

func newStaticPage(body []byte, contentType string) *staticPage {
	digest := blake3.Sum256(body)
	return &staticPage{
		body:        body,
		contentType: contentType,
		etag:        `"` + hex.EncodeToString(digest[:]) + `"`,
	}
}

// ServeHTTP serves the page for any request method. A matching
// If-None-Match yields 304 with no body.
func (p *staticPage) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	header := w.Header()
	header.Set("ETag", p.etag)
	if etagMatches(request.Header.Get("If-None-Match"), p.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	header.Set("Content-Type", p.contentType)
	header.Set("Content-Length", strconv.Itoa(len(p.body)))
	w.WriteHeader(http.StatusOK)
	if request.Method != http.MethodHead {
		w.Write(p.body)
	}
}

// etagMatches applies the weak comparison of RFC 9110 section 13.1.2:
// a W/ prefix on a listed tag is ignored, and "*" matches anything.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// loadStaticPages renders the landing page from its markdown source and
// loads robots.txt.
func loadStaticPages() (index, robots *staticPage, err error) {
	source, err := staticFiles.ReadFile("static/index.md")
	if err != nil {
		return nil, nil, fmt.Errorf("reading landing page: %w", err)
	}
	var rendered bytes.Buffer
	rendered.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>rpds</title>\n</head>\n<body>\n")
	markdown := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := markdown.Convert(source, &rendered); err != nil {
		return nil, nil, fmt.Errorf("rendering landing page: %w", err)
	}
	rendered.WriteString("</body>\n</html>\n")

	robotsBody, err := staticFiles.ReadFile("static/robots.txt")
	if err != nil {
		return nil, nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return newStaticPage(rendered.Bytes(), contentTypeHTML), newStaticPage(robotsBody, contentTypeText), nil
}
