package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/solverpad/solverpad/problem"
)

// FromArticle is the loose extraction path: when a page carries no structured
// problem container, generic article extraction can still recover a statement
// from platforms whose markup we do not model. The result has no sample tests
// and stands or falls on record validation like any other strategy output.
func FromArticle(doc []byte, key problem.Key) *problem.Record {
	pageURL, err := url.Parse(key.URL())
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(bytes.NewReader(doc), pageURL)
	if err != nil {
		return nil
	}

	body := strings.TrimSpace(article.TextContent)
	if body == "" {
		return nil
	}
	if article.Content != "" {
		if markdown, err := newMarkdownConverter().ConvertString(article.Content); err == nil {
			body = markdown
		}
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = key.Index + "."
	}

	return &problem.Record{
		Title:         title,
		Platform:      key.Platform,
		ContestID:     key.ContestID,
		Index:         key.Index,
		StatementBody: cleanText(body),
		SourceURL:     key.URL(),
	}
}
