package planner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// newMarkdown builds the renderer for documentation pages. Raw HTML in
// the source is not passed through.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// RenderDocument returns a document's markdown content as HTML.
func (s *Service) RenderDocument(ctx context.Context, id int64) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(doc.Content), &buf); err != nil {
		return "", fmt.Errorf("render document %d: %w", id, err)
	}
	return buf.String(), nil
}
