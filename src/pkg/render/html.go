package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

// HTMLExporter renders an outline into a standalone HTML page. Chapter and
// subchapter descriptions are treated as Markdown; image diagrams are
// embedded through their resolved data URIs.
type HTMLExporter struct {
	markdown goldmark.Markdown
	resolver *Resolver
	logger   *log.Logger
}

// NewHTMLExporter creates a new HTMLExporter instance.
func NewHTMLExporter(resolver *Resolver, logger *log.Logger) *HTMLExporter {
	return &HTMLExporter{
		markdown: goldmark.New(),
		resolver: resolver,
		logger:   logger,
	}
}

// ExportFile renders the outline and writes it to the named file.
func (e *HTMLExporter) ExportFile(ctx context.Context, outline *model.Outline, filename string) error {
	data, err := e.Render(ctx, outline)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Render produces the HTML page for an outline.
func (e *HTMLExporter) Render(ctx context.Context, outline *model.Outline) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Outline</title></head>\n<body>\n")

	for _, chapter := range outline.Chapters {
		fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(chapter.Title))
		if err := e.writeDescription(&buf, chapter.Description); err != nil {
			return nil, err
		}
		e.writeAttachments(ctx, &buf, chapter.Diagrams, chapter.Documents)

		for _, subchapter := range chapter.Subchapters {
			fmt.Fprintf(&buf, "<h2>%s</h2>\n", html.EscapeString(subchapter.Title))
			if err := e.writeDescription(&buf, subchapter.Description); err != nil {
				return nil, err
			}
			e.writeAttachments(ctx, &buf, subchapter.Diagrams, subchapter.Documents)
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// writeDescription converts a Markdown description to HTML.
func (e *HTMLExporter) writeDescription(buf *bytes.Buffer, description string) error {
	if description == "" {
		return nil
	}
	if err := e.markdown.Convert([]byte(description), buf); err != nil {
		return fmt.Errorf("failed to render description: %w", err)
	}
	return nil
}

// writeAttachments renders the attachments of one node. Unavailable
// payloads degrade to a note instead of failing the export.
func (e *HTMLExporter) writeAttachments(ctx context.Context, buf *bytes.Buffer, diagrams []*model.Diagram, documents []*model.Document) {
	for _, diagram := range diagrams {
		fmt.Fprintf(buf, "<h3>%s</h3>\n", html.EscapeString(diagram.Title))
		content, err := e.resolver.DiagramContent(ctx, diagram)
		if err != nil {
			buf.WriteString("<p><em>diagram unavailable</em></p>\n")
			continue
		}
		switch diagram.Kind {
		case model.DiagramText:
			fmt.Fprintf(buf, "<pre>%s</pre>\n", html.EscapeString(content))
		case model.DiagramImage:
			fmt.Fprintf(buf, "<img src=\"%s\" alt=\"%s\">\n", content, html.EscapeString(diagram.Title))
		}
	}
	for _, document := range documents {
		fmt.Fprintf(buf, "<h3>%s</h3>\n", html.EscapeString(document.Title))
		content, err := e.resolver.DocumentContent(ctx, document)
		if err != nil {
			buf.WriteString("<p><em>document unavailable</em></p>\n")
			continue
		}
		fmt.Fprintf(buf, "<p><a href=\"%s\" download>%s (%s)</a></p>\n",
			content, html.EscapeString(document.Title), html.EscapeString(document.MIMEType))
	}
}
