// Package exports renders a user's bookmark collection into the
// downloadable JSON, HTML and CSV documents served by the export
// endpoints.
package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/psisco/zakladki/internal/models"
)

const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ContentType returns the media type for a supported format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatJSON:
		return "application/json", nil
	case FormatHTML:
		return "text/html", nil
	case FormatCSV:
		return "text/csv", nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Filename builds the attachment name, embedding the generation time.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("bookmarks_%s.%s", now.Format("20060102_150405"), format)
}

// Render serializes bookmarks in the requested format.
func Render(format string, bookmarks []models.Bookmark, now time.Time) ([]byte, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(bookmarks)
	case FormatHTML:
		return RenderHTML(bookmarks, now)
	case FormatCSV:
		return RenderCSV(bookmarks)
	default:
		return nil, ErrUnsupportedFormat
	}
}

type jsonBookmark struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	AccessLevel string  `json:"access_level"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func RenderJSON(bookmarks []models.Bookmark) ([]byte, error) {
	records := make([]jsonBookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		records = append(records, jsonBookmark{
			ID:          b.ID.String(),
			URL:         b.URL,
			Title:       b.Title,
			Description: b.Description,
			AccessLevel: b.AccessLevel,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
		})
	}

	return json.Marshal(map[string]interface{}{"bookmarks": records})
}

var htmlExportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Bookmarks Export</title>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .bookmark { margin-bottom: 20px; padding: 10px; border: 1px solid #ddd; }
        .title { font-size: 18px; font-weight: bold; margin-bottom: 5px; }
        .url { color: #0066cc; text-decoration: none; }
        .description { color: #666; margin-top: 5px; }
        .meta { font-size: 12px; color: #999; margin-top: 10px; }
    </style>
</head>
<body>
    <h1>Bookmarks Export</h1>
    <p>Exported on {{.ExportedAt}}</p>
    <p>Total bookmarks: {{len .Bookmarks}}</p>
{{- range .Bookmarks}}
    <div class="bookmark">
        <div class="title">{{.Title}}</div>
        <a href="{{.URL}}" class="url">{{.URL}}</a>
        {{- if .Description}}
        <div class="description">{{.Description}}</div>
        {{- end}}
        <div class="meta">
            Status: {{.Status}} |
            Access: {{.AccessLevel}} |
            Created: {{.CreatedAt.Format "2006-01-02 15:04:05"}}
        </div>
    </div>
{{- end}}
</body>
</html>
`))

func RenderHTML(bookmarks []models.Bookmark, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlExportTemplate.Execute(&buf, struct {
		ExportedAt string
		Bookmarks  []models.Bookmark
	}{
		ExportedAt: now.Format("2006-01-02 15:04:05"),
		Bookmarks:  bookmarks,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RenderCSV(bookmarks []models.Bookmark) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Title", "URL", "Description", "Status", "Access Level", "Created At", "Updated At"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, b := range bookmarks {
		description := ""
		if b.Description != nil {
			description = *b.Description
		}
		row := []string{
			b.Title,
			b.URL,
			description,
			b.Status,
			b.AccessLevel,
			b.CreatedAt.Format(time.RFC3339),
			b.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
