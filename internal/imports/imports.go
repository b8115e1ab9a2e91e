// Package imports parses bookmark collections uploaded in JSON, HTML
// or CSV form. Parsing never aborts the batch on a bad record: each
// record yields its own Result and the caller decides what to do with
// the failures.
package imports

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported import format")

// Entry is one bookmark extracted from an import payload, before any
// validation or persistence.
type Entry struct {
	URL         string
	Title       string
	Description *string
	AccessLevel string
}

// Result is the outcome for a single record: either Entry is set, or
// Err carries a human-readable reason the record was skipped.
type Result struct {
	Entry *Entry
	Err   error
}

func failure(format string, args ...interface{}) Result {
	return Result{Err: fmt.Errorf(format, args...)}
}

// DecodePayload unwraps an optional data-URL base64 envelope. Raw text
// passes through unchanged.
func DecodePayload(data string) (string, error) {
	if !strings.HasPrefix(data, "data:") {
		return data, nil
	}

	_, encoded, found := strings.Cut(data, ",")
	if !found {
		return "", errors.New("malformed data URL")
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64 payload: %w", err)
	}

	return string(decoded), nil
}

// Parse decodes the payload and dispatches on format.
func Parse(format, data string) ([]Result, error) {
	decoded, err := DecodePayload(data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return ParseJSON(decoded)
	case FormatHTML:
		return ParseHTML(decoded)
	case FormatCSV:
		return ParseCSV(decoded)
	default:
		return nil, ErrUnsupportedFormat
	}
}

type jsonBookmark struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	AccessLevel string  `json:"access_level"`
}

// ParseJSON accepts {"bookmarks": [...]}, a bare array, or a single
// object, normalized to one record list.
func ParseJSON(data string) ([]Result, error) {
	trimmed := strings.TrimSpace(data)

	var rawRecords []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &rawRecords); err != nil {
			return nil, fmt.Errorf("invalid JSON format: %w", err)
		}
	} else {
		var object map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &object); err != nil {
			return nil, fmt.Errorf("invalid JSON format: %w", err)
		}
		if wrapped, ok := object["bookmarks"]; ok {
			if err := json.Unmarshal(wrapped, &rawRecords); err != nil {
				return nil, fmt.Errorf("invalid JSON format: %w", err)
			}
		} else {
			rawRecords = []json.RawMessage{json.RawMessage(trimmed)}
		}
	}

	results := make([]Result, 0, len(rawRecords))
	for _, raw := range rawRecords {
		var record jsonBookmark
		if err := json.Unmarshal(raw, &record); err != nil {
			results = append(results, failure("failed to import bookmark: %v", err))
			continue
		}
		if record.URL == "" {
			results = append(results, failure("failed to import bookmark %s: missing url", titleOrUnknown(record.Title)))
			continue
		}

		title := record.Title
		if title == "" {
			title = record.URL
		}
		accessLevel := record.AccessLevel
		if accessLevel == "" {
			accessLevel = "private"
		}

		results = append(results, Result{Entry: &Entry{
			URL:         record.URL,
			Title:       title,
			Description: record.Description,
			AccessLevel: accessLevel,
		}})
	}

	return results, nil
}

// anchorPattern matches browser-export style anchor tags. It is a
// deliberately permissive pattern, not a document parser: nested or
// malformed markup may under- or over-match.
var anchorPattern = regexp.MustCompile(`(?i)<A HREF="([^"]*)"[^>]*>([^<]*)</A>`)

func ParseHTML(data string) ([]Result, error) {
	matches := anchorPattern.FindAllStringSubmatch(data, -1)

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		url, title := match[1], strings.TrimSpace(match[2])
		if url == "" {
			results = append(results, failure("failed to import bookmark %s: missing url", titleOrUnknown(title)))
			continue
		}
		if title == "" {
			title = url
		}
		results = append(results, Result{Entry: &Entry{
			URL:         url,
			Title:       title,
			AccessLevel: "private",
		}})
	}

	return results, nil
}

// ParseCSV expects a header row with a URL column; Title, Description
// and Access Level columns are optional and fall back per record.
func ParseCSV(data string) ([]Result, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["URL"]; !ok {
		return nil, errors.New("failed to parse CSV: missing URL column")
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var results []Result
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			results = append(results, failure("failed to import bookmark: %v", err))
			continue
		}

		url := field(row, "URL")
		if url == "" {
			results = append(results, failure("failed to import bookmark %s: missing url", titleOrUnknown(field(row, "Title"))))
			continue
		}

		title := field(row, "Title")
		if title == "" {
			title = url
		}
		accessLevel := field(row, "Access Level")
		if accessLevel == "" {
			accessLevel = "private"
		}

		entry := &Entry{
			URL:         url,
			Title:       title,
			AccessLevel: accessLevel,
		}
		if description := field(row, "Description"); description != "" {
			entry.Description = &description
		}

		results = append(results, Result{Entry: entry})
	}

	return results, nil
}

func titleOrUnknown(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}
