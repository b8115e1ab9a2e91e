package imports

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func entries(t *testing.T, results []Result) []Entry {
	t.Helper()
	var out []Entry
	for _, r := range results {
		if r.Err == nil {
			require.NotNil(t, r.Entry)
			out = append(out, *r.Entry)
		}
	}
	return out
}

func TestDecodePayload_Raw(t *testing.T) {
	decoded, err := DecodePayload(`{"bookmarks": []}`)
	require.NoError(t, err)
	require.Equal(t, `{"bookmarks": []}`, decoded)
}

func TestDecodePayload_DataURL(t *testing.T) {
	payload := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(`{"bookmarks": []}`))
	decoded, err := DecodePayload(payload)
	require.NoError(t, err)
	require.Equal(t, `{"bookmarks": []}`, decoded)

	_, err = DecodePayload("data:application/json;base64,!!!not-base64!!!")
	require.Error(t, err)
}

func TestParseJSON_WrappedArray(t *testing.T) {
	data := `{"bookmarks": [
		{"url": "https://example.com", "title": "Example"},
		{"url": "https://go.dev", "title": "Go", "description": "The Go site", "access_level": "public"}
	]}`

	results, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, results, 2)

	parsed := entries(t, results)
	require.Len(t, parsed, 2)
	require.Equal(t, "https://example.com", parsed[0].URL)
	require.Equal(t, "Example", parsed[0].Title)
	require.Equal(t, "private", parsed[0].AccessLevel)
	require.Equal(t, "public", parsed[1].AccessLevel)
	require.NotNil(t, parsed[1].Description)
	require.Equal(t, "The Go site", *parsed[1].Description)
}

func TestParseJSON_BareArray(t *testing.T) {
	results, err := ParseJSON(`[{"url": "https://example.com"}]`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	// Title falls back to the URL.
	require.Equal(t, "https://example.com", results[0].Entry.Title)
}

func TestParseJSON_SingleObject(t *testing.T) {
	results, err := ParseJSON(`{"url": "https://example.com", "title": "One"}`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "One", results[0].Entry.Title)
}

func TestParseJSON_MissingURL(t *testing.T) {
	results, err := ParseJSON(`{"bookmarks": [{"title": "No URL"}, {"url": "https://ok.example"}]}`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	require.Contains(t, results[0].Err.Error(), "No URL")
	require.NoError(t, results[1].Err)
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := ParseJSON(`{"bookmarks": [`)
	require.Error(t, err)
}

func TestParseHTML(t *testing.T) {
	data := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
	<DL><p>
		<DT><A HREF="https://example.com" ADD_DATE="1688000000">Example</A>
		<DT><a href="https://go.dev">  Go  </a>
	</DL>`

	results, err := ParseHTML(data)
	require.NoError(t, err)
	require.Len(t, results, 2)

	parsed := entries(t, results)
	require.Len(t, parsed, 2)
	require.Equal(t, "https://example.com", parsed[0].URL)
	require.Equal(t, "Example", parsed[0].Title)
	require.Equal(t, "https://go.dev", parsed[1].URL)
	require.Equal(t, "Go", parsed[1].Title)
}

func TestParseHTML_NoAnchors(t *testing.T) {
	results, err := ParseHTML("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestParseCSV(t *testing.T) {
	data := "URL,Title,Description,Access Level\n" +
		"https://example.com,Example,An example,public\n" +
		"https://go.dev,,,\n"

	results, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, results, 2)

	parsed := entries(t, results)
	require.Len(t, parsed, 2)
	require.Equal(t, "Example", parsed[0].Title)
	require.Equal(t, "public", parsed[0].AccessLevel)
	require.NotNil(t, parsed[0].Description)

	// Optional columns fall back per record.
	require.Equal(t, "https://go.dev", parsed[1].Title)
	require.Equal(t, "private", parsed[1].AccessLevel)
	require.Nil(t, parsed[1].Description)
}

func TestParseCSV_MissingURLColumn(t *testing.T) {
	_, err := ParseCSV("Title,Description\nExample,whatever\n")
	require.Error(t, err)
}

func TestParseCSV_RowWithoutURL(t *testing.T) {
	results, err := ParseCSV("URL,Title\n,Empty\nhttps://ok.example,OK\n")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse("xml", "<bookmarks/>")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
