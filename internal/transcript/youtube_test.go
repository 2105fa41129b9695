package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"no id", "https://example.com/video", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVideoID(tt.url))
		})
	}
}

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    serverURL,
		language:   "en",
	}
}

func TestClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Write([]byte(`<transcript><text start="0">Hello &amp; welcome</text><text start="2">to the lesson</text></transcript>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome to the lesson", text)
}

func TestClient_Fetch_EmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<transcript></transcript>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	assert.Equal(t, domain.ErrTranscriptNotFound, err)
}

func TestClient_Fetch_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	assert.Equal(t, domain.ErrTranscriptNotFound, err)
}

func TestClient_Fetch_InvalidURL(t *testing.T) {
	// No 11-character id anywhere in the URL, so no request is made.
	client := NewClient("")
	_, err := client.Fetch(context.Background(), "https://example.com/short")

	assert.Equal(t, domain.ErrTranscriptNotFound, err)
}

func TestExtractVideoID_RejectsNonIDPathSegment(t *testing.T) {
	assert.Empty(t, ExtractVideoID("https://example.com/short"))
	assert.Empty(t, ExtractVideoID("https://example.com/way-too-long-to-be-an-id"))
	assert.Equal(t, "dQw4w9WgXcQ", ExtractVideoID("https://youtu.be/dQw4w9WgXcQ"))
}
