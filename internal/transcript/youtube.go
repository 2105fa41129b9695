// Package transcript fetches pre-existing platform transcripts for video
// lessons imported by URL.
package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

const defaultTimedTextURL = "https://video.google.com/timedtext"

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[?&/]|$)`)

// ExtractVideoID extracts the 11-character video id from a video URL.
// Returns an empty string when the URL carries no recognizable id.
func ExtractVideoID(rawURL string) string {
	match := videoIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return ""
	}
	return match[1]
}

// Client fetches platform-hosted transcripts over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

// NewClient creates a transcript client with a bounded request timeout.
func NewClient(language string) *Client {
	if language == "" {
		language = "en"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultTimedTextURL,
		language:   language,
	}
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the full transcript text for the given video URL, or
// domain.ErrTranscriptNotFound when no transcript is published for it.
func (c *Client) Fetch(ctx context.Context, videoURL string) (string, error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return "", domain.ErrTranscriptNotFound
	}

	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", c.baseURL, url.QueryEscape(c.language), url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build transcript request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "transcript fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrTranscriptNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", domain.NewDomainError(domain.ErrCodeProvider, fmt.Sprintf("transcript fetch returned status %d", resp.StatusCode))
	}

	var payload timedText
	if err := xml.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "transcript payload malformed", err)
	}

	parts := make([]string, 0, len(payload.Texts))
	for _, t := range payload.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Value))
		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", domain.ErrTranscriptNotFound
	}

	return strings.Join(parts, " "), nil
}
