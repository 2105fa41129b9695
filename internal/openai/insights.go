package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studyhall-ai/studyhall/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const insightPrompt = `You are given the verbatim transcript of an audio lecture.
1. Extract KEY TAKEAWAYS (list of 3-5 main points).
2. Create AUTO-CHAPTERS (list of objects with 'timestamp' and 'title').

Return the result in the following JSON format ONLY:
{
    "key_takeaways": ["Point 1", "Point 2"],
    "chapters": [
        {"timestamp": "00:00", "title": "Introduction"},
        {"timestamp": "05:30", "title": "Topic A"}
    ]
}`

// InsightAPI defines the raw provider calls used for insight generation
type InsightAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// InsightsClient turns an extracted audio track into structured lesson
// insights: a verbatim transcript plus generated takeaways and chapters.
type InsightsClient struct {
	api       InsightAPI
	chatModel string
}

// NewInsightsClient creates an InsightsClient backed by the OpenAI API.
func NewInsightsClient(apiKey, chatModel string) *InsightsClient {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &InsightsClient{
		api:       openai.NewClient(apiKey),
		chatModel: chatModel,
	}
}

// GenerateInsights transcribes the audio file and generates takeaways and
// chapters from the transcript. Any provider failure surfaces as an error;
// the ingestion pipeline decides whether to degrade.
func (c *InsightsClient) GenerateInsights(ctx context.Context, audioPath string) (*domain.VideoInsights, error) {
	transcription, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}

	transcript := strings.TrimSpace(transcription.Text)
	if transcript == "" {
		return nil, fmt.Errorf("transcription returned empty text")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	payload := StripCodeFence(resp.Choices[0].Message.Content)

	var generated struct {
		KeyTakeaways []string         `json:"key_takeaways"`
		Chapters     []domain.Chapter `json:"chapters"`
	}
	if err := json.Unmarshal([]byte(payload), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse insight response: %w", err)
	}

	insights := &domain.VideoInsights{
		Transcript:   transcript,
		KeyTakeaways: generated.KeyTakeaways,
		Chapters:     generated.Chapters,
	}
	if insights.KeyTakeaways == nil {
		insights.KeyTakeaways = []string{}
	}
	if insights.Chapters == nil {
		insights.Chapters = []domain.Chapter{}
	}

	return insights, nil
}

// StripCodeFence removes a surrounding markdown code fence from a model
// response, since JSON payloads frequently arrive wrapped in ```json fences.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
