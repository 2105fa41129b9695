package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the model used for both embedding modes
	// unless configured otherwise.
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the dimensionality requested from the
	// embedding model. Document and query vectors share this space.
	DefaultEmbeddingDimensions = 768
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding response does not
	// match the configured dimensionality
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for raw embedding calls
type EmbeddingAPI interface {
	CreateEmbedding(ctx context.Context, text string, model openai.EmbeddingModel, dimensions int) ([]float32, error)
}

// Client generates document and query embeddings in a shared coordinate
// space. The two modes may be served by different model configurations,
// but both must emit vectors of the configured dimensionality.
type Client struct {
	api           EmbeddingAPI
	documentModel openai.EmbeddingModel
	queryModel    openai.EmbeddingModel
	dimensions    int
}

type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey)}
}

// CreateEmbedding calls the OpenAI API to create a single embedding
func (a *OpenAIAdapter) CreateEmbedding(ctx context.Context, text string, model openai.EmbeddingModel, dimensions int) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      model,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	APIKey              string
	DocumentModel       string
	QueryModel          string
	EmbeddingDimensions int
}

// NewClient creates a new embedding client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new embedding client with explicit
// configuration.
func NewClientWithConfig(cfg Config) *Client {
	documentModel := openai.EmbeddingModel(cfg.DocumentModel)
	if documentModel == "" {
		documentModel = DefaultEmbeddingModel
	}
	queryModel := openai.EmbeddingModel(cfg.QueryModel)
	if queryModel == "" {
		queryModel = documentModel
	}
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:           NewOpenAIAdapter(cfg.APIKey),
		documentModel: documentModel,
		queryModel:    queryModel,
		dimensions:    dimensions,
	}
}

// NewClientFromEnv creates a new client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Dimensions returns the configured embedding dimensionality.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// EmbedDocument generates an embedding for lesson material being indexed.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, c.documentModel)
}

// EmbedQuery generates an embedding for a search query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, c.queryModel)
}

func (c *Client) embed(ctx context.Context, text string, model openai.EmbeddingModel) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbedding(ctx, text, model, c.dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), c.dimensions)
	}

	return embedding, nil
}
