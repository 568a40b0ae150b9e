package openai

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/studyloop/studyloop/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is the OpenAI model used for answer generation
	DefaultChatModel = openai.GPT4o
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 1536")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyResponse is returned when the model returns no usable answer
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Message is one turn of a chat conversation sent to the model.
type Message struct {
	Role    string
	Content string
}

// Chat message roles.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// API defines the upstream operations the client depends on
type API interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	CreateChatCompletion(ctx context.Context, model string, messages []Message) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api          API
	dimensions   int
	chatModel    string
	embedTimeout time.Duration
	chatTimeout  time.Duration
}

type OpenAIAdapter struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, embedModel openai.EmbeddingModel) *OpenAIAdapter {
	if embedModel == "" {
		embedModel = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		embedModel: embedModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings for a batch of texts
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embedModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// CreateChatCompletion calls the OpenAI chat completion API
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, model string, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	ChatModel           string

	// Per-call deadlines; zero means the caller's context governs.
	EmbedTimeout time.Duration
	ChatTimeout  time.Duration
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	return &Client{
		api:          NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel),
		dimensions:   dimensions,
		chatModel:    chatModel,
		embedTimeout: cfg.EmbedTimeout,
		chatTimeout:  cfg.ChatTimeout,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbeddings generates embeddings for a batch of texts, preserving order
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	if c.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.embedTimeout)
		defer cancel()
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, classifyTransport(err)
	}

	for _, e := range embeddings {
		if len(e) != c.dimensions {
			return nil, ErrWrongDimensions
		}
	}

	return embeddings, nil
}

// GenerateEmbedding generates an embedding for a single text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	embeddings, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Chat sends the conversation to the model and returns its answer
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.chatTimeout)
		defer cancel()
	}

	answer, err := c.api.CreateChatCompletion(ctx, c.chatModel, messages)
	if err != nil {
		return "", classifyTransport(err)
	}
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}

// classifyTransport tags timeouts and transient upstream failures so callers
// can apply their single-retry budget; everything else passes through.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TransportTimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.TransportTimeoutError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return domain.TransportTimeoutError(err)
		}
	}

	return err
}
