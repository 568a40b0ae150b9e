package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/openai"
)

// MockChatter mocks the chat client
type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, messages []openai.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func retrievedChunks() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{
			Chunk: domain.CourseChunk{
				CourseTitle:  "Intro to X",
				LessonNumber: 2,
				LessonLink:   "https://example.com/x/lesson2",
				Content:      "Lesson two content.",
			},
			Score: 0.9,
		},
		{
			Chunk: domain.CourseChunk{
				CourseTitle:  "Intro to X",
				LessonNumber: domain.NoLesson,
				Content:      "Course overview content.",
			},
			Score:      0.8,
			CourseLink: "https://example.com/x",
		},
	}
}

func TestGenerate_BuildsPrompt(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	history := []domain.Turn{
		{Query: "earlier question", Answer: "earlier answer"},
	}

	var captured []openai.Message
	mockChat.On("Chat", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]openai.Message)
		}).
		Return("An answer [1].", nil)

	_, _, err := g.Generate(context.Background(), "what is in lesson two?", history, retrievedChunks())
	require.NoError(t, err)

	require.Len(t, captured, 4)
	assert.Equal(t, openai.RoleSystem, captured[0].Role)
	assert.Equal(t, openai.RoleUser, captured[1].Role)
	assert.Equal(t, "earlier question", captured[1].Content)
	assert.Equal(t, openai.RoleAssistant, captured[2].Role)
	assert.Equal(t, "earlier answer", captured[2].Content)

	final := captured[3]
	assert.Equal(t, openai.RoleUser, final.Role)
	assert.Contains(t, final.Content, "[1] Intro to X - Lesson 2")
	assert.Contains(t, final.Content, "Lesson two content.")
	assert.Contains(t, final.Content, "[2] Intro to X")
	assert.Contains(t, final.Content, "Question: what is in lesson two?")
}

func TestGenerate_NoContext(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	var captured []openai.Message
	mockChat.On("Chat", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]openai.Message)
		}).
		Return("I don't have material on that.", nil)

	answer, sources, err := g.Generate(context.Background(), "anything?", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "I don't have material on that.", answer)
	assert.Empty(t, sources)
	require.Len(t, captured, 2)
	assert.Contains(t, captured[1].Content, "No course material matched")
}

func TestGenerate_CitationParsing(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	// Cites [2] first, repeats it, and includes an out-of-range [9].
	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("See the overview [2] and the lesson [1], again the overview [2] and nonsense [9].", nil)

	_, sources, err := g.Generate(context.Background(), "q", nil, retrievedChunks())
	require.NoError(t, err)

	require.Len(t, sources, 2)
	assert.Equal(t, "Intro to X", sources[0].Label)
	assert.Equal(t, "https://example.com/x", sources[0].Link)
	assert.Equal(t, "Intro to X - Lesson 2", sources[1].Label)
	assert.Equal(t, "https://example.com/x/lesson2", sources[1].Link)
}

func TestGenerate_NoCitations(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("The material does not cover this.", nil)

	_, sources, err := g.Generate(context.Background(), "q", nil, retrievedChunks())
	require.NoError(t, err)

	assert.Empty(t, sources)
}

func TestGenerate_RetriesOnceOnTimeout(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("", domain.TransportTimeoutError(errors.New("timeout"))).Once()
	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("Recovered answer [1].", nil).Once()

	answer, sources, err := g.Generate(context.Background(), "q", nil, retrievedChunks())
	require.NoError(t, err)

	assert.Equal(t, "Recovered answer [1].", answer)
	require.Len(t, sources, 1)
	mockChat.AssertNumberOfCalls(t, "Chat", 2)
}

func TestGenerate_PersistentTimeoutBecomesGenerationError(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("", domain.TransportTimeoutError(errors.New("timeout")))

	_, _, err := g.Generate(context.Background(), "q", nil, retrievedChunks())

	assert.True(t, domain.IsGenerationError(err))
	mockChat.AssertNumberOfCalls(t, "Chat", 2)
}

func TestGenerate_NonTimeoutFailureNotRetried(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	mockChat.On("Chat", mock.Anything, mock.Anything).
		Return("", errors.New("bad request"))

	_, _, err := g.Generate(context.Background(), "q", nil, nil)

	assert.True(t, domain.IsGenerationError(err))
	mockChat.AssertNumberOfCalls(t, "Chat", 1)
}

func TestGenerate_BlankAnswer(t *testing.T) {
	mockChat := new(MockChatter)
	g := NewAIGenerator(mockChat)

	mockChat.On("Chat", mock.Anything, mock.Anything).Return("   \n", nil)

	_, _, err := g.Generate(context.Background(), "q", nil, nil)

	assert.True(t, domain.IsGenerationError(err))
}
