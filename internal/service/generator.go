package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/openai"
)

// systemPrompt frames every generation request. The citation instruction is
// what makes source tracking work: the parser below only recognizes the
// bracketed numbers this asks for.
const systemPrompt = `You are a teaching assistant for a catalog of online courses. ` +
	`Answer the question using only the provided course material. ` +
	`Cite the material you rely on with bracketed numbers like [1] or [2]. ` +
	`If the material does not cover the question, say so plainly and cite nothing.`

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// Chatter defines the chat operation the generator depends on
type Chatter interface {
	Chat(ctx context.Context, messages []openai.Message) (string, error)
}

// AIGenerator turns a query, conversation history and retrieved chunks into
// one answer with the sources the model actually cited.
type AIGenerator struct {
	chat Chatter
}

func NewAIGenerator(chat Chatter) *AIGenerator {
	return &AIGenerator{chat: chat}
}

// Generate makes exactly one chat completion call, retrying once when the
// transport times out. The returned sources are derived from the citation
// markers in the answer; an answer that cites nothing has no sources.
func (g *AIGenerator) Generate(ctx context.Context, query string, history []domain.Turn, retrieved []domain.ScoredChunk) (string, []domain.Source, error) {
	messages := buildMessages(query, history, retrieved)

	answer, err := g.chat.Chat(ctx, messages)
	if err != nil && domain.IsTransportTimeout(err) {
		answer, err = g.chat.Chat(ctx, messages)
	}
	if err != nil {
		return "", nil, domain.GenerationError(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", nil, domain.GenerationError(openai.ErrEmptyResponse)
	}

	return answer, citedSources(answer, retrieved), nil
}

func buildMessages(query string, history []domain.Turn, retrieved []domain.ScoredChunk) []openai.Message {
	messages := make([]openai.Message, 0, 2*len(history)+2)
	messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: systemPrompt})

	for _, turn := range history {
		messages = append(messages,
			openai.Message{Role: openai.RoleUser, Content: turn.Query},
			openai.Message{Role: openai.RoleAssistant, Content: turn.Answer},
		)
	}

	var b strings.Builder
	if len(retrieved) > 0 {
		b.WriteString("Course material:\n\n")
		for i, sc := range retrieved {
			fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, chunkLabel(sc.Chunk), sc.Chunk.Content)
		}
	} else {
		b.WriteString("No course material matched this question.\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	return append(messages, openai.Message{Role: openai.RoleUser, Content: b.String()})
}

// chunkLabel renders the human-readable origin of a chunk, e.g.
// "Intro to Go - Lesson 2" or just the course title for preamble chunks.
func chunkLabel(c domain.CourseChunk) string {
	if c.LessonNumber == domain.NoLesson {
		return c.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", c.CourseTitle, c.LessonNumber)
}

// citedSources maps the answer's [n] markers back to the retrieved chunks,
// in first-citation order with duplicates collapsed. Markers pointing
// outside the retrieved set are ignored.
func citedSources(answer string, retrieved []domain.ScoredChunk) []domain.Source {
	matches := citationRe.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return []domain.Source{}
	}

	sources := make([]domain.Source, 0, len(matches))
	seen := make(map[int]bool)
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(retrieved) || seen[n] {
			continue
		}
		seen[n] = true

		sc := retrieved[n-1]
		link := sc.Chunk.LessonLink
		if link == "" {
			link = sc.CourseLink
		}
		sources = append(sources, domain.Source{
			Label: chunkLabel(sc.Chunk),
			Link:  link,
		})
	}

	return sources
}
