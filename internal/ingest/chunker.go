package ingest

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how lesson text is split into retrieval units.
type ChunkConfig struct {
	// Size is the target chunk length in runes.
	Size int
	// Overlap is the number of trailing runes carried into the next chunk
	// to preserve cross-chunk context.
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    800,
		Overlap: 100,
	}
}

// splitSentences splits text on sentence boundaries. A boundary is a '.',
// '!' or '?' followed by whitespace. Whitespace runs inside a sentence are
// collapsed so identical input always yields identical output.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			// Collapse whitespace runs to a single space.
			if current.Len() > 0 {
				current.WriteRune(' ')
			}
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
			continue
		}

		current.WriteRune(r)

		if (r == '.' || r == '!' || r == '?') &&
			(i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}

	tail := strings.TrimSpace(current.String())
	if tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// chunkText splits text into chunks of roughly cfg.Size runes, cutting only
// on sentence boundaries, with cfg.Overlap runes of trailing sentences
// repeated at the start of the next chunk. Deterministic: identical input
// yields an identical chunk sequence.
func chunkText(text string, cfg ChunkConfig) []string {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		length := 0
		end := start
		for end < len(sentences) {
			sentenceLen := len([]rune(sentences[end]))
			if end > start {
				sentenceLen++ // joining space
			}
			if length+sentenceLen > cfg.Size && end > start {
				break
			}
			length += sentenceLen
			end++
		}

		chunks = append(chunks, strings.Join(sentences[start:end], " "))

		if end >= len(sentences) {
			break
		}

		// Walk back from the cut point until the overlap budget is spent,
		// but always advance by at least one sentence.
		next := end
		carried := 0
		for next > start+1 && carried < cfg.Overlap {
			carried += len([]rune(sentences[next-1])) + 1
			if carried > cfg.Overlap {
				break
			}
			next--
		}
		start = next
	}

	return chunks
}
