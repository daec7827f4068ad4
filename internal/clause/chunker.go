package clause

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts model tokens in a piece of text.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// wordCounter approximates tokens by whitespace-separated words. Used
// when the tiktoken encoding cannot be loaded.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// NewTokenCounter returns an exact counter for the given encoding, or the
// word-count approximation if the encoding is unavailable.
func NewTokenCounter(encoding string) TokenCounter {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return wordCounter{}
	}
	return &tiktokenCounter{enc: enc}
}

// Chunker splits text into chunks that stay within a token budget, so
// each chunk fits a single segmentation request.
type Chunker struct {
	counter TokenCounter
	budget  int
}

// NewChunker creates a chunker with the given budget (tokens per chunk).
func NewChunker(counter TokenCounter, budget int) *Chunker {
	if budget <= 0 {
		budget = 512
	}
	return &Chunker{counter: counter, budget: budget}
}

// Chunks accumulates words into a growing chunk; a word that would push
// the count over the budget closes the current chunk and starts the next
// one. A single word over the budget still becomes its own chunk.
func (c *Chunker) Chunks(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string

	for _, word := range words {
		candidate := append(current, word)
		if len(current) > 0 && c.counter.Count(strings.Join(candidate, " ")) > c.budget {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			continue
		}
		current = candidate
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
