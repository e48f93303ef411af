package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalModel identifies the offline hashed bag-of-words embedder.
const LocalModel = "hashed-bow-v1"

// LocalDimension is the fixed vector length for the local embedder.
// Hashing into a fixed space means corpus and query vectors always share
// a dimension without a corpus-fitted vocabulary.
const LocalDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+`)

// LocalEmbedder is a deterministic offline embedder: lowercase letter
// tokens, stopwords removed, term counts hashed into a fixed-length
// vector, L2 normalized. It needs no network and no preparation phase,
// which makes it the default for local use and tests.
type LocalEmbedder struct {
	stopwords map[string]struct{}
}

// NewLocalEmbedder creates the offline embedder.
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{stopwords: defaultStopwords()}
}

// Dimension returns the fixed vector length.
func (e *LocalEmbedder) Dimension() int { return LocalDimension }

// Model returns the embedder identifier.
func (e *LocalEmbedder) Model() string { return LocalModel }

// Embed computes one vector per text. Identical input always yields
// identical output.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, LocalDimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	total := 0
	for _, tok := range tokens {
		if _, isStop := e.stopwords[tok]; isStop {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%LocalDimension]++
		total++
	}
	if total == 0 {
		return vec
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "it", "this", "that", "these", "those",
		"from", "what", "which", "who", "how", "do", "does", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
