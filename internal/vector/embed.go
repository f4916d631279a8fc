package vector

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	chromem "github.com/philippgille/chromem-go"
)

// DefaultDimensions is the vector size of HashEmbedding when none is set.
const DefaultDimensions = 512

// HashEmbedding returns a local bag-of-words embedding: each lowercased word
// is hashed into one of dims buckets and the counts are L2-normalized. It
// needs no provider, so question answering works with only the chat LLM
// configured.
func HashEmbedding(dims int) chromem.EmbeddingFunc {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return func(_ context.Context, text string) ([]float32, error) {
		v := make([]float32, dims)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			v[h.Sum32()%uint32(dims)]++
		}
		normalize(v)
		return v, nil
	}
}

// normalize scales v to unit length. A zero vector gets a single unit
// component so that similarity stays defined.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		v[0] = 1
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
