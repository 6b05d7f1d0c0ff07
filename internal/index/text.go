package index

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// maxVocabulary bounds the fitted vocabulary, keeping the top terms by
// total corpus frequency.
const maxVocabulary = 100

// stopWords are dropped during tokenization.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"with": {}, "without": {},
}

// Vectorizer is a fitted term-weighting (tf-idf) text transformer.
type Vectorizer struct {
	vocab map[string]int // term -> column
	idf   []float64      // per column
	terms []string       // column -> term, fit order
}

// fitVectorizer learns the vocabulary and inverse document frequencies
// from the corpus text blobs and returns the per-record weighted vectors.
func fitVectorizer(docs []string) (*Vectorizer, [][]float64) {
	totalFreq := make(map[string]int)
	docFreq := make(map[string]int)
	tokenized := make([][]string, len(docs))

	for i, doc := range docs {
		tokens := tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			totalFreq[t]++
			seen[t] = struct{}{}
		}
		for t := range seen {
			docFreq[t]++
		}
	}

	// Top terms by corpus frequency, ties broken alphabetically for a
	// reproducible vocabulary.
	terms := make([]string, 0, len(totalFreq))
	for t := range totalFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalFreq[terms[i]] != totalFreq[terms[j]] {
			return totalFreq[terms[i]] > totalFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxVocabulary {
		terms = terms[:maxVocabulary]
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		terms: terms,
	}
	n := float64(len(docs))
	for col, t := range terms {
		v.vocab[t] = col
		// Smoothed idf, so terms present in every document keep weight 1.
		v.idf[col] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	vectors := make([][]float64, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = v.weigh(tokens)
	}
	return v, vectors
}

// Transform converts free text into the fitted vector space. ok is false
// when no token survives in the vocabulary.
func (v *Vectorizer) Transform(text string) (vec []float64, ok bool) {
	w := v.weigh(tokenize(text))
	for _, x := range w {
		if x != 0 {
			return w, true
		}
	}
	return w, false
}

// VocabularySize returns the number of fitted terms.
func (v *Vectorizer) VocabularySize() int { return len(v.terms) }

// weigh builds an l2-normalized tf-idf vector from tokens.
func (v *Vectorizer) weigh(tokens []string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, t := range tokens {
		if col, ok := v.vocab[t]; ok {
			vec[col] += v.idf[col]
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// a zero vector.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	dot := floats.Dot(a, b)
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

// tokenize lower-cases, splits on non-alphanumerics, and drops stop words
// and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, skip := stopWords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}
