package clip

import (
	"regexp"
	"strings"
)

// Special token ids used by the CLIP text encoder.
const (
	StartToken = 49406
	EndToken   = 49407
	PadToken   = 0

	// DefaultMaxTextLength is the context length of the CLIP text encoder.
	DefaultMaxTextLength = 77
)

// tokenPattern matches the same lexical classes as the CLIP reference tokenizer:
// special markers, common English contractions, letter runs, single digits and
// punctuation runs.
var tokenPattern = regexp.MustCompile(`<\|startoftext\|>|<\|endoftext\|>|'s|'t|'re|'ve|'m|'ll|'d|[\p{L}]+|\p{N}|[^\s\p{L}\p{N}]+`)

// Tokenizer converts query text into the bounded integer sequence the text
// encoder expects. The vocabulary here is a reduced word-level set; the full
// BPE vocabulary can be loaded at startup when the model files ship with one.
type Tokenizer struct {
	encoder map[string]int64
}

func NewTokenizer() *Tokenizer {
	t := &Tokenizer{encoder: make(map[string]int64)}
	t.initVocabulary()
	return t
}

// Encode tokenizes text and returns token ids padded to maxLength.
// The sequence always starts with StartToken and ends with EndToken; when the
// text is longer than the window, tokens are truncated so EndToken still fits
// in the final slot.
func (t *Tokenizer) Encode(text string, maxLength int) []int64 {
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}

	ids := make([]int64, 0, maxLength)
	ids = append(ids, StartToken)

	text = strings.ToLower(strings.TrimSpace(text))
	if text != "" {
		for _, token := range tokenPattern.FindAllString(text, -1) {
			if len(ids) >= maxLength-1 {
				break // leave room for EndToken
			}
			id, ok := t.encoder[token]
			if !ok {
				id = t.encoder["unk"]
			}
			ids = append(ids, id)
		}
	}
	ids = append(ids, EndToken)

	padded := make([]int64, maxLength)
	for i := range padded {
		padded[i] = PadToken
	}
	copy(padded, ids)
	return padded
}

// VocabSize returns the number of known tokens.
func (t *Tokenizer) VocabSize() int {
	return len(t.encoder)
}

func (t *Tokenizer) initVocabulary() {
	t.encoder["<|startoftext|>"] = StartToken
	t.encoder["<|endoftext|>"] = EndToken
	t.encoder["unk"] = 0

	commonWords := []string{
		"a", "the", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "be",
		"been", "being", "have", "has", "had", "do", "does", "did", "will",
		"would", "could", "should", "may", "might", "must", "can",
		"dog", "cat", "animal", "person", "people", "man", "woman", "child",
		"house", "car", "tree", "flower", "sky", "sun", "moon", "star",
		"mountain", "ocean", "river", "lake", "forest", "desert", "beach",
		"red", "blue", "green", "yellow", "black", "white", "orange", "purple",
		"big", "small", "large", "tiny", "tall", "short", "long", "wide",
		"beautiful", "pretty", "ugly", "nice", "good", "bad", "happy", "sad",
		"photo", "picture", "image", "sunset", "sunrise", "landscape",
		"portrait", "nature", "urban", "city", "countryside", "indoor", "outdoor",
	}

	// Start past the special-token range to avoid collisions.
	id := int64(1000)
	for _, w := range commonWords {
		if _, exists := t.encoder[w]; !exists {
			t.encoder[w] = id
			id++
		}
	}

	for c := 'a'; c <= 'z'; c++ {
		ch := string(c)
		if _, exists := t.encoder[ch]; !exists {
			t.encoder[ch] = id
			id++
		}
	}
	for c := '0'; c <= '9'; c++ {
		t.encoder[string(c)] = id
		id++
	}

	punctuation := []string{" ", ".", ",", "!", "?", "-", "'", "\"", "(", ")", "[", "]"}
	for _, p := range punctuation {
		t.encoder[p] = id
		id++
	}
}
