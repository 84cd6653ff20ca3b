package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Special tokens of BERT-style vocabularies.
const (
	TokenPad = "[PAD]"
	TokenUnk = "[UNK]"
	TokenCLS = "[CLS]"
	TokenSEP = "[SEP]"
)

// Ids used when the vocabulary lacks the special tokens (bert-base-uncased layout).
const (
	fallbackPadID int32 = 0
	fallbackUnkID int32 = 100
	fallbackCLSID int32 = 101
	fallbackSEPID int32 = 102
)

// Tokenizer is a word-level tokenizer over a BERT vocabulary. It is read-only
// after construction and safe for concurrent use.
type Tokenizer struct {
	vocab    map[string]int32
	padID    int32
	unkID    int32
	clsID    int32
	sepID    int32
	degraded bool
}

// NewTokenizer builds a tokenizer where a token's id is its index in vocab.
// An empty vocabulary yields a degraded tokenizer that maps every word to [UNK].
func NewTokenizer(vocab []string) *Tokenizer {
	table := make(map[string]int32, len(vocab))
	for i, token := range vocab {
		if _, exists := table[token]; !exists {
			table[token] = int32(i)
		}
	}
	t := &Tokenizer{vocab: table, degraded: len(table) == 0}
	t.padID = t.special(TokenPad, fallbackPadID)
	t.unkID = t.special(TokenUnk, fallbackUnkID)
	t.clsID = t.special(TokenCLS, fallbackCLSID)
	t.sepID = t.special(TokenSEP, fallbackSEPID)
	return t
}

// LoadTokenizer reads a newline-delimited vocabulary file. A missing or
// unreadable file yields a degraded tokenizer alongside the error.
func LoadTokenizer(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return NewTokenizer(nil), fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	vocab, err := ReadVocabulary(f)
	if err != nil {
		return NewTokenizer(nil), err
	}
	return NewTokenizer(vocab), nil
}

// ReadVocabulary returns one token per line, preserving line order.
func ReadVocabulary(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)
	var vocab []string
	for scanner.Scan() {
		vocab = append(vocab, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return vocab, nil
}

// Degraded reports whether the vocabulary was unavailable.
func (t *Tokenizer) Degraded() bool {
	return t.degraded
}

// VocabSize is the number of distinct tokens loaded.
func (t *Tokenizer) VocabSize() int {
	return len(t.vocab)
}

// Encode converts text to fixed-length id and attention mask arrays:
// [CLS] words... [SEP] [PAD]...
func (t *Tokenizer) Encode(text string, maxLength int) ([]int32, []int32) {
	if maxLength <= 0 {
		return []int32{}, []int32{}
	}
	ids := make([]int32, maxLength)
	mask := make([]int32, maxLength)

	tokens := make([]int32, 0, maxLength)
	tokens = append(tokens, t.clsID)
	words := strings.Fields(strings.ToLower(text))
	if budget := maxLength - 2; len(words) > budget {
		words = words[:max(budget, 0)]
	}
	for _, word := range words {
		tokens = append(tokens, t.lookup(word))
	}
	tokens = append(tokens, t.sepID)
	if len(tokens) > maxLength {
		tokens = tokens[:maxLength]
	}

	for i := range ids {
		if i < len(tokens) {
			ids[i] = tokens[i]
			mask[i] = 1
			continue
		}
		ids[i] = t.padID
	}
	return ids, mask
}

func (t *Tokenizer) lookup(word string) int32 {
	if id, ok := t.vocab[word]; ok {
		return id
	}
	return t.unkID
}

func (t *Tokenizer) special(token string, fallback int32) int32 {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return fallback
}
