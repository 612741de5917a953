// Package corpus reads gold dependency structure from CoNLL-U files.
// See https://universaldependencies.org/format.html
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const (
	fieldSeparator = "\t"
	numFields      = 10
	punctTag       = "PUNCT"
)

// A Token is a single syntactic word row of a sentence.
type Token struct {
	ID     int
	Form   string
	Lemma  string
	UPOS   string
	XPOS   string
	Head   int
	DepRel string
}

type Sentence struct {
	Tokens []Token
}

func (s Sentence) Len() int { return len(s.Tokens) }

// PunctuationMask marks the tokens tagged PUNCT.
func (s Sentence) PunctuationMask() []bool {
	mask := make([]bool, len(s.Tokens))
	for i, t := range s.Tokens {
		mask[i] = t.UPOS == punctTag
	}
	return mask
}

func (s Sentence) Heads() []int {
	heads := make([]int, len(s.Tokens))
	for i, t := range s.Tokens {
		heads[i] = t.Head
	}
	return heads
}

func (s Sentence) Relations() []string {
	rels := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		rels[i] = t.DepRel
	}
	return rels
}

func parseField(v string) string {
	if v == "_" {
		return ""
	}
	return v
}

func parseRow(fields []string) (Token, error) {
	var t Token
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return t, fmt.Errorf("parse ID field (%s): %w", fields[0], err)
	}
	t.ID = id
	t.Form = fields[1]
	t.Lemma = parseField(fields[2])
	t.UPOS = parseField(fields[3])
	t.XPOS = parseField(fields[4])

	if h := fields[6]; h != "_" {
		head, err := strconv.Atoi(h)
		if err != nil {
			return t, fmt.Errorf("parse HEAD field (%s): %w", h, err)
		}
		t.Head = head
	}
	t.DepRel = parseField(fields[7])
	return t, nil
}

// Read parses sentences separated by blank lines. Comments, multiword token ranges (1-2) and
// empty nodes (1.1) are skipped. Sentence order is the corpus index.
func Read(r io.Reader) ([]Sentence, error) {
	var sentences []Sentence
	var current []Token

	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, Sentence{Tokens: current})
			current = nil
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.TrimSpace(text) == "":
			flush()
			continue
		case strings.HasPrefix(text, "#"):
			continue
		}

		fields := strings.Split(text, fieldSeparator)
		if len(fields) != numFields {
			return nil, fmt.Errorf("line %d: %d fields, want %d", line, len(fields), numFields)
		}
		if strings.ContainsAny(fields[0], "-.") {
			continue
		}

		tok, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if tok.ID != len(current)+1 {
			return nil, fmt.Errorf("line %d: token id %d out of order", line, tok.ID)
		}
		current = append(current, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return sentences, nil
}

func ReadFile(filename string) ([]Sentence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filename, err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r)
}

// PunctuationMasks returns the mask of every sentence, indexed by corpus position.
func PunctuationMasks(sentences []Sentence) [][]bool {
	masks := make([][]bool, len(sentences))
	for i, s := range sentences {
		masks[i] = s.PunctuationMask()
	}
	return masks
}
