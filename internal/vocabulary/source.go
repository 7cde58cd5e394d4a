package vocabulary

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words/english.txt
var englishWords string

var (
	// ErrUnsupportedLanguage is returned for languages without an embedded list.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrInvalidCount is returned when fewer than one word is requested.
	ErrInvalidCount = errors.New("word count must be positive")
)

// Source yields sample words, most frequent first.
type Source interface {
	Words(n int) ([]string, error)
}

// FrequencyList is a deduplicated word list ordered by frequency.
type FrequencyList struct {
	words []string
}

// ParseFrequencyList reads one word per line. Blank lines and # comments are skipped;
// words are trimmed, lower-cased and deduplicated keeping first occurrence.
func ParseFrequencyList(r io.Reader) (*FrequencyList, error) {
	seen := make(map[string]struct{})
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return &FrequencyList{words: words}, nil
}

// DefaultSource returns the embedded list for language.
func DefaultSource(language string) (*FrequencyList, error) {
	switch strings.ToLower(language) {
	case "english", "en":
		return ParseFrequencyList(strings.NewReader(englishWords))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
}

// LoadFile reads a frequency list from path.
func LoadFile(path string) (*FrequencyList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer f.Close()
	return ParseFrequencyList(f)
}

// Words returns the n most frequent words, or all of them if the list is shorter.
func (l *FrequencyList) Words(n int) ([]string, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	if n > len(l.words) {
		n = len(l.words)
	}
	out := make([]string, n)
	copy(out, l.words[:n])
	return out, nil
}

// Len reports how many words the list holds.
func (l *FrequencyList) Len() int { return len(l.words) }
