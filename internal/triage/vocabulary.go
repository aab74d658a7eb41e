package triage

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary holds the keyword sets used by the classifier and validator.
type Vocabulary struct {
	Interrogative   []string         `yaml:"interrogative"`
	Technical       []string         `yaml:"technical"`
	Social          []string         `yaml:"social"`
	Negative        []string         `yaml:"negative"`
	Sentiment       SentimentLexicon `yaml:"sentiment"`
	PhraseTechnical []string         `yaml:"phrase_technical"`
	VaguePhrases    []string         `yaml:"vague_phrases"`
}

// SentimentLexicon holds the terms used to tag lexical sentiment.
type SentimentLexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// DefaultVocabulary returns the embedded Portuguese vocabulary.
func DefaultVocabulary() Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary file.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and validates a YAML vocabulary.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

func (v Vocabulary) validate() error {
	sets := []struct {
		name  string
		terms []string
	}{
		{"interrogative", v.Interrogative},
		{"technical", v.Technical},
		{"social", v.Social},
		{"negative", v.Negative},
		{"sentiment.positive", v.Sentiment.Positive},
		{"sentiment.negative", v.Sentiment.Negative},
	}

	for _, s := range sets {
		if len(compileSet(s.terms)) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyVocabulary, s.name)
		}
	}
	return nil
}

// Lexicon is a compiled Vocabulary with every term normalized.
// It is immutable and safe for concurrent use.
type Lexicon struct {
	interrogative     keywordSet
	technical         keywordSet
	social            keywordSet
	negative          keywordSet
	positiveSentiment keywordSet
	negativeSentiment keywordSet
	phraseTechnical   keywordSet
	vague             map[string]struct{}
}

// Compile validates v and normalizes its terms into a Lexicon.
func (v Vocabulary) Compile() (*Lexicon, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	phraseTechnical := v.PhraseTechnical
	if len(phraseTechnical) == 0 {
		phraseTechnical = v.Technical
	}

	vague := make(map[string]struct{}, len(v.VaguePhrases))
	for _, p := range v.VaguePhrases {
		if n := strings.Join(Normalize(p).Words, " "); n != "" {
			vague[n] = struct{}{}
		}
	}

	return &Lexicon{
		interrogative:     compileSet(v.Interrogative),
		technical:         compileSet(v.Technical),
		social:            compileSet(v.Social),
		negative:          compileSet(v.Negative),
		positiveSentiment: compileSet(v.Sentiment.Positive),
		negativeSentiment: compileSet(v.Sentiment.Negative),
		phraseTechnical:   compileSet(phraseTechnical),
		vague:             vague,
	}, nil
}

// IsVaguePhrase reports whether the words form one of the vague phrases.
func (l *Lexicon) IsVaguePhrase(words []string) bool {
	_, ok := l.vague[strings.Join(words, " ")]
	return ok
}

// keywordSet is a list of normalized terms, each split into words.
type keywordSet [][]string

func compileSet(terms []string) keywordSet {
	seen := make(map[string]struct{}, len(terms))
	set := make(keywordSet, 0, len(terms))

	for _, t := range terms {
		words := Normalize(t).Words
		if len(words) == 0 {
			continue
		}
		key := strings.Join(words, " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, words)
	}

	return set
}

// count returns the total number of occurrences of every term in words.
// Occurrences of one term do not overlap; different terms may share words,
// so "nao entendi" and "entendi" both count in "nao entendi".
func (s keywordSet) count(words []string) int {
	n := 0
	for _, term := range s {
		n += occurrences(words, term)
	}
	return n
}

// matches reports whether any term occurs in words.
func (s keywordSet) matches(words []string) bool {
	for _, term := range s {
		if containsSequence(words, term) {
			return true
		}
	}
	return false
}

func containsSequence(words, term []string) bool {
	return indexSequence(words, term) >= 0
}

func occurrences(words, term []string) int {
	n := 0
	for {
		i := indexSequence(words, term)
		if i < 0 {
			return n
		}
		n++
		words = words[i+len(term):]
	}
}

// indexSequence returns the position of the first occurrence of term in
// words, or -1.
func indexSequence(words, term []string) int {
	if len(term) == 0 || len(term) > len(words) {
		return -1
	}

outer:
	for i := 0; i+len(term) <= len(words); i++ {
		for j, w := range term {
			if words[i+j] != w {
				continue outer
			}
		}
		return i
	}
	return -1
}
