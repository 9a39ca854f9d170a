package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_vocabulary.yaml
var defaultVocabularyYAML []byte

// Term is one recognised label plus its known misspellings.
type Term struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Variants  []string `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// Spellings returns the canonical form followed by every variant.
func (t Term) Spellings() []string {
	out := make([]string, 0, len(t.Variants)+1)
	out = append(out, t.Canonical)
	return append(out, t.Variants...)
}

// Vocabulary is the closed-world set of branch names, role labels and article
// titles the extractor recognises, with their normalization targets.
type Vocabulary struct {
	Branches        []Term   `yaml:"branches" json:"branches"`
	Roles           []string `yaml:"roles" json:"roles"`
	Articles        []Term   `yaml:"articles" json:"articles"`
	OptionStopwords []string `yaml:"option_stopwords" json:"optionStopwords"`

	branchIndex  map[string]string
	articleIndex map[string]string
	roleIndex    map[string]string
	stopwords    map[string]bool
}

// DefaultVocabulary returns the embedded vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := LoadVocabulary(bytes.NewReader(defaultVocabularyYAML))
	if err != nil {
		// The embedded file is part of the build.
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// LoadVocabularyFile reads a vocabulary from a YAML file.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary %s: %w", path, err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// LoadVocabulary decodes, validates and indexes a YAML vocabulary.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var v Vocabulary
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.buildIndex()
	return &v, nil
}

// Validate rejects empty labels and variants claimed by two canonicals.
func (v *Vocabulary) Validate() error {
	var errs []string

	check := func(kind string, terms []Term) {
		owner := make(map[string]string)
		for i, t := range terms {
			if strings.TrimSpace(t.Canonical) == "" {
				errs = append(errs, fmt.Sprintf("%s[%d]: empty canonical", kind, i))
				continue
			}
			for _, s := range t.Spellings() {
				key := FoldKey(s)
				if key == "" {
					errs = append(errs, fmt.Sprintf("%s %q: empty variant", kind, t.Canonical))
					continue
				}
				if prev, ok := owner[key]; ok && prev != t.Canonical {
					errs = append(errs, fmt.Sprintf("%s %q: spelling %q already belongs to %q", kind, t.Canonical, s, prev))
					continue
				}
				owner[key] = t.Canonical
			}
		}
	}
	check("branch", v.Branches)
	check("article", v.Articles)

	for i, r := range v.Roles {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, fmt.Sprintf("role[%d]: empty label", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid vocabulary: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (v *Vocabulary) buildIndex() {
	v.branchIndex = indexTerms(v.Branches)
	v.articleIndex = indexTerms(v.Articles)
	v.roleIndex = make(map[string]string, len(v.Roles))
	for _, r := range v.Roles {
		v.roleIndex[FoldKey(r)] = r
	}
	v.stopwords = make(map[string]bool, len(v.OptionStopwords))
	for _, s := range v.OptionStopwords {
		v.stopwords[FoldKey(s)] = true
	}
}

func indexTerms(terms []Term) map[string]string {
	idx := make(map[string]string)
	for _, t := range terms {
		for _, s := range t.Spellings() {
			idx[FoldKey(s)] = t.Canonical
		}
	}
	return idx
}

// ensureIndex lets a Vocabulary built as a struct literal be used directly.
func (v *Vocabulary) ensureIndex() {
	if v.branchIndex == nil {
		v.buildIndex()
	}
}

// CanonicalBranch maps any known spelling of a branch to its canonical name.
func (v *Vocabulary) CanonicalBranch(name string) (string, bool) {
	v.ensureIndex()
	c, ok := v.branchIndex[FoldKey(name)]
	return c, ok
}

// CanonicalArticle maps any known spelling of an article title to its
// canonical title.
func (v *Vocabulary) CanonicalArticle(title string) (string, bool) {
	v.ensureIndex()
	c, ok := v.articleIndex[FoldKey(title)]
	return c, ok
}

// CanonicalRole maps a role label, compared case-insensitively, to its
// vocabulary spelling.
func (v *Vocabulary) CanonicalRole(label string) (string, bool) {
	v.ensureIndex()
	c, ok := v.roleIndex[FoldKey(label)]
	return c, ok
}

// IsStopword reports whether an option label is known not to be a username.
func (v *Vocabulary) IsStopword(label string) bool {
	v.ensureIndex()
	return v.stopwords[FoldKey(label)]
}

// IsKnownLabel reports whether s is a branch, role or article spelling, or a
// stopword.
func (v *Vocabulary) IsKnownLabel(s string) bool {
	if _, ok := v.CanonicalBranch(s); ok {
		return true
	}
	if _, ok := v.CanonicalRole(s); ok {
		return true
	}
	if _, ok := v.CanonicalArticle(s); ok {
		return true
	}
	return v.IsStopword(s)
}

// BranchNames returns the canonical branch names in vocabulary order.
func (v *Vocabulary) BranchNames() []string {
	out := make([]string, 0, len(v.Branches))
	for _, t := range v.Branches {
		out = append(out, t.Canonical)
	}
	return out
}
