// Package extract recovers typed record candidates from accessibility-tree
// snapshots of the legacy intranet. The snapshots have no grammar beyond
// "role: <element>" and "name: <label>" lines, so every extractor here is a
// positional or lexical heuristic that prefers partial matches to failure.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"legacymig/pkg/schema"
)

// DefaultOptionScanMaxBytes is the document size above which the option-list
// username scans are skipped.
const DefaultOptionScanMaxBytes = 500000

// Username bounds applied to option-list candidates.
const (
	minUsernameLen = 2
	maxUsernameLen = 49
)

// Options tunes the extractor heuristics.
type Options struct {
	// OptionScanMaxBytes disables the option-list username scans for larger
	// documents. Zero or negative means no limit.
	OptionScanMaxBytes int
	// BareOptionUsernames enables the scan for option labels that are a bare
	// username without a full name.
	BareOptionUsernames bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{OptionScanMaxBytes: DefaultOptionScanMaxBytes}
}

var (
	// <full name> (<username>) | Last day: YYYY-MM-DD
	departureRe = regexp.MustCompile(`(?i)name:\s*["']?([^|()\n"]+?)\s*\(([^()\n]+)\)\s*\|\s*Last\s+day:\s*(\d{4}-\d{2}-\d{2})`)

	// role: option
	// name: <full name> (<username>)<rest of line>
	optionUserRe = regexp.MustCompile(`(?m)role:\s*option\s*\n\s*name:\s*["']?([^()\n"]*?)\s*\(([^()\n]+)\)([^\n]*)$`)

	// role: option
	// name: <username>
	bareOptionRe = regexp.MustCompile(`(?m)role:\s*option\s*\n\s*name:\s*["']?([A-Za-z0-9_][A-Za-z0-9_ \t]*[A-Za-z0-9_])["']?[ \t]*$`)

	lastDayTailRe = regexp.MustCompile(`(?i)^\s*\|\s*Last\s+day`)

	rowRe        = regexp.MustCompile(`role:\s*row\b`)
	quotedNameRe = regexp.MustCompile(`name:\s*(?:"([^"]+)"|'([^']+)')`)
	columnGapRe  = regexp.MustCompile(` {2,}`)
)

// minRequestFields is the smallest split of a row label accepted as a request.
const minRequestFields = 4

type labelPattern struct {
	canonical string
	re        *regexp.Regexp
}

// Extractor scans snapshot documents against a closed vocabulary.
type Extractor struct {
	vocab    *schema.Vocabulary
	opts     Options
	roleRe   *regexp.Regexp
	articles []labelPattern
}

// New compiles the vocabulary-driven patterns.
func New(vocab *schema.Vocabulary, opts Options) (*Extractor, error) {
	if vocab == nil {
		vocab = schema.DefaultVocabulary()
	}
	if err := vocab.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{vocab: vocab, opts: opts}

	if len(vocab.Roles) > 0 {
		e.roleRe = regexp.MustCompile(`(?im)role:\s*option\s*\n\s*name:\s*["']?(` + alternation(vocab.Roles) + `)\b`)
	}

	for _, t := range vocab.Articles {
		e.articles = append(e.articles, labelPattern{
			canonical: t.Canonical,
			re:        regexp.MustCompile(`(?i)name:\s*["']?(?:` + alternation(t.Spellings()) + `)` + wordBoundary(t.Spellings())),
		})
	}

	return e, nil
}

// Extract runs every extractor over one document.
func (e *Extractor) Extract(doc string) *schema.Candidates {
	c := schema.NewCandidates()
	c.Users = append(c.Users, e.Users(doc)...)
	c.Branches = append(c.Branches, e.Branches(doc)...)
	c.Roles = append(c.Roles, e.Roles(doc)...)
	c.Requests = append(c.Requests, e.Requests(doc)...)
	c.Articles = append(c.Articles, e.Articles(doc)...)
	return c
}

// optionScanAllowed reports whether the document is small enough for the
// option-list username scans.
func (e *Extractor) optionScanAllowed(doc string) bool {
	return e.opts.OptionScanMaxBytes <= 0 || len(doc) <= e.opts.OptionScanMaxBytes
}

// Users finds user candidates in three passes:
//  1. Departure entries "<name> (<username>) | Last day: <date>"
//  2. Option entries "<name> (<username>)" (size gated)
//  3. Bare option usernames (size gated, opt-in)
//
// A username found by an earlier pass is never replaced by a later one.
func (e *Extractor) Users(doc string) []schema.UserCandidate {
	users := make([]schema.UserCandidate, 0)
	seen := make(map[string]bool)

	add := func(u schema.UserCandidate) {
		if u.Username == "" || seen[u.Username] {
			return
		}
		seen[u.Username] = true
		users = append(users, u)
	}

	for _, m := range departureRe.FindAllStringSubmatch(doc, -1) {
		add(schema.UserCandidate{
			Username: strings.TrimSpace(m[2]),
			FullName: optional(m[1]),
			LastDay:  optional(m[3]),
		})
	}

	if !e.optionScanAllowed(doc) {
		return users
	}

	for _, m := range optionUserRe.FindAllStringSubmatch(doc, -1) {
		if lastDayTailRe.MatchString(m[3]) {
			continue
		}
		username := strings.TrimSpace(m[2])
		if !validOptionUsername(username) {
			continue
		}
		add(schema.UserCandidate{
			Username: username,
			FullName: optional(m[1]),
		})
	}

	if e.opts.BareOptionUsernames {
		for _, m := range bareOptionRe.FindAllStringSubmatch(doc, -1) {
			username := strings.TrimSpace(m[1])
			if !validOptionUsername(username) || e.vocab.IsKnownLabel(username) {
				continue
			}
			add(schema.UserCandidate{Username: username})
		}
	}

	return users
}

// validOptionUsername filters option labels that are not usernames.
func validOptionUsername(u string) bool {
	n := utf8.RuneCountInString(u)
	if n < minUsernameLen || n > maxUsernameLen {
		return false
	}
	if u == "Select User" {
		return false
	}
	if strings.Contains(u, "ref:") || strings.HasPrefix(u, "ref-") {
		return false
	}
	return true
}

// Branches reports every vocabulary branch whose canonical or misspelled form
// occurs in the document, as canonical names in vocabulary order.
func (e *Extractor) Branches(doc string) []string {
	branches := make([]string, 0)
	for _, t := range e.vocab.Branches {
		for _, s := range t.Spellings() {
			if strings.Contains(doc, s) {
				branches = append(branches, t.Canonical)
				break
			}
		}
	}
	return branches
}

// Roles reports role labels offered as options, in first-seen order. The
// vocabulary is intentionally incomplete: the old system has no roles page.
func (e *Extractor) Roles(doc string) []string {
	roles := make([]string, 0)
	if e.roleRe == nil {
		return roles
	}
	seen := make(map[string]bool)
	for _, m := range e.roleRe.FindAllStringSubmatch(doc, -1) {
		role, ok := e.vocab.CanonicalRole(m[1])
		if !ok || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles
}

// Requests reads request rows from "role: row" elements. The row label is a
// quoted string whose columns are separated by runs of two or more spaces;
// the columns are assigned positionally to title, requested by, responsible,
// status and date. The label may sit on the row line itself or on the next
// non-blank line.
func (e *Extractor) Requests(doc string) []schema.RequestCandidate {
	requests := make([]schema.RequestCandidate, 0)
	lines := strings.Split(doc, "\n")

	for i, line := range lines {
		if !rowRe.MatchString(line) {
			continue
		}

		raw, ok := quotedName(line)
		if !ok && !strings.Contains(line, "name:") {
			if next, found := nextNonBlank(lines, i+1); found && !rowRe.MatchString(next) {
				raw, ok = quotedName(next)
			}
		}
		if !ok {
			continue
		}

		parts := columnGapRe.Split(raw, -1)
		if len(parts) < minRequestFields {
			continue
		}

		req := schema.RequestCandidate{
			Title:       parts[0],
			RequestedBy: parts[1],
			Responsible: parts[2],
			Status:      parts[3],
			RawText:     raw,
		}
		if len(parts) > 4 {
			req.Date = parts[4]
		}
		requests = append(requests, req)
	}

	return requests
}

func quotedName(line string) (string, bool) {
	m := quotedNameRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

func nextNonBlank(lines []string, from int) (string, bool) {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return lines[j], true
		}
	}
	return "", false
}

// Articles reports knowledge-base articles whose title, or a known
// misspelling of it, appears as an element name. Titles are canonical and in
// vocabulary order.
func (e *Extractor) Articles(doc string) []schema.ArticleCandidate {
	articles := make([]schema.ArticleCandidate, 0)
	for _, p := range e.articles {
		if p.re.MatchString(doc) {
			articles = append(articles, schema.ArticleCandidate{Title: p.canonical})
		}
	}
	return articles
}

// alternation builds a regexp alternation of literal labels, longest first,
// with internal whitespace matching any whitespace run.
func alternation(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	parts := make([]string, 0, len(sorted))
	for _, l := range sorted {
		words := strings.Fields(l)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		parts = append(parts, strings.Join(words, `\s+`))
	}
	return strings.Join(parts, "|")
}

// wordBoundary returns `\b` when every label ends in a word character, so
// that "KeePa" does not match "KeePass".
func wordBoundary(labels []string) string {
	for _, l := range labels {
		r, _ := utf8.DecodeLastRuneInString(l)
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return ""
		}
	}
	return `\b`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
