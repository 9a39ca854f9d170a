package engine

import (
	"sort"
	"strings"

	"legacymig/pkg/schema"
)

// Dedupe returns items with repeated keys removed. The first occurrence of a
// key is kept and order is preserved. Items with an empty key are dropped.
func Dedupe[T any](items []T, key func(T) string) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// MergeStats counts what a Merger has absorbed.
type MergeStats struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// Merger accumulates candidates from many documents, keeping the first
// occurrence of every identity key:
//   - users: username
//   - branches: canonical name
//   - roles: label
//   - requests: raw row text
//   - articles: canonical title
type Merger struct {
	result *schema.Candidates
	seen   map[string]map[string]bool
	Stats  MergeStats
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{
		result: schema.NewCandidates(),
		seen:   make(map[string]map[string]bool),
	}
}

// admit records key under kind and reports whether it is new.
func (m *Merger) admit(kind, key string) bool {
	if key == "" {
		return false
	}
	set, ok := m.seen[kind]
	if !ok {
		set = make(map[string]bool)
		m.seen[kind] = set
	}
	if set[key] {
		m.Stats.Duplicates++
		return false
	}
	set[key] = true
	m.Stats.Added++
	return true
}

// Add merges every kind of c.
func (m *Merger) Add(c *schema.Candidates) {
	if c == nil {
		return
	}
	m.AddUsers(c.Users)
	m.AddBranches(c.Branches)
	m.AddRoles(c.Roles)
	m.AddRequests(c.Requests)
	m.AddArticles(c.Articles)
}

// AddUsers admits users not seen before, keyed on username.
func (m *Merger) AddUsers(users []schema.UserCandidate) {
	for _, u := range users {
		if m.admit("user", u.Username) {
			m.result.Users = append(m.result.Users, u)
		}
	}
}

// AddBranches admits branch names not seen before.
func (m *Merger) AddBranches(branches []string) {
	for _, b := range branches {
		if m.admit("branch", b) {
			m.result.Branches = append(m.result.Branches, b)
		}
	}
}

// AddRoles admits role names not seen before.
func (m *Merger) AddRoles(roles []string) {
	for _, r := range roles {
		if m.admit("role", r) {
			m.result.Roles = append(m.result.Roles, r)
		}
	}
}

// AddRequests admits requests whose raw row text was not seen before.
func (m *Merger) AddRequests(requests []schema.RequestCandidate) {
	for _, r := range requests {
		if m.admit("request", r.RawText) {
			m.result.Requests = append(m.result.Requests, r)
		}
	}
}

// AddArticles admits articles keyed on title.
func (m *Merger) AddArticles(articles []schema.ArticleCandidate) {
	for _, a := range articles {
		if m.admit("article", a.Title) {
			m.result.Articles = append(m.result.Articles, a)
		}
	}
}

// Result returns the merged candidates. The Merger keeps ownership; callers
// that continue adding should copy first.
func (m *Merger) Result() *schema.Candidates {
	return m.result
}

// SortUsers orders users by username, case-insensitively. Equal keys keep
// their merge order.
func SortUsers(users []schema.UserCandidate) {
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})
}
