package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacymig/pkg/schema"
)

func strPtr(s string) *string { return &s }

func TestDedupe(t *testing.T) {
	in := []string{"b", "a", "", "b", "c", "a"}
	got := Dedupe(in, func(s string) string { return s })
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestMergerFirstOccurrenceWins(t *testing.T) {
	m := NewMerger()

	m.Add(&schema.Candidates{
		Users:    []schema.UserCandidate{{Username: "jdoe", FullName: strPtr("Jane Doe")}},
		Branches: []string{"Manila"},
		Roles:    []string{"Admin"},
		Requests: []schema.RequestCandidate{{Title: "Fix printer", RawText: "Fix printer  a  b  c"}},
		Articles: []schema.ArticleCandidate{{Title: "KeePa"}},
	})
	m.Add(&schema.Candidates{
		Users:    []schema.UserCandidate{{Username: "jdoe", FullName: strPtr("J. Doe")}, {Username: "mroe"}},
		Branches: []string{"Manila", "Nowhere"},
		Roles:    []string{"Admin"},
		Requests: []schema.RequestCandidate{{Title: "changed", RawText: "Fix printer  a  b  c"}},
		Articles: []schema.ArticleCandidate{{Title: "KeePa"}, {Title: "Emergencies"}},
	})
	m.Add(nil)

	res := m.Result()
	require.Len(t, res.Users, 2)
	assert.Equal(t, strPtr("Jane Doe"), res.Users[0].FullName)
	assert.Equal(t, []string{"Manila", "Nowhere"}, res.Branches)
	assert.Equal(t, []string{"Admin"}, res.Roles)
	require.Len(t, res.Requests, 1)
	assert.Equal(t, "Fix printer", res.Requests[0].Title)
	assert.Len(t, res.Articles, 2)

	assert.Equal(t, 5, m.Stats.Duplicates)
	assert.Equal(t, 8, m.Stats.Added)
}

func TestMergerIdempotent(t *testing.T) {
	batch := &schema.Candidates{
		Users:    []schema.UserCandidate{{Username: "jdoe"}},
		Branches: []string{"Manila"},
	}

	once := NewMerger()
	once.Add(batch)

	twice := NewMerger()
	twice.Add(batch)
	twice.Add(batch)

	assert.Equal(t, once.Result(), twice.Result())
}

func TestSortUsers(t *testing.T) {
	users := []schema.UserCandidate{
		{Username: "mroe"},
		{Username: "Bob"},
		{Username: "alice"},
		{Username: "bob"},
	}
	SortUsers(users)

	var names []string
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"alice", "Bob", "bob", "mroe"}, names)
}
