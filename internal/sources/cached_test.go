package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spinelookup/internal/query"
)

type scriptedSource struct {
	name    string
	records []BookRecord
	err     error
	calls   int
}

func (s *scriptedSource) Name() string             { return s.name }
func (s *scriptedSource) Supports(query.Role) bool { return true }

func (s *scriptedSource) Search(ctx context.Context, q query.Query) ([]BookRecord, error) {
	s.calls++
	return s.records, s.err
}

func TestCachedServesRepeatQueries(t *testing.T) {
	src := &scriptedSource{
		name:    "fake",
		records: []BookRecord{{Title: "Der Steppenwolf", Source: "fake"}},
	}
	cached := NewCached(src, time.Minute)

	q := query.Query{Text: "der steppenwolf", Role: query.RoleAny, Language: "de"}

	first, err := cached.Search(context.Background(), q)
	assert.NoError(t, err)
	second, err := cached.Search(context.Background(), q)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestCachedKeyIncludesRoleAndLanguage(t *testing.T) {
	src := &scriptedSource{name: "fake"}
	cached := NewCached(src, time.Minute)

	_, _ = cached.Search(context.Background(), query.Query{Text: "wolf", Role: query.RoleAny, Language: "de"})
	_, _ = cached.Search(context.Background(), query.Query{Text: "wolf", Role: query.RoleTitle, Language: "de"})
	_, _ = cached.Search(context.Background(), query.Query{Text: "wolf", Role: query.RoleAny, Language: "fr"})

	assert.Equal(t, 3, src.calls)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	src := &scriptedSource{name: "fake", err: errors.New("boom")}
	cached := NewCached(src, time.Minute)

	q := query.Query{Text: "wolf", Role: query.RoleAny, Language: "de"}

	_, err := cached.Search(context.Background(), q)
	assert.Error(t, err)
	_, err = cached.Search(context.Background(), q)
	assert.Error(t, err)

	assert.Equal(t, 2, src.calls)
}

func TestCachedDelegatesMetadata(t *testing.T) {
	src := &scriptedSource{name: "fake"}
	cached := NewCached(src, time.Minute)

	assert.Equal(t, "fake", cached.Name())
	assert.True(t, cached.Supports(query.RoleTitle))
}
