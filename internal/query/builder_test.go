package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"spinelookup/internal/lexicon"
	"spinelookup/internal/textproc"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"frequency_de.txt": "der 99999\nsteppenwolf 500\n",
		"names.de.txt":     "hermann\t100000\nhesse\t100000\n",
	}
	for name, content := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	store := lexicon.New(dir, []string{"de"}, 2, zaptest.NewLogger(t).Sugar())
	return NewBuilder(store, zaptest.NewLogger(t).Sugar())
}

func corrected(texts ...string) []textproc.CorrectionResult {
	var results []textproc.CorrectionResult
	for _, text := range texts {
		results = append(results, textproc.CorrectionResult{Corrected: text, Language: "de"})
	}
	return results
}

func TestBuildFullThenStrippedThenLeading(t *testing.T) {
	b := newTestBuilder(t)

	queries := b.Build(corrected("der steppenwolf", "hermann hesse"), "de")

	assert.Equal(t, []Query{
		{Text: "der steppenwolf hermann hesse", Role: RoleAny, Language: "de"},
		{Text: "der steppenwolf hermann hesse", Role: RoleTitleAndAuthor, Language: "de"},
		{Text: "der steppenwolf", Role: RoleTitle, Language: "de"},
	}, queries)
}

func TestBuildAuthorFirstSpine(t *testing.T) {
	b := newTestBuilder(t)

	queries := b.Build(corrected("hesse", "der steppenwolf"), "de")

	// Stripping the leading author leaves the title; there is no leading
	// non-name run to emit separately.
	assert.Equal(t, []Query{
		{Text: "hesse der steppenwolf", Role: RoleAny, Language: "de"},
		{Text: "hesse der steppenwolf", Role: RoleTitleAndAuthor, Language: "de"},
		{Text: "der steppenwolf", Role: RoleTitle, Language: "de"},
	}, queries)
}

func TestBuildWithoutNames(t *testing.T) {
	b := newTestBuilder(t)

	queries := b.Build(corrected("der steppenwolf"), "de")

	// No names anywhere: only the full-string query remains.
	assert.Equal(t, []Query{
		{Text: "der steppenwolf", Role: RoleAny, Language: "de"},
	}, queries)
}

func TestBuildAllNames(t *testing.T) {
	b := newTestBuilder(t)

	queries := b.Build(corrected("hermann hesse"), "de")

	// Stripping names from both ends leaves nothing; no title query.
	assert.Equal(t, []Query{
		{Text: "hermann hesse", Role: RoleAny, Language: "de"},
		{Text: "hermann hesse", Role: RoleTitleAndAuthor, Language: "de"},
	}, queries)
}

func TestBuildEmpty(t *testing.T) {
	b := newTestBuilder(t)

	assert.Nil(t, b.Build(nil, "de"))
	assert.Nil(t, b.Build(corrected(""), "de"))
}

func TestRoleStrings(t *testing.T) {
	assert.Equal(t, "any", RoleAny.String())
	assert.Equal(t, "title", RoleTitle.String())
	assert.Equal(t, "title+author", RoleTitleAndAuthor.String())
}
